package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OptionType string

const (
	OptionTypeCall OptionType = "call"
	OptionTypePut  OptionType = "put"
)

// OptionQuote is one contract row from the options chain, mapped to typed
// fields at the ingestion boundary. It is an immutable snapshot: built fresh
// for each scan and discarded afterwards.
type OptionQuote struct {
	ContractSymbol    string
	Type              OptionType
	Strike            decimal.Decimal
	Expiry            time.Time
	Bid               decimal.Decimal
	Ask               decimal.Decimal
	LastPrice         decimal.Decimal
	ImpliedVolatility float64
	Volume            int64
	OpenInterest      int64
}

// ExpiryString renders the expiry date the way chain APIs list it,
// which is also the form the expiry prefix filter matches against.
func (q OptionQuote) ExpiryString() string {
	return q.Expiry.Format("2006-01-02")
}

// StrikeValue returns the strike as a float64 for pricing math.
func (q OptionQuote) StrikeValue() float64 {
	return q.Strike.InexactFloat64()
}

// MarketPrice returns the last traded price, falling back to the bid/ask mid
// (or whichever side is present) when there is no last print.
func (q OptionQuote) MarketPrice() float64 {
	if q.LastPrice.IsPositive() {
		return q.LastPrice.InexactFloat64()
	}
	switch {
	case q.Bid.IsPositive() && q.Ask.IsPositive():
		return q.Bid.Add(q.Ask).Div(decimal.NewFromInt(2)).InexactFloat64()
	case q.Ask.IsPositive():
		return q.Ask.InexactFloat64()
	case q.Bid.IsPositive():
		return q.Bid.InexactFloat64()
	}
	return 0
}

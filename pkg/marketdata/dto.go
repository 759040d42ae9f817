package marketdata

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantscan/leapscan/pkg/models"
)

// Wire types for the chain endpoint. The response nests per-expiration
// contract lists under optionChain.result[0].options.

type chainResponse struct {
	OptionChain struct {
		Result []chainResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"optionChain"`
}

type chainResult struct {
	UnderlyingSymbol string  `json:"underlyingSymbol"`
	ExpirationDates  []int64 `json:"expirationDates"`
	Quote            struct {
		RegularMarketPrice float64 `json:"regularMarketPrice"`
	} `json:"quote"`
	Options []expirationDTO `json:"options"`
}

type expirationDTO struct {
	ExpirationDate int64         `json:"expirationDate"`
	Calls          []contractDTO `json:"calls"`
	Puts           []contractDTO `json:"puts"`
}

type contractDTO struct {
	ContractSymbol    string  `json:"contractSymbol"`
	Strike            float64 `json:"strike"`
	LastPrice         float64 `json:"lastPrice"`
	Bid               float64 `json:"bid"`
	Ask               float64 `json:"ask"`
	Volume            int64   `json:"volume"`
	OpenInterest      int64   `json:"openInterest"`
	ImpliedVolatility float64 `json:"impliedVolatility"`
	Expiration        int64   `json:"expiration"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// toQuote maps a wire contract onto the typed quote, rejecting rows that are
// missing required numeric fields. Untyped provider rows do not travel past
// this boundary.
func (c contractDTO) toQuote(typ models.OptionType) (models.OptionQuote, error) {
	if c.Strike <= 0 {
		return models.OptionQuote{}, fmt.Errorf("contract %q: missing or non-positive strike", c.ContractSymbol)
	}
	if c.Expiration <= 0 {
		return models.OptionQuote{}, fmt.Errorf("contract %q: missing expiration", c.ContractSymbol)
	}
	if c.Volume < 0 || c.OpenInterest < 0 {
		return models.OptionQuote{}, fmt.Errorf("contract %q: negative volume or open interest", c.ContractSymbol)
	}
	if c.ImpliedVolatility < 0 {
		return models.OptionQuote{}, fmt.Errorf("contract %q: negative implied volatility", c.ContractSymbol)
	}

	return models.OptionQuote{
		ContractSymbol:    c.ContractSymbol,
		Type:              typ,
		Strike:            decimal.NewFromFloat(c.Strike),
		Expiry:            time.Unix(c.Expiration, 0).UTC(),
		Bid:               decimal.NewFromFloat(c.Bid),
		Ask:               decimal.NewFromFloat(c.Ask),
		LastPrice:         decimal.NewFromFloat(c.LastPrice),
		ImpliedVolatility: c.ImpliedVolatility,
		Volume:            c.Volume,
		OpenInterest:      c.OpenInterest,
	}, nil
}

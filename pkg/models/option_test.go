package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMarketPriceFallbacks(t *testing.T) {
	q := OptionQuote{LastPrice: decimal.NewFromFloat(130.5)}
	assert.Equal(t, 130.5, q.MarketPrice())

	// No last print: mid of bid/ask.
	q = OptionQuote{Bid: decimal.NewFromFloat(10), Ask: decimal.NewFromFloat(12)}
	assert.Equal(t, 11.0, q.MarketPrice())

	q = OptionQuote{Ask: decimal.NewFromFloat(12)}
	assert.Equal(t, 12.0, q.MarketPrice())

	q = OptionQuote{Bid: decimal.NewFromFloat(10)}
	assert.Equal(t, 10.0, q.MarketPrice())

	assert.Zero(t, OptionQuote{}.MarketPrice())
}

func TestExpiryString(t *testing.T) {
	q := OptionQuote{Expiry: time.Date(2028, 1, 21, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, "2028-01-21", q.ExpiryString())
}

package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/quantscan/leapscan/pkg/models"
	"github.com/quantscan/leapscan/pkg/scanner"
)

func sampleRow(symbol string, strike, discount float64) models.RankedOption {
	return models.RankedOption{
		OptionQuote: models.OptionQuote{
			ContractSymbol:    symbol,
			Type:              models.OptionTypeCall,
			Strike:            decimal.NewFromFloat(strike),
			Expiry:            time.Date(2028, 1, 21, 0, 0, 0, 0, time.UTC),
			LastPrice:         decimal.NewFromFloat(130.50),
			ImpliedVolatility: 0.185,
			Volume:            42,
			OpenInterest:      1200,
		},
		ATMIVRef:         0.20,
		TheoreticalPrice: 150.25,
		Delta:            0.93,
		DiscountPct:      discount,
	}
}

func TestWriteScan(t *testing.T) {
	res := &scanner.Result{
		Symbol:     "SPY",
		Spot:       512.34,
		Candidates: 2,
		ByIV:       []models.RankedOption{sampleRow("A", 400, 13.1), sampleRow("B", 450, 5.0)},
		ByDiscount: []models.RankedOption{sampleRow("A", 400, 13.1)},
	}

	var buf bytes.Buffer
	WriteScan(&buf, res)
	out := buf.String()

	assert.Contains(t, out, "SPY @ 512.34")
	assert.Contains(t, out, "CHEAPEST ITM LEAPS CALLS")
	assert.Contains(t, out, "BARGAIN ITM LEAPS CALLS")
	assert.Contains(t, out, "2028-01-21")
	assert.Contains(t, out, "400.00")
	assert.Contains(t, out, "13.10")
	assert.Contains(t, out, "DISCOUNT%")
}

func TestWriteScanEmpty(t *testing.T) {
	var buf bytes.Buffer
	WriteScan(&buf, &scanner.Result{Symbol: "SPY", Spot: 512.34})

	assert.Contains(t, buf.String(), "No options found matching criteria.")
}

func TestWriteScanNoBargains(t *testing.T) {
	res := &scanner.Result{
		Symbol:     "SPY",
		Spot:       512.34,
		Candidates: 1,
		ByIV:       []models.RankedOption{sampleRow("A", 400, -2.0)},
		ByDiscount: []models.RankedOption{},
	}

	var buf bytes.Buffer
	WriteScan(&buf, res)
	assert.Contains(t, buf.String(), "No contracts trading below theoretical value.")
}

func TestWriteBargains(t *testing.T) {
	bargains := []Bargain{
		{Symbol: "NVDA", RankedOption: sampleRow("A", 400, 18.4)},
		{Symbol: "SPY", RankedOption: sampleRow("B", 450, 16.2)},
	}

	var buf bytes.Buffer
	WriteBargains(&buf, bargains)
	out := buf.String()

	assert.Contains(t, out, "SYMBOL")
	assert.Contains(t, out, "NVDA")
	assert.Contains(t, out, "SPY")
	assert.Contains(t, out, "18.40")
}

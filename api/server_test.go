package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantscan/leapscan/pkg/marketdata"
	"github.com/quantscan/leapscan/pkg/models"
	"github.com/quantscan/leapscan/pkg/scanner"
)

type stubProvider struct {
	chain   []models.OptionQuote
	spot    float64
	spotErr error
}

func (s *stubProvider) FetchChain(ctx context.Context, symbol string) ([]models.OptionQuote, error) {
	return s.chain, nil
}

func (s *stubProvider) FetchSpot(ctx context.Context, symbol string) (float64, error) {
	return s.spot, s.spotErr
}

func testServer(provider marketdata.Provider) *Server {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	params := scanner.Params{
		Symbol:        "SPY",
		MinVolume:     5,
		MoneyRangePct: 0.5,
		ExpiryFilter:  "2028-01",
		RiskFreeRate:  0.045,
	}
	return NewServer(scanner.New(provider, logger), params, logger, "0")
}

func TestHandleHealth(t *testing.T) {
	server := testServer(&stubProvider{})

	rec := httptest.NewRecorder()
	server.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestHandleScan(t *testing.T) {
	expiry := time.Date(2028, 1, 21, 0, 0, 0, 0, time.UTC)
	provider := &stubProvider{
		spot: 500,
		chain: []models.OptionQuote{{
			ContractSymbol:    "SPY280121C00400000",
			Type:              models.OptionTypeCall,
			Strike:            decimal.NewFromFloat(400),
			Expiry:            expiry,
			LastPrice:         decimal.NewFromFloat(130),
			ImpliedVolatility: 0.185,
			Volume:            42,
			OpenInterest:      1200,
		}},
	}
	server := testServer(provider)

	rec := httptest.NewRecorder()
	server.handleScan(rec, httptest.NewRequest(http.MethodGet, "/api/scan?symbol=SPY", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var result scanner.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "SPY", result.Symbol)
	assert.Equal(t, 500.0, result.Spot)
	assert.Equal(t, 1, result.Candidates)
}

func TestHandleScanProviderFailure(t *testing.T) {
	provider := &stubProvider{
		spotErr: &marketdata.ProviderError{Symbol: "SPY", Op: "fetch spot", Err: errors.New("timeout")},
	}
	server := testServer(provider)

	rec := httptest.NewRecorder()
	server.handleScan(rec, httptest.NewRequest(http.MethodGet, "/api/scan", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleScanRejectsNonGet(t *testing.T) {
	server := testServer(&stubProvider{})

	rec := httptest.NewRecorder()
	server.handleScan(rec, httptest.NewRequest(http.MethodPost, "/api/scan", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

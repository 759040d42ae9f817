package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/quantscan/leapscan/pkg/models"
)

const defaultBaseURL = "https://query2.finance.yahoo.com"

// Client fetches option chains over the provider's REST API. Requests are
// rate limited so that walking every expiration of a chain stays inside the
// provider's quota.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logrus.Logger
}

func NewClient(baseURL, apiKey string, timeout time.Duration, requestsPerSec float64, logger *logrus.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if requestsPerSec <= 0 {
		requestsPerSec = 4
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSec), 1),
		logger:     logger,
	}
}

// FetchSpot returns the underlying's current price from the chain endpoint's
// quote block.
func (c *Client) FetchSpot(ctx context.Context, symbol string) (float64, error) {
	res, err := c.fetchChainPage(ctx, symbol, 0)
	if err != nil {
		return 0, &ProviderError{Symbol: symbol, Op: "fetch spot", Err: err}
	}
	spot := res.Quote.RegularMarketPrice
	if spot <= 0 {
		return 0, &ProviderError{Symbol: symbol, Op: "fetch spot", Err: fmt.Errorf("no market price in response")}
	}
	return spot, nil
}

// FetchChain walks every listed expiration and returns the full chain as
// typed quotes. Rows that fail boundary validation are dropped and counted.
func (c *Client) FetchChain(ctx context.Context, symbol string) ([]models.OptionQuote, error) {
	first, err := c.fetchChainPage(ctx, symbol, 0)
	if err != nil {
		return nil, &ProviderError{Symbol: symbol, Op: "fetch chain", Err: err}
	}

	var quotes []models.OptionQuote
	rejected := 0
	for _, expiration := range first.ExpirationDates {
		page, err := c.fetchChainPage(ctx, symbol, expiration)
		if err != nil {
			return nil, &ProviderError{Symbol: symbol, Op: "fetch chain", Err: err}
		}
		for _, exp := range page.Options {
			quotes = append(quotes, c.mapContracts(exp.Calls, models.OptionTypeCall, &rejected)...)
			quotes = append(quotes, c.mapContracts(exp.Puts, models.OptionTypePut, &rejected)...)
		}
	}

	if rejected > 0 {
		c.logger.WithFields(logrus.Fields{
			"symbol":   symbol,
			"rejected": rejected,
		}).Warn("Dropped malformed chain rows at ingestion")
	}
	return quotes, nil
}

func (c *Client) mapContracts(contracts []contractDTO, typ models.OptionType, rejected *int) []models.OptionQuote {
	quotes := make([]models.OptionQuote, 0, len(contracts))
	for _, dto := range contracts {
		quote, err := dto.toQuote(typ)
		if err != nil {
			*rejected++
			c.logger.WithError(err).Debug("Rejecting chain row")
			continue
		}
		quotes = append(quotes, quote)
	}
	return quotes
}

// fetchChainPage requests one page of the chain endpoint. An expiration of 0
// fetches the default page, which also carries the expiration list and the
// underlying quote.
func (c *Client) fetchChainPage(ctx context.Context, symbol string, expiration int64) (*chainResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v7/finance/options/%s", c.baseURL, url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if expiration > 0 {
		q := req.URL.Query()
		q.Set("date", strconv.FormatInt(expiration, 10))
		req.URL.RawQuery = q.Encode()
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload chainResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if payload.OptionChain.Error != nil {
		return nil, payload.OptionChain.Error
	}
	if len(payload.OptionChain.Result) == 0 {
		return nil, fmt.Errorf("empty result for symbol")
	}
	return &payload.OptionChain.Result[0], nil
}

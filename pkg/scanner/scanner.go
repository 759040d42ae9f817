package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quantscan/leapscan/pkg/marketdata"
	"github.com/quantscan/leapscan/pkg/models"
)

// Scanner runs one-shot chain scans against a market data provider. It holds
// no state between scans; each run is a pure function of the parameters and
// the provider's response at the time of the call.
type Scanner struct {
	provider marketdata.Provider
	logger   *logrus.Logger
}

func New(provider marketdata.Provider, logger *logrus.Logger) *Scanner {
	return &Scanner{
		provider: provider,
		logger:   logger,
	}
}

// Result is the outcome of a single scan.
type Result struct {
	Symbol     string
	Spot       float64
	Candidates int
	Skipped    int
	ByIV       []models.RankedOption
	ByDiscount []models.RankedOption
	Timestamp  time.Time
}

// Scan fetches the chain, filters to in-the-money calls matching the
// parameters, and ranks them. A provider failure is terminal for the run; an
// empty candidate set is not an error and yields empty tables.
func (s *Scanner) Scan(ctx context.Context, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	spot, err := s.provider.FetchSpot(ctx, p.Symbol)
	if err != nil {
		return nil, fmt.Errorf("fetching spot price: %w", err)
	}

	chain, err := s.provider.FetchChain(ctx, p.Symbol)
	if err != nil {
		return nil, fmt.Errorf("fetching chain: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"symbol": p.Symbol,
		"spot":   spot,
		"rows":   len(chain),
	}).Info("Fetched options chain")

	now := time.Now()
	filtered, err := Filter(chain, spot, now, p)
	if err != nil {
		return nil, err
	}

	// LEAPS as stock replacement: only in-the-money calls qualify.
	itm := make([]models.OptionQuote, 0, len(filtered))
	for _, q := range filtered {
		if q.StrikeValue() < spot {
			itm = append(itm, q)
		}
	}

	byIV, byDiscount, skipped := Rank(itm, spot, now, p)
	if skipped > 0 {
		s.logger.WithFields(logrus.Fields{
			"symbol":  p.Symbol,
			"skipped": skipped,
		}).Warn("Skipped candidates with invalid pricing inputs")
	}

	return &Result{
		Symbol:     p.Symbol,
		Spot:       spot,
		Candidates: len(itm),
		Skipped:    skipped,
		ByIV:       byIV,
		ByDiscount: byDiscount,
		Timestamp:  now,
	}, nil
}

package scanner

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig marks scan parameters that fail validation. The scan is
// aborted before any fetch.
var ErrInvalidConfig = errors.New("scanner: invalid config")

const (
	defaultTopN  = 10
	defaultATMIV = 0.20
)

// Params are the knobs for one scan run.
type Params struct {
	Symbol string

	// MinVolume drops illiquid contracts.
	MinVolume int64

	// MoneyRangePct keeps strikes within +/- this fraction of spot. Must be
	// in (0, 1].
	MoneyRangePct float64

	// ExpiryFilter keeps expirations whose YYYY-MM-DD form starts with this
	// prefix, e.g. "2028-01". May be empty when MinDaysToExpiry is set.
	ExpiryFilter string

	// MinDaysToExpiry keeps expirations at least this many days out. Used by
	// the monitor, which watches all LEAPS rather than one expiry month.
	MinDaysToExpiry int

	// ATMTolerancePct is the half-width of the at-the-money band, as a
	// fraction of spot, used when averaging the baseline implied volatility.
	ATMTolerancePct float64

	RiskFreeRate float64

	// TopN caps both report tables. Zero means 10.
	TopN int
}

func (p Params) Validate() error {
	if p.Symbol == "" {
		return fmt.Errorf("%w: symbol must not be empty", ErrInvalidConfig)
	}
	if p.MinVolume < 0 {
		return fmt.Errorf("%w: min volume cannot be negative, got %d", ErrInvalidConfig, p.MinVolume)
	}
	if p.MoneyRangePct <= 0 || p.MoneyRangePct > 1 {
		return fmt.Errorf("%w: money range must be in (0, 1], got %g", ErrInvalidConfig, p.MoneyRangePct)
	}
	if p.ExpiryFilter == "" && p.MinDaysToExpiry <= 0 {
		return fmt.Errorf("%w: either an expiry filter or a minimum days to expiry is required", ErrInvalidConfig)
	}
	if p.MinDaysToExpiry < 0 {
		return fmt.Errorf("%w: min days to expiry cannot be negative, got %d", ErrInvalidConfig, p.MinDaysToExpiry)
	}
	if p.ATMTolerancePct < 0 {
		return fmt.Errorf("%w: ATM tolerance cannot be negative, got %g", ErrInvalidConfig, p.ATMTolerancePct)
	}
	if p.TopN < 0 {
		return fmt.Errorf("%w: top N cannot be negative, got %d", ErrInvalidConfig, p.TopN)
	}
	return nil
}

func (p Params) topN() int {
	if p.TopN == 0 {
		return defaultTopN
	}
	return p.TopN
}

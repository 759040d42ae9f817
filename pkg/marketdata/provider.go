package marketdata

import (
	"context"
	"fmt"

	"github.com/quantscan/leapscan/pkg/models"
)

// Provider supplies the options chain and the underlying spot price. The
// scanner depends only on this interface so the data source can be swapped
// for a mock in tests.
type Provider interface {
	FetchChain(ctx context.Context, symbol string) ([]models.OptionQuote, error)
	FetchSpot(ctx context.Context, symbol string) (float64, error)
}

// ProviderError wraps a network, HTTP or decode failure from the data
// source. It is terminal for the scan; there are no retries.
type ProviderError struct {
	Symbol string
	Op     string
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("marketdata: %s %s: %v", e.Op, e.Symbol, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

package scanner

import (
	"fmt"
	"strings"
	"time"

	"github.com/quantscan/leapscan/pkg/models"
)

// Filter narrows the raw chain to call contracts that clear the volume
// threshold, sit inside the moneyness band around spot, and match the expiry
// criteria. An empty result is not an error.
func Filter(chain []models.OptionQuote, spot float64, now time.Time, p Params) ([]models.OptionQuote, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if spot <= 0 {
		return nil, fmt.Errorf("filter: non-positive spot price %g", spot)
	}

	lower := spot * (1 - p.MoneyRangePct)
	upper := spot * (1 + p.MoneyRangePct)
	earliest := now.AddDate(0, 0, p.MinDaysToExpiry)

	out := make([]models.OptionQuote, 0, len(chain))
	for _, q := range chain {
		if q.Type != models.OptionTypeCall {
			continue
		}
		if q.Volume < p.MinVolume {
			continue
		}
		if strike := q.StrikeValue(); strike < lower || strike > upper {
			continue
		}
		if p.ExpiryFilter != "" && !strings.HasPrefix(q.ExpiryString(), p.ExpiryFilter) {
			continue
		}
		if p.MinDaysToExpiry > 0 && q.Expiry.Before(earliest) {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

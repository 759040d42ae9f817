package scanner

import (
	"math"
	"sort"
	"time"

	"github.com/quantscan/leapscan/pkg/models"
	"github.com/quantscan/leapscan/pkg/pricing"
)

// Rank values each candidate at the averaged at-the-money implied volatility
// and produces the two report views: cheapest by absolute IV, and largest
// discount to theoretical value. Candidates whose pricing inputs are invalid
// (already expired, zero strike) are skipped and counted, not fatal.
// Both sorts are stable, so ties keep the original chain order.
func Rank(candidates []models.OptionQuote, spot float64, now time.Time, p Params) (byIV, byDiscount []models.RankedOption, skipped int) {
	byIV = []models.RankedOption{}
	byDiscount = []models.RankedOption{}
	if len(candidates) == 0 {
		return byIV, byDiscount, 0
	}

	atmIV := atmBaseline(candidates, spot, p.ATMTolerancePct)

	rows := make([]models.RankedOption, 0, len(candidates))
	for _, q := range candidates {
		tte := pricing.YearsUntil(now, q.Expiry)
		market := q.MarketPrice()

		iv := q.ImpliedVolatility
		if iv <= 0 && market > 0 {
			// The provider sometimes returns no IV for stale contracts;
			// back it out of the market price instead.
			implied, err := pricing.ImpliedVolatility(market, pricing.Input{
				Spot:         spot,
				Strike:       q.StrikeValue(),
				TimeToExpiry: tte,
				RiskFreeRate: p.RiskFreeRate,
			})
			if err == nil {
				iv = implied
				q.ImpliedVolatility = implied
			}
		}

		theo, err := pricing.Call(pricing.Input{
			Spot:         spot,
			Strike:       q.StrikeValue(),
			TimeToExpiry: tte,
			RiskFreeRate: p.RiskFreeRate,
			Volatility:   atmIV,
		})
		if err != nil {
			skipped++
			continue
		}

		// Delta at the contract's own IV when it has one, so it matches
		// what brokers display; the ATM baseline otherwise.
		deltaVol := iv
		if deltaVol <= 0 {
			deltaVol = atmIV
		}
		withOwnIV, err := pricing.Call(pricing.Input{
			Spot:         spot,
			Strike:       q.StrikeValue(),
			TimeToExpiry: tte,
			RiskFreeRate: p.RiskFreeRate,
			Volatility:   deltaVol,
		})
		if err != nil {
			skipped++
			continue
		}

		row := models.RankedOption{
			OptionQuote:      q,
			ATMIVRef:         atmIV,
			TheoreticalPrice: theo.TheoreticalPrice,
			Delta:            withOwnIV.Delta,
		}
		if theo.TheoreticalPrice > 0 && market > 0 {
			row.DiscountPct = (theo.TheoreticalPrice - market) / theo.TheoreticalPrice * 100
		}
		rows = append(rows, row)
	}

	byIV = append(byIV, rows...)
	sort.SliceStable(byIV, func(i, j int) bool {
		return byIV[i].ImpliedVolatility < byIV[j].ImpliedVolatility
	})
	if n := p.topN(); len(byIV) > n {
		byIV = byIV[:n]
	}

	for _, row := range rows {
		if row.DiscountPct > 0 {
			byDiscount = append(byDiscount, row)
		}
	}
	sort.SliceStable(byDiscount, func(i, j int) bool {
		return byDiscount[i].DiscountPct > byDiscount[j].DiscountPct
	})
	if n := p.topN(); len(byDiscount) > n {
		byDiscount = byDiscount[:n]
	}

	return byIV, byDiscount, skipped
}

// atmBaseline averages implied volatility over the candidates whose strikes
// fall inside the tolerance band around spot. When the band is empty it
// falls back to the single nearest strike with an IV, and failing that to a
// flat 20%.
func atmBaseline(candidates []models.OptionQuote, spot, tolerancePct float64) float64 {
	band := spot * tolerancePct

	var sum float64
	var count int
	for _, q := range candidates {
		if q.ImpliedVolatility <= 0 {
			continue
		}
		if math.Abs(q.StrikeValue()-spot) <= band {
			sum += q.ImpliedVolatility
			count++
		}
	}
	if count > 0 {
		return sum / float64(count)
	}

	nearest := -1
	nearestDist := math.Inf(1)
	for i, q := range candidates {
		if q.ImpliedVolatility <= 0 {
			continue
		}
		if dist := math.Abs(q.StrikeValue() - spot); dist < nearestDist {
			nearestDist = dist
			nearest = i
		}
	}
	if nearest >= 0 {
		return candidates[nearest].ImpliedVolatility
	}
	return defaultATMIV
}

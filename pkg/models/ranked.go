package models

// RankedOption is a chain row joined with its Black-Scholes valuation at the
// at-the-money reference volatility.
type RankedOption struct {
	OptionQuote

	// ATMIVRef is the averaged at-the-money implied volatility the
	// theoretical price was computed with.
	ATMIVRef         float64
	TheoreticalPrice float64
	Delta            float64

	// DiscountPct is (theoretical - market) / theoretical * 100. Positive
	// means the market price is below the model price. Only set when the
	// theoretical price is positive.
	DiscountPct float64
}

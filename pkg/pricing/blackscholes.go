package pricing

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidInput marks pricing inputs the closed-form formula is undefined
// for, most commonly a non-positive time to expiry.
var ErrInvalidInput = errors.New("pricing: invalid input")

// Input holds the Black-Scholes inputs for a single contract.
type Input struct {
	Spot         float64
	Strike       float64
	TimeToExpiry float64 // in years
	RiskFreeRate float64
	Volatility   float64
}

// Result is the output of a single valuation.
type Result struct {
	TheoreticalPrice float64
	Delta            float64
}

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

func (in Input) validate() error {
	if in.TimeToExpiry <= 0 {
		return fmt.Errorf("%w: time to expiry must be positive, got %g", ErrInvalidInput, in.TimeToExpiry)
	}
	if in.Spot <= 0 {
		return fmt.Errorf("%w: spot must be positive, got %g", ErrInvalidInput, in.Spot)
	}
	if in.Strike <= 0 {
		return fmt.Errorf("%w: strike must be positive, got %g", ErrInvalidInput, in.Strike)
	}
	if in.Volatility < 0 {
		return fmt.Errorf("%w: volatility cannot be negative, got %g", ErrInvalidInput, in.Volatility)
	}
	return nil
}

func d1(in Input) float64 {
	return (math.Log(in.Spot/in.Strike) + (in.RiskFreeRate+in.Volatility*in.Volatility/2)*in.TimeToExpiry) /
		(in.Volatility * math.Sqrt(in.TimeToExpiry))
}

func d2(in Input) float64 {
	return d1(in) - in.Volatility*math.Sqrt(in.TimeToExpiry)
}

// Call values a European call option. At zero volatility the formula
// degenerates: the price collapses to intrinsic value and delta to 1 for
// in-the-money spots, 0 otherwise.
func Call(in Input) (Result, error) {
	if err := in.validate(); err != nil {
		return Result{}, err
	}
	if in.Volatility*math.Sqrt(in.TimeToExpiry) == 0 {
		res := Result{TheoreticalPrice: math.Max(0, in.Spot-in.Strike)}
		if in.Spot > in.Strike {
			res.Delta = 1
		}
		return res, nil
	}
	nd1 := stdNormal.CDF(d1(in))
	nd2 := stdNormal.CDF(d2(in))
	discount := math.Exp(-in.RiskFreeRate * in.TimeToExpiry)
	return Result{
		TheoreticalPrice: in.Spot*nd1 - in.Strike*discount*nd2,
		Delta:            nd1,
	}, nil
}

// Put values a European put option. Delta is N(d1)-1, in [-1, 0].
func Put(in Input) (Result, error) {
	if err := in.validate(); err != nil {
		return Result{}, err
	}
	if in.Volatility*math.Sqrt(in.TimeToExpiry) == 0 {
		res := Result{TheoreticalPrice: math.Max(0, in.Strike-in.Spot)}
		if in.Strike > in.Spot {
			res.Delta = -1
		}
		return res, nil
	}
	discount := math.Exp(-in.RiskFreeRate * in.TimeToExpiry)
	return Result{
		TheoreticalPrice: in.Strike*discount*stdNormal.CDF(-d2(in)) - in.Spot*stdNormal.CDF(-d1(in)),
		Delta:            stdNormal.CDF(d1(in)) - 1,
	}, nil
}

// Vega is the sensitivity of the option price to volatility. It is the same
// for calls and puts and never negative.
func Vega(in Input) float64 {
	if in.TimeToExpiry <= 0 || in.Volatility <= 0 || in.Spot <= 0 || in.Strike <= 0 {
		return 0
	}
	return in.Spot * math.Sqrt(in.TimeToExpiry) * stdNormal.Prob(d1(in))
}

const (
	ivInitialGuess  = 0.5
	ivTolerance     = 1e-5
	ivMaxIterations = 100
	ivFloor         = 0.001
	ivCap           = 5.0
)

// ImpliedVolatility solves for the call volatility that reproduces the given
// market price, using Newton-Raphson on vega. The Volatility field of the
// input is ignored. The result is capped at 500%.
func ImpliedVolatility(marketPrice float64, in Input) (float64, error) {
	if marketPrice <= 0 {
		return 0, fmt.Errorf("%w: market price must be positive, got %g", ErrInvalidInput, marketPrice)
	}
	if err := in.validate(); err != nil {
		return 0, err
	}

	sigma := ivInitialGuess
	for i := 0; i < ivMaxIterations; i++ {
		in.Volatility = sigma
		res, err := Call(in)
		if err != nil {
			return 0, err
		}
		diff := res.TheoreticalPrice - marketPrice
		if math.Abs(diff) < ivTolerance {
			return sigma, nil
		}
		vega := Vega(in)
		if vega == 0 {
			break
		}
		sigma -= diff / vega
		if sigma <= 0 {
			sigma = ivFloor
		}
		if sigma > ivCap {
			return ivCap, nil
		}
	}
	return 0, fmt.Errorf("pricing: implied volatility did not converge for price %g", marketPrice)
}

// YearsUntil returns the time between now and expiry in years. The result is
// not clamped; callers decide how to treat expired contracts.
func YearsUntil(now, expiry time.Time) float64 {
	return expiry.Sub(now).Hours() / 24 / 365
}

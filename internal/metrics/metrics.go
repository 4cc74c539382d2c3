// Package metrics derives risk and return statistics from a strategy's
// portfolio value history.
package metrics

import (
	"errors"
	"math"
	"time"

	"marketsim/internal/domain"
)

// ErrInsufficientData is returned when a history is too short for the
// requested statistic.
var ErrInsufficientData = errors.New("metrics: insufficient data")

// ErrZeroVolatility is returned when the Sharpe ratio denominator is zero,
// e.g. for a flat value series. It marks the ratio as undefined rather than
// producing a runtime fault.
var ErrZeroVolatility = errors.New("metrics: zero volatility")

// ReturnPoint is one periodic return, stamped with the later of the two
// samples it was derived from.
type ReturnPoint struct {
	Timestamp time.Time
	Return    float64
}

// TotalReturn is the fractional change between the first and last value of
// the history. A single-sample history has a defined total return of zero;
// an empty history is an error.
func TotalReturn(history []domain.ValuePoint) (float64, error) {
	if len(history) == 0 {
		return 0, ErrInsufficientData
	}
	if len(history) == 1 {
		return 0, nil
	}
	return history[len(history)-1].Value/history[0].Value - 1, nil
}

// PeriodReturns computes the percentage change between consecutive values.
// The first sample has no predecessor and is dropped, so the result is one
// element shorter than the input.
func PeriodReturns(history []domain.ValuePoint) []ReturnPoint {
	if len(history) < 2 {
		return nil
	}
	returns := make([]ReturnPoint, 0, len(history)-1)
	for i := 1; i < len(history); i++ {
		returns = append(returns, ReturnPoint{
			Timestamp: history[i].Timestamp,
			Return:    history[i].Value/history[i-1].Value - 1,
		})
	}
	return returns
}

// SharpeRatio is the mean periodic excess return over its sample standard
// deviation. No annualization is applied at this layer; that is a reporting
// concern. A history with fewer than two return samples yields
// ErrInsufficientData, and a flat series yields ErrZeroVolatility.
func SharpeRatio(history []domain.ValuePoint, riskFree float64) (float64, error) {
	returns := PeriodReturns(history)
	if len(returns) < 2 {
		return 0, ErrInsufficientData
	}

	values := make([]float64, len(returns))
	for i, r := range returns {
		values[i] = r.Return
	}

	m := mean(values)
	sd := sampleStddev(values, m)
	if sd == 0 {
		return 0, ErrZeroVolatility
	}
	return (m - riskFree) / sd, nil
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func sampleStddev(xs []float64, mean float64) float64 {
	var sum float64
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}

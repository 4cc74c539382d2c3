package metrics

import (
	"time"

	"marketsim/internal/domain"
)

// DrawdownPoint is one sample of the drawdown series: the fractional decline
// of cumulative value from its running peak, always <= 0.
type DrawdownPoint struct {
	Timestamp time.Time
	Drawdown  float64
}

// DrawdownReport summarizes the worst peak-to-trough decline of a value
// history. RecoveryTime and RecoveryDuration are nil when cumulative value
// never regained the pre-drawdown peak before the series ended; both are set
// or both are nil. Series retains the full drawdown trajectory for
// downstream charting.
type DrawdownReport struct {
	MaxDrawdown      float64
	PeakTime         time.Time
	BottomTime       time.Time
	RecoveryTime     *time.Time
	RecoveryDuration *time.Duration
	Series           []DrawdownPoint
}

// MaxDrawdown computes the maximum drawdown of a value history together with
// its peak, bottom, and recovery points.
//
// The cumulative series is the running product of (1 + periodic return); the
// drawdown at each point is cumulative value over its running maximum, minus
// one. The bottom is the first occurrence of the deepest drawdown; the peak
// is the latest point at or before the bottom whose cumulative value equals
// the running maximum there (the actual high-water mark, not time zero);
// recovery is the earliest point strictly after the bottom where cumulative
// value meets or exceeds that mark.
func MaxDrawdown(history []domain.ValuePoint) (*DrawdownReport, error) {
	returns := PeriodReturns(history)
	if len(returns) == 0 {
		return nil, ErrInsufficientData
	}

	cum := make([]float64, len(returns))
	running := 1.0
	for i, r := range returns {
		running *= 1 + r.Return
		cum[i] = running
	}

	peak := make([]float64, len(cum))
	maxSoFar := cum[0]
	for i, c := range cum {
		if c > maxSoFar {
			maxSoFar = c
		}
		peak[i] = maxSoFar
	}

	series := make([]DrawdownPoint, len(cum))
	bottom := 0
	for i := range cum {
		dd := cum[i]/peak[i] - 1
		series[i] = DrawdownPoint{Timestamp: returns[i].Timestamp, Drawdown: dd}
		// Strict < keeps the first occurrence on ties.
		if dd < series[bottom].Drawdown {
			bottom = i
		}
	}

	peakValue := peak[bottom]

	// Latest occurrence of the high-water mark at or before the bottom.
	peakIdx := bottom
	for i := bottom; i >= 0; i-- {
		if cum[i] == peakValue {
			peakIdx = i
			break
		}
	}

	report := &DrawdownReport{
		MaxDrawdown: series[bottom].Drawdown,
		PeakTime:    returns[peakIdx].Timestamp,
		BottomTime:  returns[bottom].Timestamp,
		Series:      series,
	}

	for i := bottom + 1; i < len(cum); i++ {
		if cum[i] >= peakValue {
			rt := returns[i].Timestamp
			rd := rt.Sub(report.PeakTime)
			report.RecoveryTime = &rt
			report.RecoveryDuration = &rd
			break
		}
	}

	return report, nil
}

package metrics

import (
	"errors"
	"math"
	"testing"
	"time"

	"marketsim/internal/domain"
)

var base = time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)

// history builds a value series with one-minute spacing.
func history(values ...float64) []domain.ValuePoint {
	h := make([]domain.ValuePoint, len(values))
	for i, v := range values {
		h[i] = domain.ValuePoint{Timestamp: base.Add(time.Duration(i) * time.Minute), Value: v}
	}
	return h
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTotalReturn(t *testing.T) {
	h := history(100, 120, 90, 150)
	got, err := TotalReturn(h)
	if err != nil {
		t.Fatalf("TotalReturn: %v", err)
	}
	if want := 0.5; !almostEqual(got, want) {
		t.Errorf("TotalReturn = %v, want %v", got, want)
	}
}

func TestTotalReturnDegenerate(t *testing.T) {
	if _, err := TotalReturn(nil); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("TotalReturn(empty) error = %v, want ErrInsufficientData", err)
	}

	got, err := TotalReturn(history(100))
	if err != nil {
		t.Fatalf("TotalReturn(single): %v", err)
	}
	if got != 0 {
		t.Errorf("TotalReturn(single sample) = %v, want 0", got)
	}
}

func TestPeriodReturns(t *testing.T) {
	h := history(100, 110, 99)
	returns := PeriodReturns(h)

	if len(returns) != 2 {
		t.Fatalf("PeriodReturns length = %d, want 2 (first sample dropped)", len(returns))
	}
	if !almostEqual(returns[0].Return, 0.10) {
		t.Errorf("returns[0] = %v, want 0.10", returns[0].Return)
	}
	if !almostEqual(returns[1].Return, -0.10) {
		t.Errorf("returns[1] = %v, want -0.10", returns[1].Return)
	}
	// Each return carries the later timestamp of its pair.
	if !returns[0].Timestamp.Equal(h[1].Timestamp) {
		t.Errorf("returns[0].Timestamp = %v, want %v", returns[0].Timestamp, h[1].Timestamp)
	}
	if !returns[1].Timestamp.Equal(h[2].Timestamp) {
		t.Errorf("returns[1].Timestamp = %v, want %v", returns[1].Timestamp, h[2].Timestamp)
	}
}

func TestPeriodReturnsShortSeries(t *testing.T) {
	if got := PeriodReturns(history(100)); got != nil {
		t.Errorf("PeriodReturns(single) = %v, want nil", got)
	}
}

func TestSharpeRatio(t *testing.T) {
	// Returns 0.1 and 0.3: mean 0.2, sample stddev sqrt(0.02).
	h := history(100, 110, 143)
	got, err := SharpeRatio(h, 0)
	if err != nil {
		t.Fatalf("SharpeRatio: %v", err)
	}
	want := 0.2 / math.Sqrt(0.02)
	if !almostEqual(got, want) {
		t.Errorf("SharpeRatio = %v, want %v", got, want)
	}
}

func TestSharpeRatioRiskFree(t *testing.T) {
	h := history(100, 110, 143)
	got, err := SharpeRatio(h, 0.2)
	if err != nil {
		t.Fatalf("SharpeRatio: %v", err)
	}
	// Excess return is zero when riskFree equals the mean.
	if !almostEqual(got, 0) {
		t.Errorf("SharpeRatio with riskFree=mean = %v, want 0", got)
	}
}

func TestSharpeRatioFlatSeriesIsUndefined(t *testing.T) {
	_, err := SharpeRatio(history(100, 100, 100, 100), 0)
	if !errors.Is(err, ErrZeroVolatility) {
		t.Errorf("SharpeRatio(flat) error = %v, want ErrZeroVolatility", err)
	}
}

func TestSharpeRatioInsufficientData(t *testing.T) {
	for _, h := range [][]domain.ValuePoint{nil, history(100), history(100, 110)} {
		if _, err := SharpeRatio(h, 0); !errors.Is(err, ErrInsufficientData) {
			t.Errorf("SharpeRatio(len %d) error = %v, want ErrInsufficientData", len(h), err)
		}
	}
}

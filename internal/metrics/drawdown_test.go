package metrics

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestMaxDrawdownWithRecovery(t *testing.T) {
	// Values 100 -> 200 -> 100 -> 200 -> 400.
	// Cumulative: 2.0, 1.0, 2.0, 4.0; the 50% dip recovers one step later.
	h := history(100, 200, 100, 200, 400)

	rep, err := MaxDrawdown(h)
	if err != nil {
		t.Fatalf("MaxDrawdown: %v", err)
	}

	if !almostEqual(rep.MaxDrawdown, -0.5) {
		t.Errorf("MaxDrawdown = %v, want -0.5", rep.MaxDrawdown)
	}
	if !rep.PeakTime.Equal(h[1].Timestamp) {
		t.Errorf("PeakTime = %v, want %v", rep.PeakTime, h[1].Timestamp)
	}
	if !rep.BottomTime.Equal(h[2].Timestamp) {
		t.Errorf("BottomTime = %v, want %v", rep.BottomTime, h[2].Timestamp)
	}
	if rep.RecoveryTime == nil || rep.RecoveryDuration == nil {
		t.Fatal("recovered series has nil RecoveryTime/RecoveryDuration")
	}
	if !rep.RecoveryTime.Equal(h[3].Timestamp) {
		t.Errorf("RecoveryTime = %v, want %v", *rep.RecoveryTime, h[3].Timestamp)
	}
	if want := 2 * time.Minute; *rep.RecoveryDuration != want {
		t.Errorf("RecoveryDuration = %v, want %v", *rep.RecoveryDuration, want)
	}
	if !rep.RecoveryTime.After(rep.BottomTime) {
		t.Error("RecoveryTime does not strictly follow BottomTime")
	}
	if *rep.RecoveryDuration <= 0 {
		t.Errorf("RecoveryDuration = %v, want strictly positive", *rep.RecoveryDuration)
	}
	if len(rep.Series) != len(h)-1 {
		t.Errorf("drawdown series length = %d, want %d", len(rep.Series), len(h)-1)
	}
}

func TestMaxDrawdownNeverRecovered(t *testing.T) {
	h := history(100, 120, 90, 95)

	rep, err := MaxDrawdown(h)
	if err != nil {
		t.Fatalf("MaxDrawdown: %v", err)
	}
	if !almostEqual(rep.MaxDrawdown, -0.25) {
		t.Errorf("MaxDrawdown = %v, want -0.25", rep.MaxDrawdown)
	}
	if rep.RecoveryTime != nil || rep.RecoveryDuration != nil {
		t.Errorf("unrecovered series has RecoveryTime=%v RecoveryDuration=%v, want both nil",
			rep.RecoveryTime, rep.RecoveryDuration)
	}
	if !rep.BottomTime.Equal(h[2].Timestamp) {
		t.Errorf("BottomTime = %v, want %v", rep.BottomTime, h[2].Timestamp)
	}
}

func TestMaxDrawdownBottomTieTakesFirst(t *testing.T) {
	// Cumulative: 1.0, 0.8, 0.8. The minimum drawdown occurs twice; the
	// bottom must be the first occurrence.
	h := history(100, 100, 80, 80)

	rep, err := MaxDrawdown(h)
	if err != nil {
		t.Fatalf("MaxDrawdown: %v", err)
	}
	if !rep.BottomTime.Equal(h[2].Timestamp) {
		t.Errorf("BottomTime = %v, want first minimum at %v", rep.BottomTime, h[2].Timestamp)
	}
}

func TestMaxDrawdownPeakIsLatestHighWaterMark(t *testing.T) {
	// Cumulative: 2.0, 1.0, 2.0, 0.5. The high-water mark 2.0 is hit twice
	// before the worst decline; the peak must be the later one, not time zero.
	h := history(100, 200, 100, 200, 50)

	rep, err := MaxDrawdown(h)
	if err != nil {
		t.Fatalf("MaxDrawdown: %v", err)
	}
	if !almostEqual(rep.MaxDrawdown, -0.75) {
		t.Errorf("MaxDrawdown = %v, want -0.75", rep.MaxDrawdown)
	}
	if !rep.BottomTime.Equal(h[4].Timestamp) {
		t.Errorf("BottomTime = %v, want %v", rep.BottomTime, h[4].Timestamp)
	}
	if !rep.PeakTime.Equal(h[3].Timestamp) {
		t.Errorf("PeakTime = %v, want latest high-water mark at %v", rep.PeakTime, h[3].Timestamp)
	}
}

func TestMaxDrawdownFlatSeries(t *testing.T) {
	rep, err := MaxDrawdown(history(100, 100, 100))
	if err != nil {
		t.Fatalf("MaxDrawdown(flat): %v", err)
	}
	if rep.MaxDrawdown != 0 {
		t.Errorf("MaxDrawdown(flat) = %v, want 0", rep.MaxDrawdown)
	}
	for i, p := range rep.Series {
		if p.Drawdown != 0 {
			t.Errorf("Series[%d].Drawdown = %v, want 0", i, p.Drawdown)
		}
	}
}

func TestMaxDrawdownMonotonicRise(t *testing.T) {
	rep, err := MaxDrawdown(history(100, 110, 121, 133.1))
	if err != nil {
		t.Fatalf("MaxDrawdown: %v", err)
	}
	if math.Abs(rep.MaxDrawdown) > 1e-12 {
		t.Errorf("MaxDrawdown of a rising series = %v, want 0", rep.MaxDrawdown)
	}
}

func TestMaxDrawdownInsufficientData(t *testing.T) {
	for _, values := range [][]float64{nil, {100}} {
		if _, err := MaxDrawdown(history(values...)); !errors.Is(err, ErrInsufficientData) {
			t.Errorf("MaxDrawdown(len %d) error = %v, want ErrInsufficientData", len(values), err)
		}
	}
}

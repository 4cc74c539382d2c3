// Package report turns simulation results into human-readable Markdown
// performance reports.
package report

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"marketsim/internal/domain"
	"marketsim/internal/engine"
	"marketsim/internal/metrics"
)

// StrategySummary holds the computed performance figures for one strategy's
// run, ready for rendering.
type StrategySummary struct {
	Name            string
	InitialValue    float64
	FinalValue      float64
	TotalReturn     float64
	Sharpe          float64
	SharpeNote      string // set when the Sharpe ratio is undefined
	Drawdown        *metrics.DrawdownReport
	Orders          int
	FailedOrders    int
	OrderErrors     int
	ExecutionErrors int
}

// Build computes a StrategySummary from a finished run. riskFree is the
// per-period risk-free rate used by the Sharpe ratio.
func Build(name string, state *engine.RunState, riskFree float64) (*StrategySummary, error) {
	totalReturn, err := metrics.TotalReturn(state.History)
	if err != nil {
		return nil, fmt.Errorf("strategy %s: %w", name, err)
	}

	s := &StrategySummary{
		Name:            name,
		InitialValue:    state.History[0].Value,
		FinalValue:      state.History[len(state.History)-1].Value,
		TotalReturn:     totalReturn,
		Orders:          len(state.Orders),
		OrderErrors:     len(state.OrderErrors),
		ExecutionErrors: len(state.ExecutionErrors),
	}
	for _, o := range state.Orders {
		if o.Status == domain.OrderStatusFailed {
			s.FailedOrders++
		}
	}

	sharpe, err := metrics.SharpeRatio(state.History, riskFree)
	switch {
	case err == nil:
		s.Sharpe = sharpe
	case errors.Is(err, metrics.ErrZeroVolatility):
		s.SharpeNote = "undefined (zero volatility)"
	case errors.Is(err, metrics.ErrInsufficientData):
		s.SharpeNote = "undefined (insufficient data)"
	default:
		return nil, fmt.Errorf("strategy %s: %w", name, err)
	}

	dd, err := metrics.MaxDrawdown(state.History)
	if err != nil && !errors.Is(err, metrics.ErrInsufficientData) {
		return nil, fmt.Errorf("strategy %s: %w", name, err)
	}
	s.Drawdown = dd

	return s, nil
}

// interpretSharpe maps a Sharpe ratio to the conventional qualitative band.
func interpretSharpe(sharpe float64) string {
	switch {
	case sharpe > 2:
		return "Excellent"
	case sharpe > 1:
		return "Very Good"
	case sharpe > 0.5:
		return "Good"
	case sharpe > 0:
		return "Adequate"
	default:
		return "Poor"
	}
}

// RenderMarkdown renders a comparison report across all strategies followed
// by a detailed section per strategy. Strategies are ordered by total
// return, best first.
func RenderMarkdown(summaries []*StrategySummary, generatedAt time.Time) string {
	sorted := make([]*StrategySummary, len(summaries))
	copy(sorted, summaries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalReturn > sorted[j].TotalReturn
	})

	var b strings.Builder
	fmt.Fprintf(&b, "# Simulation Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", generatedAt.UTC().Format(time.RFC3339))

	b.WriteString("## Strategy Comparison\n\n")
	b.WriteString("| Strategy | Total Return | Sharpe | Max Drawdown | Orders | Failed |\n")
	b.WriteString("|----------|-------------:|-------:|-------------:|-------:|-------:|\n")
	for _, s := range sorted {
		fmt.Fprintf(&b, "| %s | %.2f%% | %s | %s | %d | %d |\n",
			s.Name,
			s.TotalReturn*100,
			s.sharpeCell(),
			s.drawdownCell(),
			s.Orders,
			s.FailedOrders,
		)
	}
	b.WriteString("\n")

	for _, s := range sorted {
		s.renderDetail(&b)
	}

	return b.String()
}

func (s *StrategySummary) sharpeCell() string {
	if s.SharpeNote != "" {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", s.Sharpe)
}

func (s *StrategySummary) drawdownCell() string {
	if s.Drawdown == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", s.Drawdown.MaxDrawdown*100)
}

func (s *StrategySummary) renderDetail(b *strings.Builder) {
	fmt.Fprintf(b, "## %s\n\n", s.Name)

	fmt.Fprintf(b, "- Initial value: %.2f\n", s.InitialValue)
	fmt.Fprintf(b, "- Final value: %.2f\n", s.FinalValue)
	fmt.Fprintf(b, "- Total return: %.2f%%\n", s.TotalReturn*100)

	if s.SharpeNote != "" {
		fmt.Fprintf(b, "- Sharpe ratio: %s\n", s.SharpeNote)
	} else {
		fmt.Fprintf(b, "- Sharpe ratio: %.3f (%s)\n", s.Sharpe, interpretSharpe(s.Sharpe))
	}

	fmt.Fprintf(b, "- Orders: %d (%d failed)\n", s.Orders, s.FailedOrders)
	fmt.Fprintf(b, "- Order errors: %d\n", s.OrderErrors)
	fmt.Fprintf(b, "- Execution errors: %d\n\n", s.ExecutionErrors)

	if s.Drawdown == nil {
		b.WriteString("Not enough history for drawdown analysis.\n\n")
		return
	}

	dd := s.Drawdown
	b.WriteString("### Drawdown\n\n")
	fmt.Fprintf(b, "- Max drawdown: %.2f%%\n", dd.MaxDrawdown*100)
	fmt.Fprintf(b, "- Peak: %s\n", dd.PeakTime.UTC().Format(time.RFC3339))
	fmt.Fprintf(b, "- Bottom: %s\n", dd.BottomTime.UTC().Format(time.RFC3339))
	if dd.RecoveryTime != nil {
		fmt.Fprintf(b, "- Recovered: %s (%s after the peak)\n",
			dd.RecoveryTime.UTC().Format(time.RFC3339), dd.RecoveryDuration)
	} else {
		b.WriteString("- Recovered: never\n")
	}
	b.WriteString("\n")
}

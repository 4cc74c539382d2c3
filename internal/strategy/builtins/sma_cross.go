// Package builtins provides the strategy implementations that ship with
// marketsim.
package builtins

import (
	"fmt"

	"marketsim/internal/domain"
	"marketsim/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*SMACross)(nil)

// SMACross is a simple moving average crossover strategy: it buys when the
// short-period SMA is above the long-period SMA and sells when it is below.
// Price buffers are kept per symbol, with incremental window sums so each
// tick is O(1).
type SMACross struct {
	shortPeriod int
	longPeriod  int
	quantity    float64
	windows     map[string]*smaWindow
}

type smaWindow struct {
	prices   []float64
	shortSum float64
	longSum  float64
}

// NewSMACross creates an SMACross with the given short and long periods and
// the fixed quantity it trades per signal. Parameter validation is fatal:
// the error propagates to the caller before any replay begins.
func NewSMACross(short, long int, quantity float64) (*SMACross, error) {
	if short <= 0 {
		return nil, fmt.Errorf("sma-cross: short period must be positive, got %d", short)
	}
	if long <= short {
		return nil, fmt.Errorf("sma-cross: long period %d must exceed short period %d", long, short)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("sma-cross: quantity must be positive, got %v", quantity)
	}
	return &SMACross{
		shortPeriod: short,
		longPeriod:  long,
		quantity:    quantity,
		windows:     make(map[string]*smaWindow),
	}, nil
}

// Name returns "sma-cross".
func (s *SMACross) Name() string { return "sma-cross" }

// OnTick updates the symbol's rolling windows and recommends a trade when
// the moving averages have diverged. Until the long window fills, the
// strategy holds.
func (s *SMACross) OnTick(tick domain.Tick) domain.Signal {
	w, ok := s.windows[tick.Symbol]
	if !ok {
		w = &smaWindow{prices: make([]float64, 0, s.longPeriod+1)}
		s.windows[tick.Symbol] = w
	}

	w.prices = append(w.prices, tick.Price)
	w.shortSum += tick.Price
	w.longSum += tick.Price
	if n := len(w.prices); n > s.shortPeriod {
		w.shortSum -= w.prices[n-s.shortPeriod-1]
	}
	if len(w.prices) > s.longPeriod {
		w.longSum -= w.prices[0]
		w.prices = w.prices[1:]
	}

	if len(w.prices) < s.longPeriod {
		return domain.Hold(tick)
	}

	shortMA := w.shortSum / float64(s.shortPeriod)
	longMA := w.longSum / float64(s.longPeriod)

	switch {
	case shortMA > longMA:
		return domain.Signal{Action: domain.ActionBuy, Symbol: tick.Symbol, Quantity: s.quantity, Price: tick.Price}
	case shortMA < longMA:
		return domain.Signal{Action: domain.ActionSell, Symbol: tick.Symbol, Quantity: s.quantity, Price: tick.Price}
	default:
		return domain.Hold(tick)
	}
}

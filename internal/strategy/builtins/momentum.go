package builtins

import (
	"fmt"

	"marketsim/internal/domain"
	"marketsim/internal/strategy"
)

var _ strategy.Strategy = (*Momentum)(nil)

// Momentum buys when the current price is above the price lookback ticks ago
// and sells when it is below. Like SMACross it keeps per-symbol history, so
// a single instance can trade a multi-symbol feed.
type Momentum struct {
	lookback int
	quantity float64
	history  map[string][]float64
}

// NewMomentum creates a Momentum strategy comparing against the price
// lookback ticks in the past.
func NewMomentum(lookback int, quantity float64) (*Momentum, error) {
	if lookback <= 0 {
		return nil, fmt.Errorf("momentum: lookback must be positive, got %d", lookback)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("momentum: quantity must be positive, got %v", quantity)
	}
	return &Momentum{
		lookback: lookback,
		quantity: quantity,
		history:  make(map[string][]float64),
	}, nil
}

// Name returns "momentum".
func (m *Momentum) Name() string { return "momentum" }

// OnTick compares the tick price against the price lookback ticks earlier.
// Holds until enough history has accumulated.
func (m *Momentum) OnTick(tick domain.Tick) domain.Signal {
	prices := append(m.history[tick.Symbol], tick.Price)
	if len(prices) > m.lookback+1 {
		prices = prices[1:]
	}
	m.history[tick.Symbol] = prices

	if len(prices) < m.lookback+1 {
		return domain.Hold(tick)
	}

	ref := prices[0]
	switch {
	case tick.Price > ref:
		return domain.Signal{Action: domain.ActionBuy, Symbol: tick.Symbol, Quantity: m.quantity, Price: tick.Price}
	case tick.Price < ref:
		return domain.Signal{Action: domain.ActionSell, Symbol: tick.Symbol, Quantity: m.quantity, Price: tick.Price}
	default:
		return domain.Hold(tick)
	}
}

package engine

import (
	"fmt"

	"marketsim/internal/domain"
)

// createOrder validates a raw signal against the strategy's portfolio and
// turns it into a pending order. Validation failures come back as
// *domain.OrderError with enough detail to reconstruct the violated
// constraint (attempted vs available quantity or cash).
func (e *Engine) createOrder(state *RunState, tick domain.Tick, signal domain.Signal) (*domain.Order, error) {
	var direction float64
	switch signal.Action {
	case domain.ActionBuy:
		direction = 1
	case domain.ActionSell:
		direction = -1
	default:
		return nil, &domain.OrderError{Reason: fmt.Sprintf("malformed signal: unknown action %q", signal.Action)}
	}

	if signal.Quantity < 0 {
		return nil, &domain.OrderError{Reason: fmt.Sprintf("malformed signal: negative quantity %v", signal.Quantity)}
	}

	pf := state.Portfolio
	if !pf.Tracks(signal.Symbol) {
		return nil, &domain.OrderError{Reason: fmt.Sprintf("unknown symbol %q: not present in the replay set", signal.Symbol)}
	}

	quantity := direction * signal.Quantity

	// No short selling: a sell must be covered by the held quantity.
	if quantity < 0 {
		held := pf.Position(signal.Symbol).Quantity
		if -quantity > held {
			return nil, &domain.OrderError{Reason: fmt.Sprintf(
				"not enough shares to sell %s: want %v, have %v", signal.Symbol, -quantity, held)}
		}
	}

	// No margin: a buy must be covered by cash.
	if quantity > 0 {
		cost := quantity * signal.Price
		if cost > pf.Cash() {
			return nil, &domain.OrderError{Reason: fmt.Sprintf(
				"not enough cash to buy %s: need %.2f, have %.2f", signal.Symbol, cost, pf.Cash())}
		}
	}

	return domain.NewOrder(signal.Symbol, quantity, signal.Price, tick.Timestamp)
}

// executeOrder makes the single execution attempt for a validated order. A
// uniform draw below the configured failure probability simulates a market
// rejection and leaves the portfolio untouched; otherwise the trade is
// applied. There is never a retry.
func (e *Engine) executeOrder(state *RunState, order *domain.Order) error {
	if e.rng.Float64() < e.failureProb {
		return &domain.ExecutionError{Reason: fmt.Sprintf(
			"market rejected order %s: %s %v at %.2f", order.ID, order.Symbol, order.Quantity, order.Price)}
	}

	state.Portfolio.ApplyTrade(order.Symbol, order.Quantity, order.Price)
	return nil
}

// Package domain defines the core value types shared across the simulator:
// market ticks, trading signals, orders, and the error categories raised
// during order validation and execution.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Action is a strategy's recommended side for the current tick.
type Action string

// Signal actions.
const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// OrderStatus tracks an order through its lifecycle.
type OrderStatus string

// Order lifecycle states.
const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusSuccess OrderStatus = "success"
	OrderStatusFailed  OrderStatus = "failed"
)

// Tick is a single immutable market observation. Ticks are produced by the
// data layer and never mutated by the engine.
type Tick struct {
	Timestamp time.Time
	Symbol    string
	Price     float64
}

// Signal is a strategy's recommendation for one tick, prior to validation.
// Quantity is always non-negative; the direction comes from Action.
type Signal struct {
	Action   Action
	Symbol   string
	Quantity float64
	Price    float64
}

// Hold returns a no-op signal for the given tick. Strategies use it to pass
// on a tick without trading.
func Hold(tick Tick) Signal {
	return Signal{Action: ActionHold, Symbol: tick.Symbol, Price: tick.Price}
}

// Order is a validated trading instruction. Unlike Tick it is deliberately
// mutable: the engine transitions Status from pending to success or failed
// after the execution attempt.
type Order struct {
	ID        string
	Symbol    string
	Quantity  float64 // signed: positive = buy, negative = sell
	Price     float64
	Status    OrderStatus
	CreatedAt time.Time
}

// NewOrder constructs a pending order. The price must be strictly positive;
// a violation is reported as an *OrderError.
func NewOrder(symbol string, quantity, price float64, at time.Time) (*Order, error) {
	if price <= 0 {
		return nil, &OrderError{Reason: fmt.Sprintf("invalid price %v for %s: must be positive", price, symbol)}
	}
	return &Order{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Quantity:  quantity,
		Price:     price,
		Status:    OrderStatusPending,
		CreatedAt: at,
	}, nil
}

// ValuePoint is one sample of a portfolio's mark-to-market value.
type ValuePoint struct {
	Timestamp time.Time
	Value     float64
}

// OrderError reports a signal that failed validation. It is tick-local and
// recoverable: the engine logs it and the strategy's portfolio is untouched.
type OrderError struct {
	Reason string
}

func (e *OrderError) Error() string { return e.Reason }

// ExecutionError reports an order that passed validation but was rejected at
// the execution step. Also tick-local: the order is recorded as failed and
// the replay continues.
type ExecutionError struct {
	Reason string
}

func (e *ExecutionError) Error() string { return e.Reason }

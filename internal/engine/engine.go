// Package engine replays a chronological sequence of market ticks against a
// set of independent trading strategies, validating and executing the
// resulting orders against per-strategy portfolios.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"marketsim/internal/domain"
	"marketsim/internal/portfolio"
	"marketsim/internal/strategy"
)

// defaultFailureProbability is the chance that a validated order is rejected
// at the execution step.
const defaultFailureProbability = 0.01

// RunState holds everything the engine accumulates for one strategy over a
// replay: its portfolio, every order ever created (successful and failed),
// separate validation and execution error logs, and the per-tick value
// history. The engine mutates it during Run and it is effectively immutable
// afterwards.
type RunState struct {
	Strategy        strategy.Strategy
	Portfolio       *portfolio.Portfolio
	Orders          []*domain.Order
	OrderErrors     []string // validation failures, "<timestamp>: <reason>"
	ExecutionErrors []string // execution rejections, same format
	History         []domain.ValuePoint
}

// Engine coordinates the replay: it pulls signals from strategies, validates
// them into orders, attempts execution against the strategy's own portfolio,
// and records a value sample per tick per strategy. Strategies never share
// portfolios, order lists, or error logs.
type Engine struct {
	ticks       []domain.Tick
	strategies  []strategy.Strategy
	states      map[string]*RunState
	symbols     []string
	initialCash float64
	failureProb float64
	allowShort  bool // reserved: accepted but not honoured by validation
	rng         *rand.Rand
	log         *slog.Logger
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithFailureProbability overrides the default 1% chance that execution of a
// validated order fails.
func WithFailureProbability(p float64) Option {
	return func(e *Engine) { e.failureProb = p }
}

// WithRand injects the random source used for the execution failure draw.
// Seeding it makes a replay fully reproducible.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithAllowShort sets the short-selling flag. The flag is accepted and
// stored but no short-selling code path exists yet; sell validation always
// enforces the held quantity.
func WithAllowShort(allow bool) Option {
	return func(e *Engine) { e.allowShort = allow }
}

// WithLogger sets the logger used for per-tick diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New builds an Engine from an unordered tick collection, a list of
// strategies, and a starting cash balance. Ticks are stable-sorted by
// timestamp (ties keep the caller's emission order), the distinct symbol set
// is derived, and each strategy gets an isolated portfolio seeded with
// initialCash and a zero position for every symbol.
//
// Construction errors surface before any replay begins.
func New(ticks []domain.Tick, strategies []strategy.Strategy, initialCash float64, opts ...Option) (*Engine, error) {
	if initialCash < 0 {
		return nil, fmt.Errorf("engine: initial cash must be non-negative, got %v", initialCash)
	}
	if len(strategies) == 0 {
		return nil, fmt.Errorf("engine: at least one strategy is required")
	}

	e := &Engine{
		strategies:  strategies,
		initialCash: initialCash,
		failureProb: defaultFailureProbability,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.failureProb < 0 || e.failureProb > 1 {
		return nil, fmt.Errorf("engine: failure probability %v outside [0, 1]", e.failureProb)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	// Sort a copy so the caller's slice is left alone. The sort must be
	// stable: ticks for different symbols at the same timestamp are replayed
	// in emission order.
	e.ticks = make([]domain.Tick, len(ticks))
	copy(e.ticks, ticks)
	sort.SliceStable(e.ticks, func(i, j int) bool {
		return e.ticks[i].Timestamp.Before(e.ticks[j].Timestamp)
	})

	seen := make(map[string]struct{})
	for _, tick := range e.ticks {
		if _, ok := seen[tick.Symbol]; !ok {
			seen[tick.Symbol] = struct{}{}
			e.symbols = append(e.symbols, tick.Symbol)
		}
	}

	e.states = make(map[string]*RunState, len(strategies))
	for _, s := range strategies {
		name := s.Name()
		if _, dup := e.states[name]; dup {
			return nil, fmt.Errorf("engine: duplicate strategy name %q", name)
		}
		e.states[name] = &RunState{
			Strategy:  s,
			Portfolio: portfolio.New(initialCash, e.symbols),
		}
	}

	return e, nil
}

// Symbols returns the distinct symbols present in the replay set, in first
// appearance order.
func (e *Engine) Symbols() []string { return e.symbols }

// Run replays every tick against every strategy and returns the per-strategy
// run states keyed by strategy name. The loop is single-threaded and runs to
// completion: per-tick failures are logged into the owning strategy's state
// and never abort the replay. Run performs no I/O.
func (e *Engine) Run() map[string]*RunState {
	// currentPrices is shared read-only context across strategies within a
	// tick: written once per tick before any strategy reads it. Seeding every
	// symbol up front keeps Portfolio.Value total.
	currentPrices := make(map[string]float64, len(e.symbols))
	for _, sym := range e.symbols {
		currentPrices[sym] = 0
	}

	e.log.Info("replay starting",
		"ticks", len(e.ticks),
		"strategies", len(e.strategies),
		"symbols", len(e.symbols),
	)

	for _, tick := range e.ticks {
		currentPrices[tick.Symbol] = tick.Price

		for _, s := range e.strategies {
			state := e.states[s.Name()]

			signal := s.OnTick(tick)
			e.processSignal(state, tick, signal)

			// One value sample per tick per strategy, regardless of whether a
			// trade occurred or failed.
			state.History = append(state.History, domain.ValuePoint{
				Timestamp: tick.Timestamp,
				Value:     state.Portfolio.Value(currentPrices),
			})
		}
	}

	for name, state := range e.states {
		e.log.Info("replay finished",
			"strategy", name,
			"orders", len(state.Orders),
			"orderErrors", len(state.OrderErrors),
			"executionErrors", len(state.ExecutionErrors),
		)
	}

	return e.states
}

// processSignal carries one signal through validation and execution,
// recording outcomes on the strategy's state. Hold and zero-quantity signals
// are pure no-ops: no order object, no cash or position check.
func (e *Engine) processSignal(state *RunState, tick domain.Tick, signal domain.Signal) {
	if signal.Action == domain.ActionHold || signal.Quantity == 0 {
		return
	}

	order, err := e.createOrder(state, tick, signal)
	if err != nil {
		state.OrderErrors = append(state.OrderErrors, timestamped(tick.Timestamp, err))
		return
	}

	if err := e.executeOrder(state, order); err != nil {
		order.Status = domain.OrderStatusFailed
		state.ExecutionErrors = append(state.ExecutionErrors, timestamped(tick.Timestamp, err))
		e.log.Debug("order failed", "strategy", state.Strategy.Name(), "order", order.ID, "err", err)
	} else {
		order.Status = domain.OrderStatusSuccess
	}

	// Failed orders stay in the history alongside successful ones.
	state.Orders = append(state.Orders, order)
}

func timestamped(ts time.Time, err error) string {
	return fmt.Sprintf("%s: %v", ts.Format(time.RFC3339Nano), err)
}

// Package strategy defines the Strategy interface consumed by the execution
// engine and provides a Registry for managing multiple strategy
// implementations.
package strategy

import (
	"sort"

	"marketsim/internal/domain"
)

// Strategy is the interface that all trading strategies must implement. The
// engine calls OnTick exactly once per observation per strategy, in
// timestamp order, and never re-invokes it with stale data.
type Strategy interface {
	// Name returns the unique identifier for this strategy. It keys the
	// engine's result map, so two strategies in one run must not share it.
	Name() string

	// OnTick consumes one market observation and returns the strategy's
	// recommendation for it. Strategies that want to pass on a tick return a
	// hold signal.
	OnTick(tick domain.Tick) domain.Signal
}

// Registry holds a named collection of strategies for lookup and enumeration.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry creates an empty strategy Registry.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]Strategy),
	}
}

// Register adds a strategy to the registry, keyed by its Name().
func (r *Registry) Register(s Strategy) {
	r.strategies[s.Name()] = s
}

// Get retrieves a strategy by name. The second return value indicates whether
// the strategy was found.
func (r *Registry) Get(name string) (Strategy, bool) {
	s, ok := r.strategies[name]
	return s, ok
}

// List returns a sorted slice of all registered strategy names.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

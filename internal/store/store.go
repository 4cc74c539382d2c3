// Package store defines storage interfaces for persisting and retrieving
// market ticks and simulation results.
package store

import (
	"context"
	"time"

	"marketsim/internal/domain"
)

// TickStore persists and retrieves price tick data.
type TickStore interface {
	// WriteTicks persists a batch of ticks to storage.
	WriteTicks(ctx context.Context, ticks []domain.Tick) error

	// ReadTicks returns ticks for the given symbol within [start, end].
	ReadTicks(ctx context.Context, symbol string, start, end time.Time) ([]domain.Tick, error)

	// ListSymbols returns all distinct symbols available in storage.
	ListSymbols(ctx context.Context) ([]string, error)
}

// RunRecord summarises a single completed simulation run for one strategy.
type RunRecord struct {
	ID          string
	Strategy    string
	StartedAt   time.Time
	InitialCash float64
	FinalValue  float64
	TotalReturn float64
}

// ResultStore persists simulation outcomes: run summaries, the orders each
// run produced, and the per-tick value history.
type ResultStore interface {
	// SaveRun inserts a run summary record.
	SaveRun(ctx context.Context, run *RunRecord) error

	// SaveOrders persists all orders produced by the given run.
	SaveOrders(ctx context.Context, runID string, orders []*domain.Order) error

	// SaveHistory persists the portfolio value history of the given run.
	SaveHistory(ctx context.Context, runID string, history []domain.ValuePoint) error

	// ListRuns returns all run summaries, most recent first.
	ListRuns(ctx context.Context) ([]RunRecord, error)
}

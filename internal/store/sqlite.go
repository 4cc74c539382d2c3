package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"marketsim/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface checks.
var _ TickStore = (*SQLiteStore)(nil)
var _ ResultStore = (*SQLiteStore)(nil)

// SQLiteStore implements TickStore and ResultStore backed by a SQLite
// database. Timestamps are stored as Unix milliseconds.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS ticks (
	symbol    TEXT    NOT NULL,
	timestamp INTEGER NOT NULL,
	price     REAL    NOT NULL,
	PRIMARY KEY (symbol, timestamp)
);

CREATE TABLE IF NOT EXISTS runs (
	id           TEXT    PRIMARY KEY,
	strategy     TEXT    NOT NULL,
	started_at   INTEGER NOT NULL,
	initial_cash REAL    NOT NULL,
	final_value  REAL    NOT NULL,
	total_return REAL    NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
	id         TEXT    PRIMARY KEY,
	run_id     TEXT    NOT NULL REFERENCES runs(id),
	symbol     TEXT    NOT NULL,
	quantity   REAL    NOT NULL,
	price      REAL    NOT NULL,
	status     TEXT    NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS history (
	run_id    TEXT    NOT NULL REFERENCES runs(id),
	timestamp INTEGER NOT NULL,
	value     REAL    NOT NULL,
	PRIMARY KEY (run_id, timestamp)
);
`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, applies the
// schema, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// TickStore implementation
// ---------------------------------------------------------------------------

// WriteTicks inserts ticks in a single transaction. Re-inserting an existing
// (symbol, timestamp) pair replaces the stored price, so re-gathering a
// range is idempotent.
func (s *SQLiteStore) WriteTicks(ctx context.Context, ticks []domain.Tick) error {
	if len(ticks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO ticks (symbol, timestamp, price) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range ticks {
		if _, err := stmt.ExecContext(ctx, t.Symbol, t.Timestamp.UnixMilli(), t.Price); err != nil {
			return fmt.Errorf("inserting tick %s@%s: %w", t.Symbol, t.Timestamp, err)
		}
	}
	return tx.Commit()
}

// ReadTicks returns ticks for the given symbol within [start, end], ordered
// by timestamp.
func (s *SQLiteStore) ReadTicks(ctx context.Context, symbol string, start, end time.Time) ([]domain.Tick, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT symbol, timestamp, price FROM ticks
		 WHERE symbol = ? AND timestamp BETWEEN ? AND ?
		 ORDER BY timestamp`,
		symbol, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ticks []domain.Tick
	for rows.Next() {
		var sym string
		var ts int64
		var price float64
		if err := rows.Scan(&sym, &ts, &price); err != nil {
			return nil, err
		}
		ticks = append(ticks, domain.Tick{
			Timestamp: time.UnixMilli(ts).UTC(),
			Symbol:    sym,
			Price:     price,
		})
	}
	return ticks, rows.Err()
}

// ListSymbols returns all distinct symbols present in the ticks table.
func (s *SQLiteStore) ListSymbols(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT symbol FROM ticks ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, err
		}
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}

// ---------------------------------------------------------------------------
// ResultStore implementation
// ---------------------------------------------------------------------------

// SaveRun inserts a run summary record.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *RunRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, strategy, started_at, initial_cash, final_value, total_return)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Strategy, run.StartedAt.UnixMilli(),
		run.InitialCash, run.FinalValue, run.TotalReturn)
	return err
}

// SaveOrders persists all orders produced by the given run.
func (s *SQLiteStore) SaveOrders(ctx context.Context, runID string, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO orders (id, run_id, symbol, quantity, price, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, o := range orders {
		if _, err := stmt.ExecContext(ctx, o.ID, runID, o.Symbol, o.Quantity,
			o.Price, string(o.Status), o.CreatedAt.UnixMilli()); err != nil {
			return fmt.Errorf("inserting order %s: %w", o.ID, err)
		}
	}
	return tx.Commit()
}

// SaveHistory persists the portfolio value history of the given run.
func (s *SQLiteStore) SaveHistory(ctx context.Context, runID string, history []domain.ValuePoint) error {
	if len(history) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO history (run_id, timestamp, value) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range history {
		if _, err := stmt.ExecContext(ctx, runID, p.Timestamp.UnixMilli(), p.Value); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListRuns returns all run summaries, most recent first.
func (s *SQLiteStore) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, strategy, started_at, initial_cash, final_value, total_return
		 FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var startedAt int64
		if err := rows.Scan(&r.ID, &r.Strategy, &startedAt,
			&r.InitialCash, &r.FinalValue, &r.TotalReturn); err != nil {
			return nil, err
		}
		r.StartedAt = time.UnixMilli(startedAt).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

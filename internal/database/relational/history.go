package relational

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SchemaSQL creates the expansion history table.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS expansion_runs (
	run_id      VARCHAR PRIMARY KEY,
	seed        VARCHAR NOT NULL,
	strategy    VARCHAR NOT NULL,
	max_hops    INTEGER NOT NULL,
	node_count  INTEGER NOT NULL,
	link_count  INTEGER NOT NULL,
	round_trips INTEGER NOT NULL,
	duration_ms BIGINT NOT NULL,
	error       VARCHAR,
	severity    INTEGER NOT NULL DEFAULT 0,
	flags       VARCHAR,
	started_at  TIMESTAMP NOT NULL
);
`

// Run is one recorded expansion.
type Run struct {
	RunID      string    `json:"run_id"`
	Seed       string    `json:"seed"`
	Strategy   string    `json:"strategy"`
	MaxHops    int       `json:"max_hops"`
	NodeCount  int       `json:"node_count"`
	LinkCount  int       `json:"link_count"`
	RoundTrips int       `json:"round_trips"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	Severity   int       `json:"severity"`
	Flags      string    `json:"flags,omitempty"`
	StartedAt  time.Time `json:"started_at"`
}

// HistoryRepo persists expansion runs.
type HistoryRepo struct {
	db      *sql.DB
	flagger RunFlagger
}

type HistoryOption func(*HistoryRepo)

// WithRunFlagger grades every run before it is stored.
func WithRunFlagger(f RunFlagger) HistoryOption {
	return func(r *HistoryRepo) {
		r.flagger = f
	}
}

func NewHistoryRepo(db *sql.DB, opts ...HistoryOption) *HistoryRepo {
	r := &HistoryRepo{db: db}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *HistoryRepo) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, SchemaSQL)
	return err
}

// Record stores run, assigning a run id when it has none.
func (r *HistoryRepo) Record(ctx context.Context, run Run) (Run, error) {
	if run.Seed == "" {
		return Run{}, errors.New("seed required")
	}
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if r.flagger != nil {
		r.flagger.Flag(&run)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expansion_runs (
			run_id, seed, strategy, max_hops, node_count, link_count,
			round_trips, duration_ms, error, severity, flags, started_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.RunID, run.Seed, run.Strategy, run.MaxHops, run.NodeCount, run.LinkCount,
		run.RoundTrips, run.DurationMS, nullEmpty(run.Error), run.Severity, nullEmpty(run.Flags), run.StartedAt,
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert expansion run: %w", err)
	}
	return run, nil
}

// Recent returns the latest runs, newest first, optionally only those seeded at seed.
func (r *HistoryRepo) Recent(ctx context.Context, seed string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	query := `
		SELECT run_id, seed, strategy, max_hops, node_count, link_count,
		       round_trips, duration_ms, COALESCE(error, '') AS error,
		       severity, COALESCE(flags, '') AS flags, started_at
		FROM expansion_runs
		WHERE 1=1
	`
	args := []any{}
	if seed != "" {
		query += " AND seed = ?"
		args = append(args, seed)
	}
	query += " ORDER BY started_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expansion runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		if err := rows.Scan(
			&run.RunID, &run.Seed, &run.Strategy, &run.MaxHops, &run.NodeCount, &run.LinkCount,
			&run.RoundTrips, &run.DurationMS, &run.Error, &run.Severity, &run.Flags, &run.StartedAt,
		); err != nil {
			return nil, fmt.Errorf("scan expansion run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *HistoryRepo) Close() error {
	return r.db.Close()
}

func nullEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

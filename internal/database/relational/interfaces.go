package relational

import "context"

// HistoryStore persists and lists expansion runs.
type HistoryStore interface {
	// Migrate creates the schema when missing.
	Migrate(ctx context.Context) error
	// Record stores one run and returns it with its assigned id.
	Record(ctx context.Context, run Run) (Run, error)
	// Recent lists the latest runs, newest first.
	Recent(ctx context.Context, seed string, limit int) ([]Run, error)
	Close() error
}

var _ HistoryStore = (*HistoryRepo)(nil)

// RunFlagger grades a run before it is stored.
type RunFlagger interface {
	Flag(run *Run)
}

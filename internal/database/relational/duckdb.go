// Package relational provides DuckDB-backed persistence for the expansion history.
package relational

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/marcboeker/go-duckdb"
)

const inMemoryDSN = ":memory:"

type duckSettings struct {
	threads       int
	memoryLimitGB int
	pingTimeout   time.Duration
}

// pragmas returns the statements applied once after the database opens.
func (s duckSettings) pragmas() []string {
	var out []string
	if s.threads > 0 {
		out = append(out, fmt.Sprintf("PRAGMA threads=%d", s.threads))
	}
	if s.memoryLimitGB > 0 {
		out = append(out, fmt.Sprintf("PRAGMA memory_limit='%dGB'", s.memoryLimitGB))
	}
	return out
}

// DuckDBClient owns the embedded history database.
type DuckDBClient struct {
	db       *sql.DB
	settings duckSettings
}

type DuckDBOption func(*duckSettings)

// WithThreads caps DuckDB worker threads; zero keeps the engine default.
func WithThreads(n int) DuckDBOption {
	return func(s *duckSettings) { s.threads = n }
}

// WithMemoryLimit caps DuckDB memory in GB; zero keeps the engine default.
func WithMemoryLimit(gb int) DuckDBOption {
	return func(s *duckSettings) { s.memoryLimitGB = gb }
}

// WithTimeout bounds the initial ping.
func WithTimeout(d time.Duration) DuckDBOption {
	return func(s *duckSettings) { s.pingTimeout = d }
}

// NewDuckDBClient opens the history file at path, or an in-memory database when path is empty.
func NewDuckDBClient(path string, opts ...DuckDBOption) (*DuckDBClient, error) {
	var settings duckSettings
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}
	if path == "" {
		path = inMemoryDSN
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open history database %s: %w", path, err)
	}
	// history writes are serialized through a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	client := &DuckDBClient{db: db, settings: settings}
	if err := client.prepare(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return client, nil
}

func (c *DuckDBClient) prepare() error {
	ctx := context.Background()
	if c.settings.pingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.settings.pingTimeout)
		defer cancel()
	}
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping history database: %w", err)
	}
	for _, stmt := range c.settings.pragmas() {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply %q: %w", stmt, err)
		}
	}
	return nil
}

func (c *DuckDBClient) DB() *sql.DB {
	return c.db
}

func (c *DuckDBClient) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *DuckDBClient) Ping(ctx context.Context) error {
	if c.db == nil {
		return errors.New("history database not open")
	}
	return c.db.PingContext(ctx)
}

package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"wilhelm/internal/database/relational"
	"wilhelm/internal/database/store"
	"wilhelm/internal/expansion"
	"wilhelm/internal/flagger"
	"wilhelm/internal/metrics"
	"wilhelm/internal/rag"
	"wilhelm/internal/vocab"
)

var errConfigRequired = errors.New("config is required")

// Components are the long-lived dependencies every command shares.
type Components struct {
	Logger    *slog.Logger
	Store     *store.Neo4jClient
	Engine    *expansion.Engine
	Vocab     *vocab.Service
	Explainer *rag.Explainer

	duck      *relational.DuckDBClient
	generator *rag.GeminiGenerator
}

// NewLogger builds the structured JSON logger and installs it as default.
func NewLogger(cfg *Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// Open connects the graph store, opens the history database when enabled and
// creates the Gemini client when an API key is configured.
func Open(ctx context.Context, cfg *Config, logger *slog.Logger) (*Components, error) {
	c := &Components{Logger: logger}

	client, err := store.NewNeo4jClient(ctx, store.Config{
		URI:            cfg.Neo4j.URI,
		Username:       cfg.Neo4j.Username,
		Password:       cfg.Neo4j.Password,
		Database:       cfg.Neo4j.Database,
		ConnectTimeout: cfg.Neo4j.ConnectTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init graph store: %w", err)
	}
	c.Store = client

	c.Engine = expansion.NewEngine(client,
		expansion.WithRelationshipType(cfg.Neo4j.RelationshipType),
		expansion.WithParallelism(cfg.Expansion.Parallelism),
		expansion.WithObserver(metrics.ExpansionObserver{}),
		expansion.WithLogger(logger),
	)

	var history vocab.HistoryRecorder
	if cfg.History.Enabled {
		repo, err := c.openHistory(ctx, cfg.History)
		if err != nil {
			c.Close(ctx)
			return nil, err
		}
		history = repo
	}

	c.Vocab = vocab.NewService(client, c.Engine, history, vocab.Settings{
		DefaultMaxHops: cfg.Expansion.DefaultMaxHops,
		ApocMaxHops:    cfg.Expansion.ApocMaxHops,
		Timeout:        cfg.Expansion.Timeout,
	}, logger)

	if cfg.Gemini.Enabled() {
		gen, err := rag.NewGeminiGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			c.Close(ctx)
			return nil, err
		}
		c.generator = gen
		c.Explainer = rag.NewExplainer(c.Vocab, gen)
		logger.Info("gemini explainer enabled", slog.String("model", gen.ModelName()))
	}

	return c, nil
}

func (c *Components) openHistory(ctx context.Context, cfg HistoryConfig) (*relational.HistoryRepo, error) {
	if dir := filepath.Dir(cfg.DuckDBPath); dir != "" && cfg.DuckDBPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	duck, err := relational.NewDuckDBClient(cfg.DuckDBPath,
		relational.WithThreads(cfg.Threads),
		relational.WithMemoryLimit(cfg.MemoryLimitGB),
	)
	if err != nil {
		return nil, fmt.Errorf("init history: %w", err)
	}
	c.duck = duck

	repo := relational.NewHistoryRepo(duck.DB(),
		relational.WithRunFlagger(flagger.NewService(cfg.History.Thresholds)))
	if err := repo.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	c.Logger.Info("expansion history enabled", slog.String("path", cfg.DuckDBPath))
	return repo, nil
}

// Close releases every opened resource.
func (c *Components) Close(ctx context.Context) {
	if c.generator != nil {
		_ = c.generator.Close()
	}
	if c.duck != nil {
		if err := c.duck.Close(); err != nil {
			c.Logger.Warn("closing history failed", slog.String("error", err.Error()))
		}
	}
	if c.Store != nil {
		if err := c.Store.Close(ctx); err != nil {
			c.Logger.Warn("closing graph store failed", slog.String("error", err.Error()))
		}
	}
}

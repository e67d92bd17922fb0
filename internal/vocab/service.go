// Package vocab is the application service behind every transport: vocabulary
// queries, the three expansion endpoints and their history.
package vocab

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"wilhelm/internal/apperr"
	"wilhelm/internal/database/relational"
	"wilhelm/internal/expansion"
	"wilhelm/internal/graph"
	"wilhelm/internal/language"
)

const (
	countCypher = `MATCH (term:Term {language: $language}) RETURN count(*) AS count`
	pageCypher  = `MATCH (t:Term WHERE t.language = $language)-[r]->(d:Definition)
RETURN t.label AS term, d.label AS definition
SKIP $skip LIMIT $limit`
	searchCypher = `MATCH (node) WHERE node.label =~ $pattern RETURN node`
)

// QueryRunner executes a read query and returns normalized rows.
type QueryRunner interface {
	RunQuery(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
}

// Expander is the expansion engine surface the service uses.
type Expander interface {
	ExpandBounded(ctx context.Context, seed string, maxHops int) (*graph.Graph, error)
	ExpandRecursiveWithStats(ctx context.Context, seed string) (*graph.Graph, expansion.Stats, error)
}

// HistoryRecorder persists expansion runs. A nil recorder disables history.
type HistoryRecorder interface {
	Record(ctx context.Context, run relational.Run) (relational.Run, error)
	Recent(ctx context.Context, seed string, limit int) ([]relational.Run, error)
}

// Settings are the expansion defaults applied by the service.
type Settings struct {
	DefaultMaxHops int
	ApocMaxHops    int
	// Timeout bounds a whole traversal; zero means no bound.
	Timeout time.Duration
}

func DefaultSettings() Settings {
	return Settings{DefaultMaxHops: 3, ApocMaxHops: expansion.Unbounded}
}

type Service struct {
	queries  QueryRunner
	expander Expander
	history  HistoryRecorder
	settings Settings
	logger   *slog.Logger
}

func NewService(queries QueryRunner, expander Expander, history HistoryRecorder, settings Settings, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		queries:  queries,
		expander: expander,
		history:  history,
		settings: settings,
		logger:   logger,
	}
}

func (s *Service) Settings() Settings { return s.settings }

// CountByLanguage returns a single row {"count": n}.
func (s *Service) CountByLanguage(ctx context.Context, lang language.Language) ([]map[string]any, error) {
	return s.queries.RunQuery(ctx, countCypher, map[string]any{"language": lang.DatabaseName()})
}

// VocabularyPage returns the term/definition rows of one page; pages start at 1.
func (s *Service) VocabularyPage(ctx context.Context, lang language.Language, perPage, page int) ([]map[string]any, error) {
	if perPage <= 0 {
		return nil, fmt.Errorf("%w: perPage must be a positive integer, got %d", apperr.ErrInvalidArgument, perPage)
	}
	if page <= 0 {
		return nil, fmt.Errorf("%w: page must be a positive integer, got %d", apperr.ErrInvalidArgument, page)
	}
	return s.queries.RunQuery(ctx, pageCypher, map[string]any{
		"language": lang.DatabaseName(),
		"skip":     int64((page - 1) * perPage),
		"limit":    int64(perPage),
	})
}

// Search returns every node whose label contains keyword literally.
func (s *Service) Search(ctx context.Context, keyword string) ([]map[string]any, error) {
	if keyword == "" {
		return nil, fmt.Errorf("%w: keyword must not be empty", apperr.ErrInvalidArgument)
	}
	return s.queries.RunQuery(ctx, searchCypher, map[string]any{"pattern": SearchPattern(keyword)})
}

// SearchPattern is the regular expression matched against node labels.
func SearchPattern(keyword string) string {
	return ".*" + regexp.QuoteMeta(keyword) + ".*"
}

// Expand runs the store-side expansion with the configured default hop bound.
func (s *Service) Expand(ctx context.Context, word string) (*graph.Graph, error) {
	return s.ExpandApoc(ctx, word, s.settings.DefaultMaxHops)
}

// ExpandApoc runs the store-side expansion bounded by maxHops; -1 is unbounded.
func (s *Service) ExpandApoc(ctx context.Context, word string, maxHops int) (*graph.Graph, error) {
	if maxHops < expansion.Unbounded {
		return nil, fmt.Errorf("%w: maxHops must be -1 or non-negative, got %d", apperr.ErrInvalidArgument, maxHops)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	g, err := s.expander.ExpandBounded(ctx, word, maxHops)
	s.record(ctx, relational.Run{
		Seed:       word,
		Strategy:   string(expansion.StrategyBounded),
		MaxHops:    maxHops,
		RoundTrips: 1,
		StartedAt:  start.UTC(),
	}, g, time.Since(start), err)
	return g, err
}

// ExpandRecursive runs the client-side recursive expansion.
func (s *Service) ExpandRecursive(ctx context.Context, word string) (*graph.Graph, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	g, stats, err := s.expander.ExpandRecursiveWithStats(ctx, word)
	s.record(ctx, relational.Run{
		Seed:       word,
		Strategy:   string(expansion.StrategyRecursive),
		MaxHops:    1,
		RoundTrips: stats.RoundTrips,
		StartedAt:  start.UTC(),
	}, g, time.Since(start), err)
	return g, err
}

// History lists recent expansion runs, optionally for one seed.
func (s *Service) History(ctx context.Context, seed string, limit int) ([]relational.Run, error) {
	if s.history == nil {
		return nil, apperr.ErrHistoryDisabled
	}
	return s.history.Recent(ctx, seed, limit)
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.settings.Timeout > 0 {
		return context.WithTimeout(ctx, s.settings.Timeout)
	}
	return context.WithCancel(ctx)
}

// record never fails the expansion; a history write error is only logged.
func (s *Service) record(ctx context.Context, run relational.Run, g *graph.Graph, d time.Duration, err error) {
	if s.history == nil {
		return
	}
	run.NodeCount = g.NodeCount()
	run.LinkCount = g.LinkCount()
	run.DurationMS = d.Milliseconds()
	if err != nil {
		run.Error = err.Error()
	}
	// The traversal context may already be spent.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if _, rerr := s.history.Record(writeCtx, run); rerr != nil {
		s.logger.Warn("failed to record expansion run",
			slog.String("seed", run.Seed),
			slog.String("strategy", run.Strategy),
			slog.Any("error", rerr))
	}
}

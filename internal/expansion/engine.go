// Package expansion builds subgraphs around a seed label, either with one bounded
// traversal delegated to the store or by recursively expanding one hop at a time.
package expansion

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"wilhelm/internal/apperr"
	"wilhelm/internal/graph"
)

// Unbounded asks the store for paths of any length.
const Unbounded = -1

// DefaultRelationshipType is the relationship type followed by expansions.
const DefaultRelationshipType = "LINK"

// Store is the slice of the graph store client the engine needs.
type Store interface {
	RunExpansion(ctx context.Context, seedLabel, relationshipFilter string, minHops, maxHops int) ([]graph.Path, error)
}

// Observer receives one call per completed store round-trip. Metrics hook in here.
type Observer interface {
	RoundTrip(strategy Strategy, d time.Duration, err error)
}

// Strategy names an expansion algorithm.
type Strategy string

const (
	StrategyBounded   Strategy = "bounded"
	StrategyRecursive Strategy = "recursive"
)

// MissingSeedError reports a 1-hop expansion that does not contain its own seed.
type MissingSeedError struct {
	Label    string
	Snapshot string
}

func (e *MissingSeedError) Error() string {
	return fmt.Sprintf("'%s' was not found in graph %s", e.Label, e.Snapshot)
}

func (e *MissingSeedError) Unwrap() error {
	return apperr.ErrMissingSeedNode
}

// Stats describes the work done by one expansion.
type Stats struct {
	Strategy   Strategy
	RoundTrips int
	Visited    int
}

// Engine runs expansions against a Store. An Engine holds no per-request state
// and is safe for concurrent use.
type Engine struct {
	store            Store
	relationshipType string
	parallelism      int
	observer         Observer
	logger           *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRelationshipType sets the relationship type filter handed to the store.
func WithRelationshipType(t string) Option {
	return func(e *Engine) {
		if t != "" {
			e.relationshipType = t
		}
	}
}

// WithParallelism bounds how many sibling labels a recursive expansion queries at once.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

// WithObserver registers a round-trip observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an Engine over store.
func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:            store,
		relationshipType: DefaultRelationshipType,
		parallelism:      1,
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// ExpandBounded issues exactly one traversal of up to maxHops hops from seed
// (Unbounded for no limit) and assembles every touched node and relationship.
func (e *Engine) ExpandBounded(ctx context.Context, seed string, maxHops int) (*graph.Graph, error) {
	g, err := e.oneTraversal(ctx, StrategyBounded, seed, maxHops)
	if err != nil {
		return nil, err
	}
	e.logger.Info("bounded expansion finished",
		slog.String("seed", seed),
		slog.Int("max_hops", maxHops),
		slog.Int("nodes", g.NodeCount()),
		slog.Int("links", g.LinkCount()))
	return g, nil
}

// ExpandRecursive discovers the whole component reachable from seed by expanding
// one hop at a time. Each distinct label is sent to the store at most once, so
// cycles and re-convergent paths terminate.
func (e *Engine) ExpandRecursive(ctx context.Context, seed string) (*graph.Graph, error) {
	g, _, err := e.ExpandRecursiveWithStats(ctx, seed)
	return g, err
}

// ExpandRecursiveWithStats is ExpandRecursive that also reports the work done.
func (e *Engine) ExpandRecursiveWithStats(ctx context.Context, seed string) (*graph.Graph, Stats, error) {
	stats := Stats{Strategy: StrategyRecursive}

	// visited is only touched by this goroutine; workers receive labels already claimed.
	visited := map[string]struct{}{}
	acc := graph.EmptyGraph()
	frontier := []string{seed}

	for len(frontier) > 0 {
		var claimed []string
		for _, label := range frontier {
			if _, seen := visited[label]; seen {
				continue
			}
			visited[label] = struct{}{}
			claimed = append(claimed, label)
		}
		if len(claimed) == 0 {
			break
		}

		locals, neighbors, issued, err := e.expandLevel(ctx, claimed)
		stats.RoundTrips += issued
		if err != nil {
			return nil, stats, err
		}

		frontier = frontier[:0]
		for i := range claimed {
			acc = acc.Merge(locals[i])
			frontier = append(frontier, neighbors[i]...)
		}
	}

	stats.Visited = len(visited)
	e.logger.Info("recursive expansion finished",
		slog.String("seed", seed),
		slog.Int("round_trips", stats.RoundTrips),
		slog.Int("nodes", acc.NodeCount()),
		slog.Int("links", acc.LinkCount()))
	return acc, stats, nil
}

// expandLevel runs the 1-hop step for every claimed label, up to parallelism at a time.
// issued counts the round trips actually sent; labels queued behind a failure are skipped.
func (e *Engine) expandLevel(ctx context.Context, labels []string) (locals []*graph.Graph, neighbors [][]string, issued int, err error) {
	locals = make([]*graph.Graph, len(labels))
	neighbors = make([][]string, len(labels))
	var trips atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for i, label := range labels {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			trips.Add(1)
			local, next, err := e.expandOne(gctx, label)
			if err != nil {
				return err
			}
			locals[i] = local
			neighbors[i] = next
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, int(trips.Load()), err
	}
	return locals, neighbors, int(trips.Load()), nil
}

// expandOne fetches the 1-hop graph of label and lists the labels of its neighbors.
// A label unknown to the store yields an empty graph, which is not an error.
func (e *Engine) expandOne(ctx context.Context, label string) (*graph.Graph, []string, error) {
	local, err := e.oneTraversal(ctx, StrategyRecursive, label, 1)
	if err != nil {
		return nil, nil, err
	}
	if local.IsEmpty() {
		return local, nil, nil
	}

	seed, ok := local.NodeByLabel(label)
	if !ok {
		err := &MissingSeedError{Label: label, Snapshot: local.String()}
		e.logger.Error("seed missing from its own expansion", slog.String("label", label), slog.String("error", err.Error()))
		return nil, nil, err
	}

	var next []string
	for _, n := range local.UndirectedNeighborsOf(seed) {
		next = append(next, n.Label())
	}
	return local, next, nil
}

func (e *Engine) oneTraversal(ctx context.Context, strategy Strategy, seed string, maxHops int) (*graph.Graph, error) {
	start := time.Now()
	paths, err := e.store.RunExpansion(ctx, seed, e.relationshipType, 1, maxHops)
	if e.observer != nil {
		e.observer.RoundTrip(strategy, time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}

	g, err := graph.FromPaths(paths)
	if err != nil {
		e.logger.Error("store record violates data contract", slog.String("seed", seed), slog.String("error", err.Error()))
		return nil, fmt.Errorf("ingest expansion of '%s': %w", seed, err)
	}
	return g, nil
}

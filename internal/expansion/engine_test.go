package expansion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"wilhelm/internal/apperr"
	"wilhelm/internal/database/store"
	"wilhelm/internal/graph"
)

type edge struct {
	label    string
	from, to string
}

// MockStore answers RunExpansion from an in-memory graph, following edges in both
// directions the way an undirected relationship filter does.
type MockStore struct {
	nodes  map[string]neo4j.Node // by label
	edges  []edge
	Err    error
	FailOn map[string]bool

	issued int

	mu    sync.Mutex
	calls map[string]int
	hops  []int
}

func newMockStore(edges ...edge) *MockStore {
	m := &MockStore{nodes: map[string]neo4j.Node{}, calls: map[string]int{}}
	for _, e := range edges {
		m.addNode(e.from)
		m.addNode(e.to)
	}
	m.edges = edges
	return m
}

func (m *MockStore) addNode(label string) {
	if _, ok := m.nodes[label]; ok {
		return
	}
	m.nodes[label] = neo4j.Node{ElementId: "id-" + label, Props: map[string]any{"label": label}}
}

func (m *MockStore) rel(i int) neo4j.Relationship {
	e := m.edges[i]
	return neo4j.Relationship{
		ElementId:      fmt.Sprintf("r%d", i),
		StartElementId: "id-" + e.from,
		EndElementId:   "id-" + e.to,
		Type:           DefaultRelationshipType,
		Props:          map[string]any{"label": e.label},
	}
}

func (m *MockStore) RunExpansion(ctx context.Context, seed, filter string, minHops, maxHops int) ([]graph.Path, error) {
	m.mu.Lock()
	m.calls[seed]++
	m.hops = append(m.hops, maxHops)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.issued++
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if m.FailOn[seed] {
		return nil, fmt.Errorf("%w: lost connection expanding %s", apperr.ErrConnection, seed)
	}
	if _, ok := m.nodes[seed]; !ok {
		return nil, nil
	}

	var paths []graph.Path
	seen := map[int]bool{}
	reached := map[string]bool{seed: true}
	frontier := []string{seed}
	for depth := 0; len(frontier) > 0 && (maxHops < 0 || depth < maxHops); depth++ {
		var next []string
		for _, label := range frontier {
			for i, e := range m.edges {
				if seen[i] || (e.from != label && e.to != label) {
					continue
				}
				seen[i] = true
				other := e.to
				if other == label {
					other = e.from
				}
				paths = append(paths, store.PathFrom(neo4j.Path{
					Nodes:         []neo4j.Node{m.nodes[label], m.nodes[other]},
					Relationships: []neo4j.Relationship{m.rel(i)},
				}))
				if !reached[other] {
					reached[other] = true
					next = append(next, other)
				}
			}
		}
		frontier = next
	}
	return paths, nil
}

type countingObserver struct {
	mu     sync.Mutex
	trips  int
	failed int
}

func (o *countingObserver) RoundTrip(_ Strategy, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.trips++
	if err != nil {
		o.failed++
	}
}

func TestExpandRecursiveThreeCycle(t *testing.T) {
	s := newMockStore(
		edge{"related", "A", "B"},
		edge{"related", "B", "C"},
		edge{"related", "C", "A"},
	)
	e := NewEngine(s)

	g, stats, err := e.ExpandRecursiveWithStats(context.Background(), "A")
	if err != nil {
		t.Fatalf("ExpandRecursive: %v", err)
	}
	if g.NodeCount() != 3 {
		t.Errorf("nodes = %d, want 3", g.NodeCount())
	}
	if g.LinkCount() != 3 {
		t.Errorf("links = %d, want 3", g.LinkCount())
	}
	for _, label := range []string{"A", "B", "C"} {
		if s.calls[label] != 1 {
			t.Errorf("%s expanded %d times, want 1", label, s.calls[label])
		}
	}
	if stats.RoundTrips != 3 || stats.Visited != 3 {
		t.Errorf("stats = %+v", stats)
	}
	for _, h := range s.hops {
		if h != 1 {
			t.Errorf("recursive expansion must use 1-hop traversals, got %d", h)
		}
	}
}

func TestExpandRecursiveTwoCycleKeepsBothDirections(t *testing.T) {
	s := newMockStore(
		edge{"related", "mensa", "tabula"},
		edge{"related", "tabula", "mensa"},
	)

	g, err := NewEngine(s).ExpandRecursive(context.Background(), "mensa")
	if err != nil {
		t.Fatalf("ExpandRecursive: %v", err)
	}
	if g.NodeCount() != 2 {
		t.Errorf("nodes = %d, want 2", g.NodeCount())
	}
	if g.LinkCount() != 2 {
		t.Errorf("links = %d, want 2 distinct directed links", g.LinkCount())
	}
	if s.calls["mensa"] != 1 || s.calls["tabula"] != 1 {
		t.Errorf("calls = %v", s.calls)
	}
}

func TestExpandRecursiveReconvergentPaths(t *testing.T) {
	// Diamond plus a tail: A-B, A-C, B-D, C-D, D-E.
	s := newMockStore(
		edge{"r", "A", "B"},
		edge{"r", "A", "C"},
		edge{"r", "B", "D"},
		edge{"r", "C", "D"},
		edge{"r", "D", "E"},
	)

	g, err := NewEngine(s).ExpandRecursive(context.Background(), "B")
	if err != nil {
		t.Fatalf("ExpandRecursive: %v", err)
	}
	if g.NodeCount() != 5 || g.LinkCount() != 5 {
		t.Errorf("got %d nodes / %d links, want 5 / 5", g.NodeCount(), g.LinkCount())
	}
	for label, n := range s.calls {
		if n != 1 {
			t.Errorf("%s expanded %d times", label, n)
		}
	}
}

func TestExpandRecursiveParallelMatchesSequential(t *testing.T) {
	var edges []edge
	for i := 0; i < 20; i++ {
		edges = append(edges, edge{"r", fmt.Sprintf("n%d", i), fmt.Sprintf("n%d", (i+1)%20)})
		edges = append(edges, edge{"r", fmt.Sprintf("n%d", i), fmt.Sprintf("leaf%d", i)})
	}

	seq, err := NewEngine(newMockStore(edges...)).ExpandRecursive(context.Background(), "n0")
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	ps := newMockStore(edges...)
	par, err := NewEngine(ps, WithParallelism(8)).ExpandRecursive(context.Background(), "n0")
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}

	if !seq.Equal(par) {
		t.Error("parallel expansion differs from sequential expansion")
	}
	if par.NodeCount() != 40 || par.LinkCount() != 40 {
		t.Errorf("got %d nodes / %d links, want 40 / 40", par.NodeCount(), par.LinkCount())
	}
	for label, n := range ps.calls {
		if n != 1 {
			t.Errorf("%s expanded %d times", label, n)
		}
	}
}

func TestExpandRecursiveUnknownSeedIsEmpty(t *testing.T) {
	s := newMockStore(edge{"r", "A", "B"})
	g, err := NewEngine(s).ExpandRecursive(context.Background(), "nowhere")
	if err != nil {
		t.Fatalf("unknown seed should not fail: %v", err)
	}
	if !g.IsEmpty() {
		t.Errorf("expected empty graph, got %v", g)
	}
}

// seedlessStore returns a 1-hop graph that never contains the requested label.
type seedlessStore struct{}

func (seedlessStore) RunExpansion(_ context.Context, _, _ string, _, _ int) ([]graph.Path, error) {
	return []graph.Path{store.PathFrom(neo4j.Path{
		Nodes: []neo4j.Node{
			{ElementId: "1", Props: map[string]any{"label": "x"}},
			{ElementId: "2", Props: map[string]any{"label": "y"}},
		},
		Relationships: []neo4j.Relationship{
			{ElementId: "r", StartElementId: "1", EndElementId: "2", Props: map[string]any{"label": "related"}},
		},
	})}, nil
}

func TestExpandRecursiveMissingSeed(t *testing.T) {
	_, err := NewEngine(seedlessStore{}).ExpandRecursive(context.Background(), "mensa")
	if !errors.Is(err, apperr.ErrMissingSeedNode) {
		t.Fatalf("expected ErrMissingSeedNode, got %v", err)
	}
	var mse *MissingSeedError
	if !errors.As(err, &mse) || mse.Label != "mensa" {
		t.Errorf("expected MissingSeedError for mensa, got %v", err)
	}
}

// labellessStore returns a node without the label attribute.
type labellessStore struct{}

func (labellessStore) RunExpansion(_ context.Context, _, _ string, _, _ int) ([]graph.Path, error) {
	return []graph.Path{store.PathFrom(neo4j.Path{
		Nodes: []neo4j.Node{{ElementId: "1", Props: map[string]any{"name": "mensa"}}},
	})}, nil
}

func TestDataContractViolationAborts(t *testing.T) {
	e := NewEngine(labellessStore{})
	if _, err := e.ExpandBounded(context.Background(), "mensa", 3); !errors.Is(err, apperr.ErrDataContractViolation) {
		t.Errorf("bounded: expected data contract violation, got %v", err)
	}
	if _, err := e.ExpandRecursive(context.Background(), "mensa"); !errors.Is(err, apperr.ErrDataContractViolation) {
		t.Errorf("recursive: expected data contract violation, got %v", err)
	}
}

func TestConnectionErrorAborts(t *testing.T) {
	s := newMockStore(edge{"r", "A", "B"})
	s.Err = fmt.Errorf("%w: dial tcp: refused", apperr.ErrConnection)
	obs := &countingObserver{}
	e := NewEngine(s, WithObserver(obs))

	if _, err := e.ExpandRecursive(context.Background(), "A"); !errors.Is(err, apperr.ErrConnection) {
		t.Errorf("expected connection error, got %v", err)
	}
	if obs.failed != 1 {
		t.Errorf("observer saw %d failures, want 1", obs.failed)
	}
}

func TestRoundTripsCountOnlyIssuedRequests(t *testing.T) {
	s := newMockStore(edge{"r", "A", "B"}, edge{"r", "A", "C"}, edge{"r", "A", "D"})
	s.FailOn = map[string]bool{"B": true, "C": true, "D": true}
	e := NewEngine(s, WithParallelism(1))

	_, stats, err := e.ExpandRecursiveWithStats(context.Background(), "A")
	if !errors.Is(err, apperr.ErrConnection) {
		t.Fatalf("expected connection error, got %v", err)
	}
	// A, then the first sibling fails and the remaining two are never sent.
	if stats.RoundTrips != 2 {
		t.Errorf("RoundTrips = %d, want 2", stats.RoundTrips)
	}
	if stats.RoundTrips != s.issued {
		t.Errorf("RoundTrips = %d, store served %d", stats.RoundTrips, s.issued)
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEngine(newMockStore(edge{"r", "A", "B"})).ExpandRecursive(ctx, "A")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestExpandBounded(t *testing.T) {
	s := newMockStore(
		edge{"r", "A", "B"},
		edge{"r", "B", "C"},
		edge{"r", "C", "D"},
	)
	obs := &countingObserver{}
	e := NewEngine(s, WithObserver(obs), WithRelationshipType("LINK"))

	g, err := e.ExpandBounded(context.Background(), "A", 2)
	if err != nil {
		t.Fatalf("ExpandBounded: %v", err)
	}
	if g.NodeCount() != 3 || g.LinkCount() != 2 {
		t.Errorf("2 hops: got %d nodes / %d links, want 3 / 2", g.NodeCount(), g.LinkCount())
	}

	g, err = e.ExpandBounded(context.Background(), "A", Unbounded)
	if err != nil {
		t.Fatalf("ExpandBounded: %v", err)
	}
	if g.NodeCount() != 4 || g.LinkCount() != 3 {
		t.Errorf("unbounded: got %d nodes / %d links, want 4 / 3", g.NodeCount(), g.LinkCount())
	}
	if obs.trips != 2 {
		t.Errorf("bounded expansion must use one round-trip each, observer saw %d", obs.trips)
	}
	if s.hops[0] != 2 || s.hops[1] != Unbounded {
		t.Errorf("hop bounds passed to store = %v", s.hops)
	}
}

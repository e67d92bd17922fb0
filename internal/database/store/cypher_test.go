package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"wilhelm/internal/apperr"
	"wilhelm/internal/graph"
)

func TestRowsNormalizesColumns(t *testing.T) {
	records := []*neo4j.Record{
		{Keys: []string{"count"}, Values: []any{int64(12)}},
		{
			Keys: []string{"node"},
			Values: []any{neo4j.Node{
				ElementId: "4:abc:1",
				Labels:    []string{"Term"},
				Props:     map[string]any{"label": "mensa", "language": "Latin"},
			}},
		},
	}

	rows := Rows(records)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0]["count"] != int64(12) {
		t.Errorf("count = %#v", rows[0]["count"])
	}
	want := map[string]any{"label": "mensa", "language": "Latin"}
	if !reflect.DeepEqual(rows[1]["node"], want) {
		t.Errorf("node = %#v, want %#v", rows[1]["node"], want)
	}
}

func TestWrapNonTerminals(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"float", 3.5, map[string]any{}},
		{"null", nil, map[string]any{}},
		{"date", dbtype.Date{}, map[string]any{}},
		{"path", neo4j.Path{}, map[string]any{}},
		{"relationship", neo4j.Relationship{Props: map[string]any{"label": "related"}}, map[string]any{"label": "related"}},
		{"list", []any{int64(1), int64(2)}, map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := Rows([]*neo4j.Record{{Keys: []string{"v"}, Values: []any{tt.in}}})
			if !reflect.DeepEqual(rows[0]["v"], tt.want) {
				t.Errorf("got %#v, want %#v", rows[0]["v"], tt.want)
			}
		})
	}
}

func TestPathFromKeepsRawProperties(t *testing.T) {
	mensa := neo4j.Node{ElementId: "n1", Props: map[string]any{"label": 1.5, "weight": 0.75, "forms": []any{"mensa", "mensae"}}}
	g, err := graph.FromPaths([]graph.Path{PathFrom(neo4j.Path{Nodes: []neo4j.Node{mensa}})})
	if err != nil {
		t.Fatalf("FromPaths: %v", err)
	}
	n, ok := g.Node("n1")
	if !ok {
		t.Fatal("node n1 missing")
	}
	if n.Label() != "1.5" {
		t.Errorf("label = %q, want 1.5", n.Label())
	}
	want := map[string]any{"weight": 0.75, "forms": []any{"mensa", "mensae"}}
	if !reflect.DeepEqual(n.Attributes(), want) {
		t.Errorf("attributes = %#v, want %#v", n.Attributes(), want)
	}
}

func TestPathFromFeedsGraphModel(t *testing.T) {
	mensa := neo4j.Node{ElementId: "n1", Props: map[string]any{"label": "mensa", "language": "Latin"}}
	table := neo4j.Node{ElementId: "n2", Props: map[string]any{"label": "table"}}
	rel := neo4j.Relationship{
		ElementId:      "r1",
		StartElementId: "n1",
		EndElementId:   "n2",
		Type:           "LINK",
		Props:          map[string]any{"label": "definition"},
	}

	g, err := graph.FromPaths([]graph.Path{PathFrom(neo4j.Path{
		Nodes:         []neo4j.Node{mensa, table},
		Relationships: []neo4j.Relationship{rel},
	})})
	if err != nil {
		t.Fatalf("FromPaths: %v", err)
	}

	n, ok := g.Node("n1")
	if !ok || n.Label() != "mensa" || n.Attributes()["language"] != "Latin" {
		t.Errorf("unexpected node %v", n.View())
	}
	links := g.Links()
	if len(links) != 1 || links[0].SourceNodeID() != "n1" || links[0].TargetNodeID() != "n2" {
		t.Errorf("unexpected links %v", links)
	}
}

func TestClassify(t *testing.T) {
	unauthorized := &neo4j.Neo4jError{Code: "Neo.ClientError.Security.Unauthorized", Msg: "bad credentials"}
	syntax := &neo4j.Neo4jError{Code: "Neo.ClientError.Statement.SyntaxError", Msg: "oops"}

	tests := []struct {
		name     string
		err      error
		wantConn bool
	}{
		{"auth failure", unauthorized, true},
		{"wrapped auth failure", fmt.Errorf("run: %w", unauthorized), true},
		{"deadline", context.DeadlineExceeded, true},
		{"syntax error", syntax, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if errors.Is(got, apperr.ErrConnection) != tt.wantConn {
				t.Errorf("classify(%v) connection = %v, want %v", tt.err, !tt.wantConn, tt.wantConn)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("classify must keep the cause in the chain")
			}
		})
	}

	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
}

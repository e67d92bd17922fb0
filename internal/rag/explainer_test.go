package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"wilhelm/internal/graph"
)

type mockExpander struct {
	graph *graph.Graph
	err   error
}

func (m *mockExpander) Expand(ctx context.Context, word string) (*graph.Graph, error) {
	return m.graph, m.err
}

type mockGenerator struct {
	prompt string
	text   string
	err    error
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompt = prompt
	return m.text, m.err
}

func mensaGraph() *graph.Graph {
	return graph.NewGraph(
		[]graph.Node{
			graph.NewNode("1", "mensa", map[string]any{"language": "Latin"}),
			graph.NewNode("2", "table", map[string]any{"language": "English"}),
		},
		[]graph.Link{graph.NewLink("LINK", "1", "2", nil)},
	)
}

func TestExplain(t *testing.T) {
	gen := &mockGenerator{text: "```markdown\n*mensa* means table.\n```"}
	e := NewExplainer(&mockExpander{graph: mensaGraph()}, gen)

	out, err := e.Explain(context.Background(), "mensa", "")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if out.Narrative != "*mensa* means table." {
		t.Errorf("narrative = %q", out.Narrative)
	}
	if len(out.Graph.Nodes) != 2 {
		t.Errorf("graph nodes = %d", len(out.Graph.Nodes))
	}
	if !strings.Contains(gen.prompt, `"label": "table"`) || !strings.Contains(gen.prompt, "What does 'mensa' mean") {
		t.Errorf("prompt missing graph or default question:\n%s", gen.prompt)
	}
}

func TestExplainUnknownWordSkipsModel(t *testing.T) {
	gen := &mockGenerator{}
	e := NewExplainer(&mockExpander{graph: graph.EmptyGraph()}, gen)

	out, err := e.Explain(context.Background(), "xyz", "")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if gen.prompt != "" {
		t.Error("model should not be called for an unknown word")
	}
	if !strings.Contains(out.Narrative, "not in the vocabulary") {
		t.Errorf("narrative = %q", out.Narrative)
	}
}

func TestExplainErrors(t *testing.T) {
	expandErr := errors.New("store down")
	if _, err := NewExplainer(&mockExpander{err: expandErr}, &mockGenerator{}).Explain(context.Background(), "mensa", ""); !errors.Is(err, expandErr) {
		t.Errorf("expected expand error, got %v", err)
	}

	genErr := errors.New("quota")
	if _, err := NewExplainer(&mockExpander{graph: mensaGraph()}, &mockGenerator{err: genErr}).Explain(context.Background(), "mensa", "q"); !errors.Is(err, genErr) {
		t.Errorf("expected generator error, got %v", err)
	}
}

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain answer", "plain answer"},
		{"  padded  ", "padded"},
		{"```\nfenced\n```", "fenced"},
		{"```markdown\nfenced md\n```", "fenced md"},
		{"inline ``` stays", "inline ``` stays"},
	}
	for _, tt := range tests {
		if got := cleanResponse(tt.in); got != tt.want {
			t.Errorf("cleanResponse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

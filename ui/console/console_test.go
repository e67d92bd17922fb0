package console

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"wilhelm/internal/graph"
)

func TestPrintGraph(t *testing.T) {
	g := graph.NewGraph(
		[]graph.Node{
			graph.NewNode("1", "mensa", map[string]any{"language": "Latin"}),
			graph.NewNode("2", "table", map[string]any{"language": "English"}),
		},
		[]graph.Link{graph.NewLink("LINK", "1", "2", nil)},
	)

	var buf bytes.Buffer
	PrintGraph(&buf, Summary{Word: "mensa", Strategy: "recursive", Elapsed: 12 * time.Millisecond}, g)
	out := buf.String()

	for _, want := range []string{"RECURSIVE EXPANSION OF 'mensa'", "language=Latin", "mensa -LINK-> table", "2 nodes | 1 links"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintGraphEmpty(t *testing.T) {
	var buf bytes.Buffer
	PrintGraph(&buf, Summary{Word: "xyz", Strategy: "bounded"}, graph.EmptyGraph())
	if !strings.Contains(buf.String(), "'xyz' is not in the graph") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestPrintRows(t *testing.T) {
	var buf bytes.Buffer
	PrintRows(&buf, "search", []map[string]any{{"term": "mensa", "definition": "table"}})
	if !strings.Contains(buf.String(), "definition=table term=mensa") {
		t.Errorf("unexpected output %q", buf.String())
	}

	buf.Reset()
	PrintRows(&buf, "search", nil)
	if !strings.Contains(buf.String(), "no rows") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"mensa", "mensa"},
		{strings.Repeat("a", 25), strings.Repeat("a", 17) + "..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in); got != tt.want {
			t.Errorf("truncate(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, errors.New("graph store unavailable"))
	if !strings.Contains(buf.String(), "graph store unavailable") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

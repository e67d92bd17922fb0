// Package console prints expansion results for the non-interactive CLI.
package console

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"wilhelm/internal/graph"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

const labelWidth = 22

// Summary describes how a graph was produced.
type Summary struct {
	Word     string
	Strategy string
	Elapsed  time.Duration
}

// PrintGraph renders g compactly: nodes, then links, then a one-line summary.
func PrintGraph(w io.Writer, s Summary, g *graph.Graph) {
	fmt.Fprintf(w, "%s■ %s%s\n", colorCyan, strings.ToUpper(s.Strategy)+" EXPANSION OF '"+s.Word+"'", colorReset)

	if g.IsEmpty() {
		fmt.Fprintf(w, "  %s'%s' is not in the graph%s\n\n", colorYellow, s.Word, colorReset)
		return
	}

	fmt.Fprintf(w, "%s─ Nodes%s\n", colorCyan, colorReset)
	for _, n := range g.Nodes() {
		marker := ""
		if n.Label() == s.Word {
			marker = fmt.Sprintf(" %s★%s", colorGreen, colorReset)
		}
		fmt.Fprintf(w, "  %s%s %s%s\n", truncate(n.Label()), leader(n.Label()), attrs(n.Attributes()), marker)
	}

	fmt.Fprintf(w, "%s─ Links%s\n", colorCyan, colorReset)
	for _, l := range g.Links() {
		fmt.Fprintf(w, "  %s -%s-> %s\n", nodeLabel(g, l.SourceNodeID()), l.Label(), nodeLabel(g, l.TargetNodeID()))
	}

	fmt.Fprintf(w, "%s─ Summary%s: %d nodes | %d links | %s\n\n",
		colorCyan, colorReset, g.NodeCount(), g.LinkCount(), s.Elapsed.Round(time.Millisecond))
}

// PrintRows renders query rows one per line.
func PrintRows(w io.Writer, title string, rows []map[string]any) {
	fmt.Fprintf(w, "%s■ %s%s\n", colorCyan, strings.ToUpper(title), colorReset)
	if len(rows) == 0 {
		fmt.Fprintf(w, "  %sno rows%s\n\n", colorYellow, colorReset)
		return
	}
	for i, row := range rows {
		fmt.Fprintf(w, "  %3d. %s\n", i+1, attrs(row))
	}
	fmt.Fprintln(w)
}

// PrintError renders a failed command.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s✗ %v%s\n", colorRed, err, colorReset)
}

func nodeLabel(g *graph.Graph, id string) string {
	if n, ok := g.Node(id); ok {
		return n.Label()
	}
	return id
}

func truncate(label string) string {
	if len(label) > labelWidth-2 {
		return label[:labelWidth-5] + "..."
	}
	return label
}

func leader(label string) string {
	n := labelWidth - len(truncate(label))
	if n < 1 {
		n = 1
	}
	return colorCyan + strings.Repeat("·", n) + colorReset
}

func attrs(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		if k == graph.LabelAttribute {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, m[k]))
	}
	return strings.Join(parts, " ")
}

package views

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"wilhelm/internal/graph"
	"wilhelm/ui/tui/state"
	"wilhelm/ui/tui/styles"
)

type ResultView struct{}

func (v ResultView) Render(s state.AppState, props ViewProps) string {
	title := fmt.Sprintf("%s: %s", s.Action.Title(), s.Word)
	header := styles.HeaderStyle.Width(props.Width).Render(title)

	var body string
	switch {
	case s.Loading:
		body = styles.CardStyle.Render(props.SpinnerView + " expanding...")
	case s.Err != nil:
		body = styles.CardStyle.Render(styles.ErrorStyle.Render("Error: ") + s.Err.Error())
	default:
		body = props.ContentView
	}

	help := styles.HelpStyle.Render("[↑/↓] Scroll • [Esc] Back • [Q] Quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, body, help)
}

// GraphContent renders a graph for the result viewport.
func GraphContent(g *graph.Graph) string {
	if g.IsEmpty() {
		return styles.CopyStyle.Render("No such word in the graph.")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", styles.NodeStyle.Render(fmt.Sprintf("Nodes (%d)", g.NodeCount())))
	for _, n := range g.Nodes() {
		fmt.Fprintf(&b, "  %-24s %s\n", n.Label(), attrString(n.Attributes()))
	}
	fmt.Fprintf(&b, "\n%s\n", styles.LinkStyle.Render(fmt.Sprintf("Links (%d)", g.LinkCount())))
	for _, l := range g.Links() {
		src, _ := g.Node(l.SourceNodeID())
		tgt, _ := g.Node(l.TargetNodeID())
		fmt.Fprintf(&b, "  %s -%s-> %s\n", labelOr(src, l.SourceNodeID()), l.Label(), labelOr(tgt, l.TargetNodeID()))
	}
	return b.String()
}

// RowsContent renders query rows for the result viewport.
func RowsContent(rows []map[string]any) string {
	if len(rows) == 0 {
		return styles.CopyStyle.Render("No matches.")
	}
	var b strings.Builder
	for i, row := range rows {
		fmt.Fprintf(&b, "%3d. %s\n", i+1, attrString(row))
	}
	return b.String()
}

func labelOr(n graph.Node, id string) string {
	if n.ID() == "" {
		return id
	}
	return n.Label()
}

func attrString(attrs map[string]any) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, attrs[k]))
	}
	return strings.Join(parts, " ")
}

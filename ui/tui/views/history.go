package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"wilhelm/ui/tui/state"
	"wilhelm/ui/tui/styles"
)

type HistoryView struct{}

func (v HistoryView) Render(s state.AppState, props ViewProps) string {
	header := styles.HeaderStyle.Width(props.Width).Render("Expansion history")

	if s.Loading {
		return lipgloss.JoinVertical(lipgloss.Left, header, styles.CardStyle.Render(props.SpinnerView+" loading..."))
	}
	if s.Err != nil {
		return lipgloss.JoinVertical(lipgloss.Left, header, styles.CardStyle.Render(styles.ErrorStyle.Render("Error: ")+s.Err.Error()))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %-10s %5s %6s %6s %8s\n", "seed", "strategy", "hops", "nodes", "trips", "ms")
	for _, r := range s.Runs {
		status := ""
		switch {
		case r.Error != "":
			status = styles.ErrorStyle.Render(" !")
		case r.Flags != "":
			status = styles.CopyStyle.Render(" " + r.Flags)
		}
		fmt.Fprintf(&b, "%-20s %-10s %5d %6d %6d %8d%s\n", r.Seed, r.Strategy, r.MaxHops, r.NodeCount, r.RoundTrips, r.DurationMS, status)
	}

	chart := styles.CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.CopyStyle.Render("Duration per run (ms), oldest to newest"),
		props.ChartView,
	))
	help := styles.HelpStyle.Render("[Esc] Back • [Q] Quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, chart, b.String(), help)
}

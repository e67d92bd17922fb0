package views

import (
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"wilhelm/ui/tui/state"
	"wilhelm/ui/tui/styles"
)

// MenuZoneID is the bubblezone id of the i-th menu entry.
func MenuZoneID(i int) string {
	return fmt.Sprintf("menu_%d", i)
}

type MenuView struct{}

func (v MenuView) Render(s state.AppState, props ViewProps) string {
	header := styles.HeaderStyle.Width(props.Width).Render("WILHELM // VOCABULARY GRAPH EXPLORER")

	var items []string
	listStartY := 6
	for i, action := range state.Actions {
		// The spring-driven cursor pops the entry out gradually.
		dist := math.Abs(float64(i) - props.AnimCursor)
		strength := 0.0
		if dist < 1.0 {
			strength = 1.0 - dist
		}

		borderColor := lipgloss.Color(styles.BaseColor)
		itemCenterY := listStartY + (i * 3) + 1
		if math.Abs(float64(props.MouseY-itemCenterY)) < 2 {
			borderColor = lipgloss.Color("#aaa")
		}
		if strength > 0.1 || i == props.MenuCursor {
			borderColor = styles.BrandColor
		}

		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1).
			MarginLeft(2 + int(strength*2)).
			Width(44)
		if i == props.MenuCursor {
			box = box.Bold(true).Foreground(lipgloss.Color("#FFF"))
		} else {
			box = box.Foreground(lipgloss.Color("#AAA"))
		}

		items = append(items, zone.Mark(MenuZoneID(i), box.Render(fmt.Sprintf("%02d. %s", i+1, action.Title()))))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).PaddingLeft(2).Foreground(styles.BrandColor).Render("EXPANSION STRATEGIES"),
		styles.CopyStyle.Render("Pick how to walk the graph around a word."),
		lipgloss.JoinVertical(lipgloss.Left, items...),
	)

	help := styles.HelpStyle.Render("\n[↑/↓] Navigate • [Enter] Select • [Click] Select • [Q] Quit")
	return zone.Scan(lipgloss.JoinVertical(lipgloss.Left, header, lipgloss.NewStyle().Padding(1, 0).Render(content), help))
}

package views

import (
	"github.com/charmbracelet/lipgloss"

	"wilhelm/ui/tui/state"
	"wilhelm/ui/tui/styles"
)

type InputView struct{}

func (v InputView) Render(s state.AppState, props ViewProps) string {
	header := styles.HeaderStyle.Width(props.Width).Render(s.Action.Title())
	card := styles.CardStyle.Render(props.InputView)
	help := styles.HelpStyle.Render("[Enter] Run • [Esc] Back")
	return lipgloss.JoinVertical(lipgloss.Left, header, card, help)
}

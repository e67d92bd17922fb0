package views

import (
	"wilhelm/ui/tui/state"
)

// ViewProps contains UI-specific properties provided by the Controller.
type ViewProps struct {
	Width, Height  int
	MouseX, MouseY int

	MenuCursor  int
	AnimCursor  float64
	SpinnerView string
	InputView   string
	ContentView string
	ChartView   string
}

// View defines the contract for any renderable page in the TUI.
type View interface {
	Render(s state.AppState, props ViewProps) string
}

package views

import (
	"wilhelm/ui/tui/state"
)

func RenderMenu(width, height, cursor int, animCursor float64, mouseX, mouseY int) string {
	return MenuView{}.Render(state.AppState{}, ViewProps{
		Width:      width,
		Height:     height,
		MenuCursor: cursor,
		AnimCursor: animCursor,
		MouseX:     mouseX,
		MouseY:     mouseY,
	})
}

func RenderInput(s state.AppState, width int, inputView string) string {
	return InputView{}.Render(s, ViewProps{Width: width, InputView: inputView})
}

func RenderResult(s state.AppState, width int, spinnerView, contentView string) string {
	return ResultView{}.Render(s, ViewProps{
		Width:       width,
		SpinnerView: spinnerView,
		ContentView: contentView,
	})
}

func RenderHistory(s state.AppState, width int, spinnerView, chartView string) string {
	return HistoryView{}.Render(s, ViewProps{
		Width:       width,
		SpinnerView: spinnerView,
		ChartView:   chartView,
	})
}

// Package tui is the interactive vocabulary graph explorer.
package tui

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"wilhelm/internal/database/relational"
	"wilhelm/internal/expansion"
	"wilhelm/internal/graph"
	"wilhelm/ui/tui/state"
	"wilhelm/ui/tui/views"
)

const historyLimit = 30

// Explorer is the service surface the explorer drives.
type Explorer interface {
	Expand(ctx context.Context, word string) (*graph.Graph, error)
	ExpandApoc(ctx context.Context, word string, maxHops int) (*graph.Graph, error)
	ExpandRecursive(ctx context.Context, word string) (*graph.Graph, error)
	Search(ctx context.Context, keyword string) ([]map[string]any, error)
	History(ctx context.Context, seed string, limit int) ([]relational.Run, error)
}

// MainModel is the Bubble Tea Model acting as the Controller
type MainModel struct {
	svc        Explorer
	ctx        context.Context
	state      state.AppState
	spinner    spinner.Model
	input      textinput.Model
	viewport   viewport.Model
	chart      linechart.Model
	menuCursor int
	animCursor float64
	velocity   float64
	spring     harmonica.Spring
	mouseX     int
	mouseY     int
	quitting   bool
	width      int
	height     int
}

// Messages
type AnimateMsg time.Time

// ResultMsg carries the outcome of a background service call.
type ResultMsg struct {
	Graph   *graph.Graph
	Rows    []map[string]any
	Runs    []relational.Run
	Err     error
	Elapsed time.Duration
}

func InitialModel(ctx context.Context, svc Explorer) MainModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	in := textinput.New()
	in.CharLimit = 128
	in.Width = 40

	return MainModel{
		svc:      svc,
		ctx:      ctx,
		spinner:  s,
		input:    in,
		viewport: viewport.New(80, 20),
		chart:    linechart.New(40, 10, 0, 1, 0, 1),
		spring:   harmonica.NewSpring(harmonica.FPS(60), 12.0, 0.9),
		state:    state.AppState{CurrentPage: state.PageMenu},
	}
}

func (m *MainModel) Init() tea.Cmd {
	zone.NewGlobal()
	return tea.Batch(m.spinner.Tick, animateCmd())
}

func animateCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*16, func(t time.Time) tea.Msg {
		return AnimateMsg(t)
	})
}

// actionCmd runs action for word off the UI goroutine.
func actionCmd(ctx context.Context, svc Explorer, action state.Action, word string) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		var msg ResultMsg
		switch action {
		case state.ActionBounded:
			msg.Graph, msg.Err = svc.Expand(ctx, word)
		case state.ActionUnbounded:
			msg.Graph, msg.Err = svc.ExpandApoc(ctx, word, expansion.Unbounded)
		case state.ActionRecursive:
			msg.Graph, msg.Err = svc.ExpandRecursive(ctx, word)
		case state.ActionSearch:
			msg.Rows, msg.Err = svc.Search(ctx, word)
		case state.ActionHistory:
			msg.Runs, msg.Err = svc.History(ctx, "", historyLimit)
		}
		msg.Elapsed = time.Since(start)
		return msg
	}
}

func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case AnimateMsg:
		return m.handleAnimateMsg(msg)

	case tea.WindowSizeMsg:
		return m.handleWindowSizeMsg(msg)

	case ResultMsg:
		return m.handleResultMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)
	}

	return m, nil
}

func (m *MainModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state.CurrentPage {
	case state.PageMenu:
		switch msg.String() {
		case "q":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.menuCursor > 0 {
				m.menuCursor--
			}
		case "down", "j":
			if m.menuCursor < len(state.Actions)-1 {
				m.menuCursor++
			}
		case "enter":
			return m, m.selectAction(m.menuCursor)
		}
		return m, nil

	case state.PageInput:
		switch msg.String() {
		case "esc":
			m.backToMenu()
			return m, nil
		case "enter":
			word := strings.TrimSpace(m.input.Value())
			if word == "" {
				return m, nil
			}
			m.state.Word = word
			m.state.CurrentPage = state.PageResult
			m.state.Loading = true
			m.input.Blur()
			return m, tea.Batch(m.spinner.Tick, actionCmd(m.ctx, m.svc, m.state.Action, word))
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "b", "esc", "backspace":
		m.backToMenu()
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *MainModel) selectAction(cursor int) tea.Cmd {
	action := state.Actions[cursor]
	m.state = state.AppState{Action: action}
	if action == state.ActionHistory {
		m.state.CurrentPage = state.PageHistory
		m.state.Loading = true
		return tea.Batch(m.spinner.Tick, actionCmd(m.ctx, m.svc, action, ""))
	}
	m.state.CurrentPage = state.PageInput
	m.input.Reset()
	m.input.Placeholder = action.Prompt()
	return m.input.Focus()
}

func (m *MainModel) backToMenu() {
	m.state = state.AppState{CurrentPage: state.PageMenu}
	m.input.Blur()
	m.viewport.GotoTop()
}

func (m *MainModel) handleAnimateMsg(msg AnimateMsg) (tea.Model, tea.Cmd) {
	m.animCursor, m.velocity = m.spring.Update(m.animCursor, m.velocity, float64(m.menuCursor))
	return m, animateCmd()
}

func (m *MainModel) handleWindowSizeMsg(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.viewport.Width = msg.Width
	if h := msg.Height - 10; h > 3 {
		m.viewport.Height = h
	}
	if w := msg.Width - 12; w > 10 {
		m.chart.Resize(w, 10)
	}
	return m, nil
}

func (m *MainModel) handleResultMsg(msg ResultMsg) (tea.Model, tea.Cmd) {
	m.state.Loading = false
	m.state.Err = msg.Err
	m.state.Elapsed = msg.Elapsed
	if msg.Err != nil {
		return m, nil
	}

	switch m.state.Action {
	case state.ActionHistory:
		m.state.Runs = msg.Runs
		m.drawHistoryChart()
	case state.ActionSearch:
		m.state.Rows = msg.Rows
		m.viewport.SetContent(views.RowsContent(msg.Rows))
	default:
		m.state.Graph = msg.Graph
		m.viewport.SetContent(views.GraphContent(msg.Graph))
	}
	m.viewport.GotoTop()
	return m, nil
}

// drawHistoryChart plots run durations oldest to newest.
func (m *MainModel) drawHistoryChart() {
	runs := slices.Clone(m.state.Runs)
	slices.Reverse(runs)

	maxMS := 1.0
	for _, r := range runs {
		maxMS = max(maxMS, float64(r.DurationMS))
	}
	w := max(m.width-12, 40)
	m.chart = linechart.New(w, 10, 0, float64(max(len(runs)-1, 1)), 0, maxMS*1.1)
	for i := 0; i < len(runs)-1; i++ {
		m.chart.DrawBrailleLine(
			canvas.Float64Point{X: float64(i), Y: float64(runs[i].DurationMS)},
			canvas.Float64Point{X: float64(i + 1), Y: float64(runs[i+1].DurationMS)},
		)
	}
	m.chart.DrawXYAxisAndLabel()
}

func (m *MainModel) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	m.mouseX = msg.X
	m.mouseY = msg.Y

	if msg.Action == tea.MouseActionRelease && m.state.CurrentPage == state.PageMenu {
		for i := range state.Actions {
			if zone.Get(views.MenuZoneID(i)).InBounds(msg) {
				m.menuCursor = i
				return m, m.selectAction(i)
			}
		}
	}
	return m, nil
}

func (m *MainModel) View() string {
	if m.quitting {
		return "Bye!\n"
	}

	switch m.state.CurrentPage {
	case state.PageMenu:
		return views.RenderMenu(m.width, m.height, m.menuCursor, m.animCursor, m.mouseX, m.mouseY)
	case state.PageInput:
		return views.RenderInput(m.state, m.width, m.input.View())
	case state.PageHistory:
		return views.RenderHistory(m.state, m.width, m.spinner.View(), m.chart.View())
	default:
		return views.RenderResult(m.state, m.width, m.spinner.View(), m.viewport.View())
	}
}

// Start runs the explorer until the user quits.
func Start(ctx context.Context, svc Explorer) error {
	m := InitialModel(ctx, svc)
	p := tea.NewProgram(
		&m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}

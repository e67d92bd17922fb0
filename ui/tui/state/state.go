package state

import (
	"time"

	"wilhelm/internal/database/relational"
	"wilhelm/internal/graph"
)

type Page int

const (
	PageMenu Page = iota
	PageInput
	PageResult
	PageHistory
)

// Action is a menu entry of the explorer.
type Action int

const (
	ActionBounded   Action = iota // store-side, configured hop bound
	ActionUnbounded               // store-side, no hop bound
	ActionRecursive               // client-side connected component
	ActionSearch
	ActionHistory
)

// Actions lists the menu entries in display order.
var Actions = []Action{ActionBounded, ActionUnbounded, ActionRecursive, ActionSearch, ActionHistory}

func (a Action) Title() string {
	switch a {
	case ActionBounded:
		return "Expand word (bounded hops)"
	case ActionUnbounded:
		return "Expand word (unbounded, store-side)"
	case ActionRecursive:
		return "Expand word (recursive, full component)"
	case ActionSearch:
		return "Search terms by keyword"
	case ActionHistory:
		return "Expansion history"
	default:
		return "unknown"
	}
}

// Prompt is the input placeholder for actions that take a word.
func (a Action) Prompt() string {
	if a == ActionSearch {
		return "keyword"
	}
	return "word, e.g. mensa"
}

// AppState holds what the explorer currently shows.
type AppState struct {
	CurrentPage Page
	Action      Action
	Word        string
	Graph       *graph.Graph
	Rows        []map[string]any
	Runs        []relational.Run
	Loading     bool
	Elapsed     time.Duration
	Err         error
}

package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ViewContext provides read-only context to decks for rendering.
type ViewContext struct {
	Now         time.Time
	Highlighted func(id string) bool
	Loading     bool   // a tick is in flight
	LastError   string // last tick error; empty after a success
}

func (c ViewContext) isHighlighted(id string) bool {
	return c.Highlighted != nil && c.Highlighted(id)
}

// Action identifies what a deck wants the dashboard to do.
type Action int

const (
	ActionPushModal Action = iota
	ActionRun
)

// ActionMsg is returned by deck key handlers to communicate with the
// dashboard without mutating it directly.
type ActionMsg struct {
	Action  Action
	Payload any
}

func actionMsg(a ActionMsg) tea.Cmd {
	return func() tea.Msg { return a }
}

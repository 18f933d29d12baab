package tui

import (
	"context"
	"time"

	"github.com/fundsmith/tradewatch/internal/model"
	"github.com/fundsmith/tradewatch/internal/poll"
	"github.com/fundsmith/tradewatch/internal/snapshot"

	tea "github.com/charmbracelet/bubbletea"
)

// Deck is a polled dashboard deck. Each deck owns exactly one poll
// resource; its ID is the resource key.
type Deck interface {
	ID() string
	Title() string
	Category() string // highlight category; empty when the deck never flashes
	Noun() string     // plural noun used in arrival toasts
	Resource() *poll.Resource

	Mount() poll.Wakeup
	Unmount()
	FetchCmd(ctx context.Context, be model.Backend, t poll.Ticket) tea.Cmd // returns deckDataMsg
	// Complete records a fetched result and returns the ids that arrived.
	// Downstream state changes only when the outcome is poll.Applied.
	Complete(t poll.Ticket, data any, err error, now time.Time) (poll.Completion, snapshot.IDSet)

	Render(ctx ViewContext, width, height int, active bool, selIdx int) string
	ItemCount() int
}

// deckTickMsg fires when a deck's armed wakeup is due.
type deckTickMsg struct {
	Wakeup poll.Wakeup
}

// deckDataMsg carries fetched data back to the deck that owns Ticket.
type deckDataMsg struct {
	Ticket poll.Ticket
	Data   any
	Err    error
}

// scheduleWakeup turns an armed wakeup into a tick message.
func scheduleWakeup(w poll.Wakeup) tea.Cmd {
	if w.Delay <= 0 {
		return func() tea.Msg { return deckTickMsg{Wakeup: w} }
	}
	return tea.Tick(w.Delay, func(time.Time) tea.Msg {
		return deckTickMsg{Wakeup: w}
	})
}

// fetchCmd runs fetch off the update loop and reports the result for t.
func fetchCmd[T any](ctx context.Context, t poll.Ticket, fetch func(context.Context) (T, error)) tea.Cmd {
	return func() tea.Msg {
		v, err := fetch(ctx)
		return deckDataMsg{Ticket: t, Data: v, Err: err}
	}
}

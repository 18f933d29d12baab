// Package pending tracks the live-trade queue depth.
package pending

import (
	"context"
	"fmt"
	"time"

	"github.com/fundsmith/tradewatch/internal/backend"
	"github.com/fundsmith/tradewatch/internal/poll"
)

// Key is the poll resource key of the pending-count monitor.
const Key = "pending-count"

// ErrNegativeCount is returned by Complete for a count below zero.
var ErrNegativeCount = fmt.Errorf("%w: negative pending count", backend.ErrDecode)

// Config sizes a Monitor.
type Config struct {
	Interval    time.Duration
	MaxInterval time.Duration
	HistorySize int
}

// Monitor polls a scalar count while visible. It never diffs; it only
// keeps the last good value and a short history for the chart.
type Monitor struct {
	res     *poll.Resource
	count   int
	known   bool
	history []float64
	size    int
}

// NewMonitor creates a hidden monitor.
func NewMonitor(cfg Config) *Monitor {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 60
	}
	return &Monitor{
		res:  poll.New(poll.Config{Key: Key, Interval: cfg.Interval, MaxInterval: cfg.MaxInterval}),
		size: cfg.HistorySize,
	}
}

// Resource exposes the underlying scheduler state for rendering.
func (m *Monitor) Resource() *poll.Resource { return m.res }

// Show starts polling. The returned wakeup is due immediately.
func (m *Monitor) Show() poll.Wakeup { return m.res.Mount() }

// Hide suspends polling; an in-flight result is dropped. The last value
// is kept for when the panel reappears.
func (m *Monitor) Hide() { m.res.Cancel() }

// Visible reports whether the monitor is polling.
func (m *Monitor) Visible() bool { return m.res.Mounted() }

// Fire begins a tick for a due wakeup.
func (m *Monitor) Fire(w poll.Wakeup, now time.Time) (poll.Ticket, bool) {
	return m.res.Fire(w, now)
}

// Complete records a fetched count. On failure the previous value stays.
func (m *Monitor) Complete(t poll.Ticket, count int, err error, now time.Time) poll.Completion {
	if err == nil && count < 0 {
		err = fmt.Errorf("%w (%d)", ErrNegativeCount, count)
	}
	c := m.res.Complete(t, err, now)
	if c.Outcome != poll.Applied {
		return c
	}
	m.count = count
	m.known = true
	m.history = append(m.history, float64(count))
	if len(m.history) > m.size {
		m.history = m.history[len(m.history)-m.size:]
	}
	return c
}

// Runner drives the monitor from its own goroutine, for headless use.
// onCount sees every applied count.
func (m *Monitor) Runner(fetch func(ctx context.Context) (int, error), onCount func(count int, now time.Time)) *poll.Runner[int] {
	return poll.NewRunnerFunc(m.res, fetch, func(t poll.Ticket, count int, err error, now time.Time) poll.Completion {
		c := m.Complete(t, count, err, now)
		if c.Outcome == poll.Applied && onCount != nil {
			onCount(count, now)
		}
		return c
	})
}

// Count returns the last good count and whether one was ever fetched.
func (m *Monitor) Count() (int, bool) { return m.count, m.known }

// CanProcess reports whether the "process" action is enabled.
func (m *Monitor) CanProcess() bool { return m.known && m.count > 0 }

// Failing reports whether the most recent tick failed.
func (m *Monitor) Failing() bool { return m.res.LastError() != nil }

// History returns past counts, oldest first.
func (m *Monitor) History() []float64 {
	out := make([]float64, len(m.history))
	copy(out, m.history)
	return out
}

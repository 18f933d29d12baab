package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/fundsmith/tradewatch/internal/backend"
	"github.com/fundsmith/tradewatch/internal/poll"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles every message. It implements Page.
func (m *DashboardModel) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return nil, nil

	case tea.KeyMsg:
		if top := m.topModal(); top != nil {
			if key.Matches(msg, m.keys.ForceQuit) {
				return m.quit(), nil
			}
			pop, cmd := top.Update(msg)
			if pop {
				m.popModal()
			}
			return cmd, nil
		}
		return m.handleKey(msg), nil

	case ActionMsg:
		switch msg.Action {
		case ActionPushModal:
			if md, ok := msg.Payload.(Modal); ok {
				m.pushModal(md)
			}
		case ActionRun:
			if cmd, ok := msg.Payload.(tea.Cmd); ok {
				return cmd, nil
			}
		}
		return nil, nil

	case deckTickMsg:
		return m.handleTick(msg), nil

	case deckDataMsg:
		return m.handleData(msg), nil

	case highlightExpiredMsg:
		m.highlights.Expire(msg.Expiry)
		return nil, nil

	case toastExpiredMsg:
		m.removeToast(msg.ID)
		return nil, nil

	case importDetailsMsg:
		if top := m.topModal(); top != nil {
			_, cmd := top.Update(msg)
			return cmd, nil
		}
		return nil, nil

	case actionResultMsg:
		return m.handleActionResult(msg), nil

	case demoConfigMsg:
		return m.handleDemoConfig(msg), nil
	}
	return nil, nil
}

func (m *DashboardModel) quit() tea.Cmd {
	m.Close()
	return tea.Quit
}

func (m *DashboardModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	v := m.activeView()
	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.ForceQuit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.pushModal(NewHelpModal(m.keys))
	case key.Matches(msg, m.keys.NextSection):
		v.ActiveDeckIdx = (v.ActiveDeckIdx + 1) % len(v.Decks)
	case key.Matches(msg, m.keys.PrevSection):
		v.ActiveDeckIdx = (v.ActiveDeckIdx - 1 + len(v.Decks)) % len(v.Decks)
	case key.Matches(msg, m.keys.Up):
		if v.DeckSelIdx[v.ActiveDeckIdx] > 0 {
			v.DeckSelIdx[v.ActiveDeckIdx]--
		}
	case key.Matches(msg, m.keys.Down):
		if v.DeckSelIdx[v.ActiveDeckIdx] < v.Decks[v.ActiveDeckIdx].ItemCount()-1 {
			v.DeckSelIdx[v.ActiveDeckIdx]++
		}
	case key.Matches(msg, m.keys.NextView):
		return m.switchView((m.activeViewIdx + 1) % len(m.views))
	case key.Matches(msg, m.keys.PrevView):
		return m.switchView((m.activeViewIdx - 1 + len(m.views)) % len(m.views))
	case key.Matches(msg, m.keys.Refresh):
		return m.refreshAll()
	case key.Matches(msg, m.keys.Details):
		return m.openDetails()
	case key.Matches(msg, m.keys.Consolidate):
		return m.openConsolidate()
	case key.Matches(msg, m.keys.GenerateMXML):
		return m.generateMXML()
	case key.Matches(msg, m.keys.Push):
		return m.pushToMurex()
	case key.Matches(msg, m.keys.Delete):
		return m.deleteImport()
	case key.Matches(msg, m.keys.Process):
		return m.processPending()
	case key.Matches(msg, m.keys.DemoConfig):
		return m.openDemoConfig()
	}
	return nil
}

// mountView starts polling every deck of view idx.
func (m *DashboardModel) mountView(idx int) tea.Cmd {
	var cmds []tea.Cmd
	for _, d := range m.views[idx].Decks {
		cmds = append(cmds, scheduleWakeup(d.Mount()))
	}
	return tea.Batch(cmds...)
}

// unmountView cancels every deck of view idx and clears its highlights.
// Late results of those decks come back stale and are dropped.
func (m *DashboardModel) unmountView(idx int) {
	for _, d := range m.views[idx].Decks {
		d.Unmount()
		if cat := d.Category(); cat != "" {
			m.highlights.Clear(cat)
		}
	}
}

func (m *DashboardModel) switchView(idx int) tea.Cmd {
	if idx == m.activeViewIdx {
		return nil
	}
	m.unmountView(m.activeViewIdx)
	m.activeViewIdx = idx
	return m.mountView(idx)
}

// refreshAll arms an immediate tick on every idle mounted deck.
func (m *DashboardModel) refreshAll() tea.Cmd {
	var cmds []tea.Cmd
	for _, d := range m.activeView().Decks {
		if w, ok := d.Resource().Refresh(); ok {
			cmds = append(cmds, scheduleWakeup(w))
		}
	}
	return tea.Batch(cmds...)
}

func (m *DashboardModel) handleTick(msg deckTickMsg) tea.Cmd {
	d, ok := m.decks[msg.Wakeup.Key]
	if !ok {
		return nil
	}
	t, ok := d.Resource().Fire(msg.Wakeup, m.now())
	if !ok {
		return nil
	}
	return d.FetchCmd(m.ctx, m.backend, t)
}

func (m *DashboardModel) handleData(msg deckDataMsg) tea.Cmd {
	d, ok := m.decks[msg.Ticket.Key]
	if !ok {
		return nil
	}
	now := m.now()
	c, fresh := d.Complete(msg.Ticket, msg.Data, msg.Err, now)

	var cmds []tea.Cmd
	switch c.Outcome {
	case poll.Stale:
		m.logger.Trace("dropped stale result", "deck", d.ID(), "seq", msg.Ticket.Seq)
		return nil
	case poll.Applied:
		if c.Recovered {
			m.logger.Info("deck recovered", "deck", d.ID())
		}
		m.clampSelection(d)
		if x, ok := m.highlights.Flash(d.Category(), fresh, 0, now); ok {
			m.logger.Debug("new rows", "deck", d.ID(), "ids", fresh.Sorted())
			cmds = append(cmds,
				tea.Tick(x.At.Sub(now), func(time.Time) tea.Msg { return highlightExpiredMsg{Expiry: x} }),
				m.addToast(arrivalText(fresh.Len(), d.Noun(), d.Title()), false, m.cfg.ToastDuration),
			)
		}
	case poll.Failed:
		m.logger.Warn("deck refresh failed", "deck", d.ID(), "failures", d.Resource().ConsecutiveFailures(), "retry_in", c.Next.Delay, "error", c.Err)
		if c.Notify {
			cmds = append(cmds, m.addToast(d.Title()+": "+describeErr(c.Err), true, m.cfg.ToastDuration))
		}
	}
	cmds = append(cmds, scheduleWakeup(c.Next))
	return tea.Batch(cmds...)
}

// clampSelection keeps the selected row inside a deck that shrank.
func (m *DashboardModel) clampSelection(d Deck) {
	for vi := range m.views {
		v := &m.views[vi]
		for i, vd := range v.Decks {
			if vd != d {
				continue
			}
			if n := d.ItemCount(); v.DeckSelIdx[i] >= n {
				v.DeckSelIdx[i] = max(n-1, 0)
			}
		}
	}
}

func (m *DashboardModel) handleActionResult(msg actionResultMsg) tea.Cmd {
	if msg.Err != nil {
		m.logger.Error("action failed", "action", msg.Verb, "error", msg.Err)
		return m.addToast(msg.Verb+" failed: "+describeErr(msg.Err), true, m.cfg.ToastDuration)
	}
	m.logger.Info("action succeeded", "action", msg.Verb)
	text := msg.Verb + " done"
	if msg.Result != nil {
		text = msg.Verb + " done: " + msg.Result.ImportName
	}
	return tea.Batch(m.addToast(text, false, m.cfg.ToastDuration), m.refreshAll())
}

// handleDemoConfig applies loaded settings: demo mode speeds up the
// pipeline decks.
func (m *DashboardModel) handleDemoConfig(msg demoConfigMsg) tea.Cmd {
	if msg.Err != nil {
		m.logger.Warn("demo config unavailable", "error", msg.Err)
		if msg.Saved {
			return m.addToast("Saving demo config failed: "+describeErr(msg.Err), true, m.cfg.ToastDuration)
		}
		return nil
	}
	m.demo = msg.Config
	m.demoKnown = true

	interval := m.cfg.PollInterval
	if msg.Config.Enabled {
		interval = m.cfg.DemoPollInterval
	}
	for _, d := range m.stages {
		d.Resource().SetInterval(interval)
	}
	if msg.Saved {
		return m.addToast("Demo config saved", false, m.cfg.ToastDuration)
	}
	return nil
}

// describeErr shortens an error for a toast.
func describeErr(err error) string {
	var se *backend.StatusError
	switch {
	case err == nil:
		return "unknown error"
	case errors.As(err, &se) && se.Body != "":
		return truncate(fmt.Sprintf("backend returned %d: %s", se.Code, se.Body), 80)
	case errors.As(err, &se):
		return fmt.Sprintf("backend returned %d", se.Code)
	case errors.Is(err, backend.ErrDecode):
		return "unreadable response from backend"
	case errors.Is(err, backend.ErrNetwork):
		return "backend unreachable"
	}
	return truncate(err.Error(), 80)
}

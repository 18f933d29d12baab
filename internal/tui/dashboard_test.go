package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/fundsmith/tradewatch/internal/backend"
	"github.com/fundsmith/tradewatch/internal/criteria"
	"github.com/fundsmith/tradewatch/internal/highlight"
	"github.com/fundsmith/tradewatch/internal/model"
	"github.com/fundsmith/tradewatch/internal/pending"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDashboard(t *testing.T, be *fakeBackend) (*DashboardModel, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	m := NewDashboardModel(Options{Backend: be, Now: clock.Now})
	t.Cleanup(m.Close)
	m.Init()
	return m, clock
}

// fetch arms an immediate wakeup on deck id, fires it and runs the fetch,
// returning the data message without delivering it.
func fetch(t *testing.T, m *DashboardModel, id string) tea.Msg {
	t.Helper()
	d, ok := m.Deck(id)
	require.True(t, ok, "deck %s", id)
	w, ok := d.Resource().Refresh()
	require.True(t, ok, "deck %s not idle", id)
	cmd, _ := m.Update(deckTickMsg{Wakeup: w})
	require.NotNil(t, cmd)
	return cmd()
}

func tick(t *testing.T, m *DashboardModel, id string) {
	t.Helper()
	m.Update(fetch(t, m, id))
}

func press(m *DashboardModel, k string) tea.Cmd {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	cmd, _ := m.Update(msg)
	return cmd
}

func TestArrivalHighlightsAndToastsOnce(t *testing.T) {
	be := &fakeBackend{}
	m, clock := newTestDashboard(t, be)

	be.setImports(importAt(1, model.StageImported, t0.Add(-time.Minute)), importAt(2, model.StageImported, t0.Add(-time.Second)))
	tick(t, m, "imports")
	assert.False(t, m.Highlighted("imports", "2"), "first load is not an arrival")
	assert.Empty(t, m.Toasts())

	clock.Advance(3 * time.Second)
	be.setImports(
		importAt(1, model.StageImported, t0.Add(-time.Minute)),
		importAt(2, model.StageImported, t0.Add(-time.Second)),
		importAt(3, model.StageImported, clock.Now()),
	)
	tick(t, m, "imports")
	assert.True(t, m.Highlighted("imports", "3"))
	assert.False(t, m.Highlighted("imports", "1"))
	assert.False(t, m.Highlighted("consolidated", "3"))
	require.Len(t, m.Toasts(), 1)
	assert.Equal(t, "1 new import in Imports", m.Toasts()[0])

	clock.Advance(3 * time.Second)
	tick(t, m, "imports")
	assert.Len(t, m.Toasts(), 1, "unchanged poll adds no toast")

	clock.Advance(time.Second)
	assert.False(t, m.Highlighted("imports", "3"), "highlight lasts four seconds")
}

func TestStaleArrivalOutsideRecencyWindowIsIgnored(t *testing.T) {
	be := &fakeBackend{}
	m, _ := newTestDashboard(t, be)

	be.setImports(importAt(1, model.StageImported, t0))
	tick(t, m, "imports")
	be.setImports(importAt(1, model.StageImported, t0), importAt(2, model.StageImported, t0.Add(-time.Hour)))
	tick(t, m, "imports")

	assert.False(t, m.Highlighted("imports", "2"))
	assert.Empty(t, m.Toasts())
}

func TestStageDecksFilterByStatus(t *testing.T) {
	be := &fakeBackend{}
	m, _ := newTestDashboard(t, be)
	be.setImports(
		importAt(1, model.StageImported, t0),
		importAt(2, model.StageConsolidated, t0),
		importAt(3, model.StageConsolidated, t0),
	)
	for _, d := range m.StageDecks() {
		tick(t, m, d.ID())
	}

	counts := map[model.Stage]int{}
	for _, d := range m.StageDecks() {
		counts[d.Stage()] = d.ItemCount()
	}
	assert.Equal(t, map[model.Stage]int{
		model.StageImported:      1,
		model.StageConsolidated:  2,
		model.StageMXMLGenerated: 0,
		model.StagePushedToMurex: 0,
	}, counts)
}

func TestFailureToastsOncePerEpisodeAndKeepsData(t *testing.T) {
	be := &fakeBackend{}
	m, clock := newTestDashboard(t, be)
	d, _ := m.Deck("imports")
	stage := d.(*StageDeck)

	be.setImports(importAt(1, model.StageImported, t0))
	tick(t, m, "imports")

	be.listErr = fmt.Errorf("%w: connection refused", backend.ErrNetwork)
	for i := 0; i < 3; i++ {
		clock.Advance(time.Second)
		tick(t, m, "imports")
	}
	require.Len(t, m.Toasts(), 1)
	assert.Equal(t, "Imports: backend unreachable", m.Toasts()[0])
	assert.Len(t, stage.Imports(), 1, "last good data stays rendered")
	assert.Equal(t, 3, d.Resource().ConsecutiveFailures())
	assert.Contains(t, d.Render(m.deckContext(d), 60, 10, true, 0), "⚠")

	be.listErr = nil
	tick(t, m, "imports")
	assert.NoError(t, d.Resource().LastError())
	assert.NotContains(t, d.Render(m.deckContext(d), 60, 10, true, 0), "⚠")
}

func TestViewSwitchUnmountsHiddenDecks(t *testing.T) {
	be := &fakeBackend{}
	m, clock := newTestDashboard(t, be)

	be.setImports(importAt(1, model.StageImported, t0))
	tick(t, m, "imports")
	be.setImports(importAt(1, model.StageImported, t0), importAt(2, model.StageImported, t0))
	tick(t, m, "imports")
	require.True(t, m.Highlighted("imports", "2"))

	press(m, "]")
	assert.Equal(t, "live", m.ActiveView())
	for _, d := range m.StageDecks() {
		assert.False(t, d.Resource().Mounted(), d.ID())
	}
	assert.False(t, m.Highlighted("imports", "2"), "hidden view highlights are cleared")

	pc, _ := m.Deck(pending.Key)
	assert.True(t, pc.Resource().Mounted())

	// remount starts with a first load again
	press(m, "[")
	clock.Advance(time.Second)
	be.setImports(importAt(1, model.StageImported, t0), importAt(2, model.StageImported, t0), importAt(3, model.StageImported, t0))
	tick(t, m, "imports")
	assert.False(t, m.Highlighted("imports", "3"))
}

func TestLateResultAfterViewSwitchIsDropped(t *testing.T) {
	be := &fakeBackend{trades: []model.LiveTrade{{TradeID: "LIVE-1", Timestamp: model.Timestamp{Time: t0}}}}
	m, _ := newTestDashboard(t, be)

	press(m, "]")
	late := fetch(t, m, "pending-trades")
	press(m, "[")

	cmd, _ := m.Update(late)
	assert.Nil(t, cmd, "stale result arms nothing")
	d, _ := m.Deck("pending-trades")
	assert.Empty(t, d.(*PendingTradesDeck).Trades())

	press(m, "]")
	m.Update(late)
	assert.Empty(t, d.(*PendingTradesDeck).Trades(), "a remount does not revive old tickets")
}

func TestStaleWakeupDoesNotStartSecondLoop(t *testing.T) {
	be := &fakeBackend{}
	m, _ := newTestDashboard(t, be)
	d, _ := m.Deck("imports")

	old, ok := d.Resource().Refresh()
	require.True(t, ok)
	fresh, ok := d.Resource().Refresh()
	require.True(t, ok)

	cmd, _ := m.Update(deckTickMsg{Wakeup: old})
	assert.Nil(t, cmd)
	cmd, _ = m.Update(deckTickMsg{Wakeup: fresh})
	require.NotNil(t, cmd)
	cmd, _ = m.Update(deckTickMsg{Wakeup: fresh})
	assert.Nil(t, cmd, "in-flight resource refuses a duplicate tick")
}

func TestHighlightExpiryIgnoresReplacedFlash(t *testing.T) {
	be := &fakeBackend{}
	m, clock := newTestDashboard(t, be)

	be.setImports(importAt(1, model.StageImported, t0))
	tick(t, m, "imports")
	be.setImports(importAt(1, model.StageImported, t0), importAt(2, model.StageImported, t0))
	tick(t, m, "imports")

	m.Update(highlightExpiredMsg{Expiry: highlight.Expiry{Category: "imports", Generation: 0}})
	assert.True(t, m.Highlighted("imports", "2"), "unknown generation is ignored")

	clock.Advance(time.Second)
	be.setImports(importAt(1, model.StageImported, t0), importAt(2, model.StageImported, t0), importAt(3, model.StageImported, clock.Now()))
	tick(t, m, "imports")
	assert.True(t, m.Highlighted("imports", "3"))
	assert.False(t, m.Highlighted("imports", "2"), "new arrivals replace the set")
}

func TestConsolidateFlow(t *testing.T) {
	be := &fakeBackend{}
	m, _ := newTestDashboard(t, be)
	be.setImports(importAt(7, model.StageImported, t0))
	tick(t, m, "imports")

	cmd := press(m, "c")
	require.NotNil(t, cmd)
	m.Update(cmd())
	md, ok := m.topModal().(*ConsolidateModal)
	require.True(t, ok)
	assert.Equal(t, "CURRENCY_PAIR", mustCriteria(t, md))

	press(m, "2")
	cmd = press(m, "enter")
	require.NotNil(t, cmd)
	assert.Nil(t, m.topModal())

	m.Update(cmd())
	assert.Equal(t, []string{"CURRENCY_PAIR_AND_COUNTERPARTY"}, be.consolidated)
}

func mustCriteria(t *testing.T, md *ConsolidateModal) string {
	t.Helper()
	c, err := md.Selection().Criteria()
	require.NoError(t, err)
	return c.String()
}

func TestConsolidateModalBlocksEmptySelection(t *testing.T) {
	var submitted []string
	md := NewConsolidateModal(importAt(1, model.StageImported, t0), func(_ int64, c criteria.Criteria) tea.Cmd {
		submitted = append(submitted, c.String())
		return func() tea.Msg { return nil }
	})

	pop, _ := md.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")})
	require.False(t, pop)
	pop, cmd := md.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, pop)
	assert.Nil(t, cmd)
	assert.Empty(t, submitted)
	assert.Contains(t, md.View(80, 24), "No criteria selected")

	md.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	md.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("3")})
	pop, cmd = md.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, pop)
	assert.NotNil(t, cmd)
	assert.Equal(t, []string{"COUNTERPARTY_AND_BOOK"}, submitted)
}

func TestActionsRequireMatchingDeck(t *testing.T) {
	be := &fakeBackend{}
	m, _ := newTestDashboard(t, be)
	be.setImports(importAt(1, model.StageImported, t0), importAt(2, model.StageConsolidated, t0), importAt(3, model.StageMXMLGenerated, t0))
	for _, d := range m.StageDecks() {
		tick(t, m, d.ID())
	}

	// Imports deck focused: generate and push only hint
	press(m, "g")
	press(m, "p")
	assert.Empty(t, be.generated)
	assert.Empty(t, be.pushed)
	assert.Len(t, m.Toasts(), 2)

	press(m, "tab")
	cmd := press(m, "g")
	m.Update(cmd())
	assert.Equal(t, []int64{2}, be.generated)

	cmd = press(m, "x")
	m.Update(cmd())
	assert.Equal(t, []int64{2}, be.deleted)

	press(m, "tab")
	cmd = press(m, "p")
	m.Update(cmd())
	assert.Equal(t, []int64{3}, be.pushed)
}

func TestProcessGatedOnPendingCount(t *testing.T) {
	be := &fakeBackend{}
	m, _ := newTestDashboard(t, be)

	press(m, "P")
	assert.Zero(t, be.processed, "unknown count blocks processing")

	press(m, "]")
	tick(t, m, pending.Key)
	press(m, "P")
	assert.Zero(t, be.processed, "zero count blocks processing")

	be.count = 3
	tick(t, m, pending.Key)
	cmd := press(m, "P")
	require.NotNil(t, cmd)
	m.Update(cmd())
	assert.Equal(t, 1, be.processed)
	assert.Contains(t, m.Toasts()[len(m.Toasts())-1], "Process pending done")
}

func TestPendingCountKeptAcrossFailures(t *testing.T) {
	be := &fakeBackend{count: 5}
	m, _ := newTestDashboard(t, be)
	press(m, "]")
	tick(t, m, pending.Key)

	be.countErr = fmt.Errorf("%w: timeout", backend.ErrNetwork)
	tick(t, m, pending.Key)

	d, _ := m.Deck(pending.Key)
	count, known := d.(*PendingCountDeck).Monitor().Count()
	assert.True(t, known)
	assert.Equal(t, 5, count)
	assert.True(t, d.(*PendingCountDeck).Monitor().CanProcess())
}

func TestDemoModeSpeedsUpPipeline(t *testing.T) {
	be := &fakeBackend{}
	m, _ := newTestDashboard(t, be)
	cfg := DefaultConfig()

	m.Update(demoConfigMsg{Config: model.DemoConfig{Enabled: true}})
	assert.True(t, m.DemoEnabled())
	for _, d := range m.StageDecks() {
		assert.Equal(t, cfg.DemoPollInterval, d.Resource().BaseInterval())
	}

	m.Update(demoConfigMsg{Config: model.DemoConfig{Enabled: false}})
	for _, d := range m.StageDecks() {
		assert.Equal(t, cfg.PollInterval, d.Resource().BaseInterval())
	}
}

func TestDemoConfigModalSaves(t *testing.T) {
	be := &fakeBackend{demo: model.DefaultDemoConfig()}
	m, _ := newTestDashboard(t, be)
	m.Update(demoConfigMsg{Config: be.demo})

	m.Update(press(m, "d")())
	_, ok := m.topModal().(*DemoConfigModal)
	require.True(t, ok)

	press(m, " ")
	cmd := press(m, "enter")
	require.NotNil(t, cmd)
	m.Update(cmd())

	require.Len(t, be.savedDemo, 1)
	assert.True(t, be.savedDemo[0].Enabled)
	assert.True(t, m.DemoEnabled())
}

func TestViewRenders(t *testing.T) {
	be := &fakeBackend{}
	m, _ := newTestDashboard(t, be)
	be.setImports(importAt(1, model.StageImported, t0))
	tick(t, m, "imports")

	app := NewApp(m)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	out := app.View()
	for _, want := range []string{"Pipeline", "Live Trades", "Imports", "Consolidated", "MXML Generated", "Pushed to Murex"} {
		assert.True(t, strings.Contains(out, want), want)
	}

	press(m, "]")
	assert.Contains(t, m.View(120, 40), "Live Queue")
}

func TestAppShutdownReleasesDashboard(t *testing.T) {
	be := &fakeBackend{}
	m, clock := newTestDashboard(t, be)
	app := NewApp(m)
	require.NotNil(t, app.Init())

	be.setImports(importAt(1, model.StageImported, t0))
	tick(t, m, "imports")
	clock.Advance(time.Second)
	be.setImports(importAt(1, model.StageImported, t0), importAt(2, model.StageImported, clock.Now()))
	tick(t, m, "imports")
	require.True(t, m.Highlighted("imports", "2"))
	late := fetch(t, m, "consolidated")
	toasts := m.Toasts()

	app.Shutdown()
	assert.Error(t, m.ctx.Err())
	for _, id := range []string{"imports", "consolidated", "mxml", "murex"} {
		d, _ := m.Deck(id)
		assert.False(t, d.Resource().Mounted(), id)
	}
	assert.False(t, m.Highlighted("imports", "2"))

	data := late.(deckDataMsg)
	data.Data, data.Err = nil, context.Canceled
	cmd, _ := m.Update(data)
	assert.Nil(t, cmd, "late result after shutdown arms nothing")
	assert.Equal(t, toasts, m.Toasts())
	d, _ := m.Deck("consolidated")
	assert.NoError(t, d.Resource().LastError())
}

func TestImportDetailsLoadsLatestCopy(t *testing.T) {
	be := &fakeBackend{}
	m, _ := newTestDashboard(t, be)
	be.setImports(importAt(1, model.StageImported, t0), importAt(2, model.StageMXMLGenerated, t0))
	for _, d := range m.StageDecks() {
		tick(t, m, d.ID())
	}

	latest := importAt(2, model.StageMXMLGenerated, t0)
	latest.ConsolidationCriteria = "CURRENCY_PAIR_AND_BOOK"
	latest.MXMLGeneratedAt = model.Timestamp{Time: t0.Add(time.Minute)}
	latest.MXMLFiles = []model.MXMLFile{{ID: 5, Filename: "trade_2_EURUSD.xml", CreatedAt: model.Timestamp{Time: t0.Add(time.Minute)}}}
	be.setImports(importAt(1, model.StageImported, t0), latest)

	press(m, "tab")
	press(m, "tab")
	cmd := press(m, "enter")
	require.NotNil(t, cmd)
	md, ok := m.topModal().(*ImportDetailsModal)
	require.True(t, ok)
	assert.True(t, md.Loading())
	assert.Empty(t, md.Import().MXMLFiles, "opens on the row data")

	m.Update(importDetailsMsg{ID: 1})
	assert.True(t, md.Loading(), "result for another import is ignored")

	m.Update(cmd())
	assert.False(t, md.Loading())
	out := md.View(120, 40)
	for _, want := range []string{"Import #2", "MXML Generated", "Currency Pair + Book", "MXML files (1)", "trade_2_EURUSD.xml"} {
		assert.Contains(t, out, want)
	}

	press(m, "esc")
	assert.Nil(t, m.topModal())
}

func TestImportDetailsShowsLoadError(t *testing.T) {
	be := &fakeBackend{}
	m, _ := newTestDashboard(t, be)
	be.setImports(importAt(4, model.StageImported, t0))
	tick(t, m, "imports")
	be.setImports()

	cmd := press(m, "i")
	require.NotNil(t, cmd)
	m.Update(cmd())
	md, ok := m.topModal().(*ImportDetailsModal)
	require.True(t, ok)
	assert.Equal(t, int64(4), md.Import().ID, "row data stays on failure")
	assert.Contains(t, md.View(120, 40), "Could not load details: backend returned 404")
}

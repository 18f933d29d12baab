package tui

import (
	"context"
	"time"

	"github.com/fundsmith/tradewatch/internal/highlight"
	"github.com/fundsmith/tradewatch/internal/model"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"
)

// ViewState represents one switchable view composed of independent decks.
type ViewState struct {
	ID            string
	Title         string
	Decks         []Deck
	DeckSelIdx    []int
	ActiveDeckIdx int
}

// NavigationState holds view and deck focus.
type NavigationState struct {
	views         []ViewState
	activeViewIdx int
}

func (n *NavigationState) activeView() *ViewState {
	return &n.views[n.activeViewIdx]
}

// Options wires the dashboard to its collaborators.
type Options struct {
	Backend model.Backend
	Config  Config
	Logger  hclog.Logger
	// Now is the clock used for scheduling decisions; defaults to time.Now.
	Now func() time.Time
}

// DashboardModel is the single page of the TUI. All state mutation happens
// in Update; fetches run as commands and come back as deckDataMsg.
type DashboardModel struct {
	ModalStackState
	NavigationState
	ToastState

	width  int
	height int

	cfg     Config
	keys    KeyMap
	help    help.Model
	backend model.Backend
	logger  hclog.Logger
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	highlights *highlight.Manager
	decks      map[string]Deck // by resource key

	stages        []*StageDeck
	pendingCount  *PendingCountDeck
	pendingTrades *PendingTradesDeck

	demo      model.DemoConfig
	demoKnown bool
}

// highlightExpiredMsg ends one flash.
type highlightExpiredMsg struct {
	Expiry highlight.Expiry
}

// actionResultMsg reports the outcome of a user action against the backend.
type actionResultMsg struct {
	Verb   string
	Result *model.TradeImport
	Err    error
}

// demoConfigMsg carries demo settings loaded or saved.
type demoConfigMsg struct {
	Config model.DemoConfig
	Saved  bool
	Err    error
}

// NewDashboardModel creates the dashboard with the Pipeline and Live
// Trades views. No deck is mounted until Init.
func NewDashboardModel(opts Options) *DashboardModel {
	cfg := opts.Config.withDefaults()
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())

	m := &DashboardModel{
		cfg:           cfg,
		keys:          DefaultKeyMap(),
		help:          help.New(),
		backend:       opts.Backend,
		logger:        logger,
		now:           now,
		ctx:           ctx,
		cancel:        cancel,
		highlights:    highlight.NewManager(cfg.HighlightDuration),
		decks:         make(map[string]Deck),
		pendingCount:  NewPendingCountDeck(cfg),
		pendingTrades: NewPendingTradesDeck(cfg),
	}

	pipeline := make([]Deck, 0, len(model.Stages))
	for _, stage := range model.Stages {
		d := NewStageDeck(stage, cfg)
		m.stages = append(m.stages, d)
		pipeline = append(pipeline, d)
	}

	m.views = []ViewState{
		{ID: "pipeline", Title: "Pipeline", Decks: pipeline},
		{ID: "live", Title: "Live Trades", Decks: []Deck{m.pendingCount, m.pendingTrades}},
	}
	for i := range m.views {
		m.views[i].DeckSelIdx = make([]int, len(m.views[i].Decks))
		for _, d := range m.views[i].Decks {
			m.decks[d.ID()] = d
		}
	}
	return m
}

func (m *DashboardModel) ID() string { return "dashboard" }

// Init mounts the decks of the active view and loads the demo settings.
func (m *DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.mountView(m.activeViewIdx), m.loadDemoConfigCmd())
}

// Deck returns the deck with the given resource key.
func (m *DashboardModel) Deck(id string) (Deck, bool) {
	d, ok := m.decks[id]
	return d, ok
}

// StageDecks returns the pipeline decks in stage order.
func (m *DashboardModel) StageDecks() []*StageDeck { return m.stages }

// ActiveView returns the id of the visible view.
func (m *DashboardModel) ActiveView() string { return m.activeView().ID }

// Highlighted reports whether id is highlighted in category right now.
func (m *DashboardModel) Highlighted(category, id string) bool {
	return m.highlights.Highlighted(category, id, m.now())
}

// DemoEnabled reports whether the backend demo generator is on.
func (m *DashboardModel) DemoEnabled() bool { return m.demoKnown && m.demo.Enabled }

// Close tears the dashboard down: every deck is unmounted so in-flight
// results come back stale, highlights are cleared, then fetches are
// cancelled. Safe to call more than once.
func (m *DashboardModel) Close() {
	for i := range m.views {
		m.unmountView(i)
	}
	m.highlights.Reset()
	m.cancel()
}

// NewProgram builds the bubbletea program for the dashboard. Call
// App.Shutdown once the program returns.
func NewProgram(opts Options) (*tea.Program, *App) {
	app := NewApp(NewDashboardModel(opts))
	return tea.NewProgram(app, tea.WithAltScreen()), app
}

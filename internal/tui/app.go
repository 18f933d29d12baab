package tui

import tea "github.com/charmbracelet/bubbletea"

// App is the bubbletea root model. It forwards terminal size and messages to
// the active page and releases a page when navigation leaves it.
type App struct {
	pages  []Page
	active int
	width  int
	height int
}

// releaser is implemented by pages that hold fetches or timers.
type releaser interface {
	Close()
}

// NewApp creates an App showing the first page.
func NewApp(pages ...Page) *App {
	return &App{pages: pages}
}

func (a *App) Init() tea.Cmd {
	if len(a.pages) == 0 {
		return tea.Quit
	}
	return a.pages[a.active].Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		a.width, a.height = wsm.Width, wsm.Height
	}
	if len(a.pages) == 0 {
		return a, nil
	}

	cmd, nav := a.pages[a.active].Update(msg)
	if nav == nil {
		return a, cmd
	}
	next := a.indexOf(nav.PageID)
	if next < 0 || next == a.active {
		return a, cmd
	}
	a.release(a.active)
	a.active = next
	return a, tea.Batch(cmd, a.pages[next].Init())
}

func (a *App) View() string {
	if len(a.pages) == 0 {
		return "nothing to show"
	}
	return a.pages[a.active].View(a.width, a.height)
}

// Shutdown releases every page. Call it after the program exits.
func (a *App) Shutdown() {
	for i := range a.pages {
		a.release(i)
	}
}

func (a *App) indexOf(id string) int {
	for i, p := range a.pages {
		if p.ID() == id {
			return i
		}
	}
	return -1
}

func (a *App) release(i int) {
	if r, ok := a.pages[i].(releaser); ok {
		r.Close()
	}
}

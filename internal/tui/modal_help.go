package tui

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModal lists every key binding.
type HelpModal struct {
	keys KeyMap
	help help.Model
}

func NewHelpModal(keys KeyMap) *HelpModal {
	h := help.New()
	h.ShowAll = true
	return &HelpModal{keys: keys, help: h}
}

func (m *HelpModal) ID() string { return "help" }

func (m *HelpModal) Update(msg tea.Msg) (bool, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc", "?", "q":
			return true, nil
		}
	}
	return false, nil
}

func (m *HelpModal) View(width, height int) string {
	m.help.Width = max(width-10, 20)
	body := lipgloss.JoinVertical(lipgloss.Left,
		deckTitleStyle.Render("Keys"),
		"",
		m.help.View(m.keys),
		"",
		dimStyle.Render("New rows flash green for a few seconds after they arrive."),
		dimStyle.Render("⚠ marks a deck whose last refresh failed; it retries with backoff."),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modalStyle.Render(body))
}

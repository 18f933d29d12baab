package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the dashboard. It implements Page.
func (m *DashboardModel) View(width, height int) string {
	if width == 0 || height == 0 {
		return "Loading…"
	}
	if top := m.topModal(); top != nil {
		return top.View(width, height)
	}

	tabs := m.renderTabs(width)
	toasts := m.renderToasts(width)
	m.help.Width = width
	status := statusStyle.Width(width).Render(m.help.View(m.keys))

	used := lipgloss.Height(tabs) + lipgloss.Height(status)
	if toasts != "" {
		used += lipgloss.Height(toasts)
	}
	body := m.renderDecks(width, max(height-used, 3))

	parts := []string{tabs, body}
	if toasts != "" {
		parts = append(parts, toasts)
	}
	parts = append(parts, status)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *DashboardModel) renderTabs(width int) string {
	var tabs []string
	for i, v := range m.views {
		if i == m.activeViewIdx {
			tabs = append(tabs, activeTabStyle.Render(v.Title))
		} else {
			tabs = append(tabs, tabStyle.Render(v.Title))
		}
	}
	left := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	right := dimStyle.Render("tradewatch")
	if m.DemoEnabled() {
		right = badgeStyle.Render("DEMO") + " " + right
	}
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m *DashboardModel) renderToasts(width int) string {
	if len(m.toasts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		style := toastInfoStyle
		if t.isErr {
			style = toastErrorStyle
		}
		lines = append(lines, style.Render(truncate(t.text, max(width-2, 1))))
	}
	return lipgloss.JoinVertical(lipgloss.Right, lines...)
}

func (m *DashboardModel) renderDecks(width, height int) string {
	v := m.activeView()
	render := func(i, w, h int) string {
		d := v.Decks[i]
		return d.Render(m.deckContext(d), w, h, i == v.ActiveDeckIdx, v.DeckSelIdx[i])
	}

	switch v.ID {
	case "pipeline":
		// 2x2 grid in stage order
		leftW := width / 2
		rightW := width - leftW
		topH := height / 2
		bottomH := height - topH
		top := lipgloss.JoinHorizontal(lipgloss.Top, render(0, leftW, topH), render(1, rightW, topH))
		bottom := lipgloss.JoinHorizontal(lipgloss.Top, render(2, leftW, bottomH), render(3, rightW, bottomH))
		return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
	default:
		countH := min(10, height/3)
		return lipgloss.JoinVertical(lipgloss.Left, render(0, width, countH), render(1, width, height-countH))
	}
}

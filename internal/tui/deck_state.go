package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/fundsmith/tradewatch/internal/poll"

	"github.com/charmbracelet/lipgloss"
)

// deckContext builds the per-deck render context from its resource state.
func (m *DashboardModel) deckContext(d Deck) ViewContext {
	res := d.Resource()
	ctx := ViewContext{
		Now:     m.now(),
		Loading: res.InFlight(),
	}
	if err := res.LastError(); err != nil {
		ctx.LastError = err.Error()
	}
	if cat := d.Category(); cat != "" {
		now := ctx.Now
		ctx.Highlighted = func(id string) bool {
			return m.highlights.Highlighted(cat, id, now)
		}
	}
	return ctx
}

// deckHeader renders the title line: name, row count, freshness and the
// failure badge while the last tick failed.
func deckHeader(title string, count int, res *poll.Resource, ctx ViewContext, width int) string {
	left := deckTitleStyle.Render(fmt.Sprintf("%s (%d)", title, count))
	if ctx.LastError != "" {
		left += " " + deckWarnStyle.Render("⚠")
	}

	var right string
	switch {
	case ctx.LastError != "":
		right = fmt.Sprintf("retry in %s", formatDelay(res.Interval()))
	case ctx.Loading && res.LastFetchedAt().IsZero():
		right = "loading…"
	case !res.LastFetchedAt().IsZero():
		right = "updated " + formatAge(ctx.Now.Sub(res.LastFetchedAt()))
	}
	right = dimStyle.Render(right)

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

// frameDeck wraps deck content in the section border.
func frameDeck(content string, width, height int, active bool) string {
	style := sectionStyle
	if active {
		style = activeSectionStyle
	}
	// border takes one cell on each side
	return style.Width(max(width-2, 1)).Height(max(height-2, 1)).Render(content)
}

// rowStyle picks the style for one table row.
func rowStyle(ctx ViewContext, id string, selected, active bool) lipgloss.Style {
	switch {
	case ctx.isHighlighted(id):
		return highlightRowStyle
	case selected && active:
		return selectedRowStyle
	default:
		return lipgloss.NewStyle()
	}
}

// visibleWindow returns the [start, end) slice of n rows that keeps sel on
// screen within rows lines.
func visibleWindow(n, sel, rows int) (int, int) {
	if rows <= 0 || n == 0 {
		return 0, 0
	}
	if n <= rows {
		return 0, n
	}
	start := 0
	if sel >= rows {
		start = sel - rows + 1
	}
	end := start + rows
	if end > n {
		end = n
		start = end - rows
	}
	return start, end
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if width == 1 || len(r) <= 1 {
		return string(r[:1])
	}
	for len(r) > 0 && lipgloss.Width(string(r)) > width-1 {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

func pad(s string, width int) string {
	s = truncate(s, width)
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func formatAge(d time.Duration) string {
	switch {
	case d < time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}

func formatDelay(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}

func formatClock(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("15:04:05")
}

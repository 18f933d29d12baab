package tui

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var loadingStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// renderLoading renders the first-load indicator. The frame follows the
// clock so it advances on every re-render.
func renderLoading(now time.Time) string {
	frame := spinnerFrames[now.UnixMilli()/120%int64(len(spinnerFrames))]
	return loadingStyle.Render(frame + " Loading…")
}

package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// maxToasts bounds how many toasts are stacked at once; older ones drop.
const maxToasts = 4

type toast struct {
	id    uint64
	text  string
	isErr bool
}

// toastExpiredMsg removes the toast with ID.
type toastExpiredMsg struct {
	ID uint64
}

// ToastState holds the visible notifications, oldest first.
type ToastState struct {
	toasts []toast
	nextID uint64
}

func (s *ToastState) addToast(text string, isErr bool, d time.Duration) tea.Cmd {
	s.nextID++
	id := s.nextID
	s.toasts = append(s.toasts, toast{id: id, text: text, isErr: isErr})
	if len(s.toasts) > maxToasts {
		s.toasts = s.toasts[len(s.toasts)-maxToasts:]
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return toastExpiredMsg{ID: id} })
}

func (s *ToastState) removeToast(id uint64) {
	for i, t := range s.toasts {
		if t.id == id {
			s.toasts = append(s.toasts[:i], s.toasts[i+1:]...)
			return
		}
	}
}

// Toasts returns the visible toast texts, oldest first.
func (s *ToastState) Toasts() []string {
	out := make([]string, len(s.toasts))
	for i, t := range s.toasts {
		out[i] = t.text
	}
	return out
}

// arrivalText is the one-shot message for n newly detected rows.
func arrivalText(n int, noun, title string) string {
	if n == 1 {
		return fmt.Sprintf("1 new %s in %s", singular(noun), title)
	}
	return fmt.Sprintf("%d new %s in %s", n, noun, title)
}

func singular(noun string) string {
	if len(noun) > 1 && noun[len(noun)-1] == 's' {
		return noun[:len(noun)-1]
	}
	return noun
}

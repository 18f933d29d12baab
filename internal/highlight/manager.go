// Package highlight tracks transient per-category highlight sets.
package highlight

import (
	"sort"
	"time"

	"github.com/fundsmith/tradewatch/internal/model"
	"github.com/fundsmith/tradewatch/internal/snapshot"
)

// Expiry identifies one flash. Passing it back to Expire clears the
// category only if no newer flash replaced it.
type Expiry struct {
	Category   string
	Generation uint64
	At         time.Time
}

// State is the active highlight of one category.
type State struct {
	IDs       snapshot.IDSet
	ExpiresAt time.Time
}

type entry struct {
	ids        snapshot.IDSet
	generation uint64
	expiresAt  time.Time
}

// Manager holds one idle/active state machine per category. Categories are
// independent. Not safe for concurrent use; the TUI calls it from Update.
type Manager struct {
	duration   time.Duration
	generation uint64
	active     map[string]entry
}

// NewManager creates a manager whose flashes default to d.
func NewManager(d time.Duration) *Manager {
	if d <= 0 {
		d = model.DefaultHighlightDuration
	}
	return &Manager{duration: d, active: make(map[string]entry)}
}

// Duration returns the default flash duration.
func (m *Manager) Duration() time.Duration { return m.duration }

// Flash marks ids active under category for d (the default when d <= 0),
// replacing any active set of that category and restarting its deadline.
// Flashing an empty set is a no-op.
func (m *Manager) Flash(category string, ids snapshot.IDSet, d time.Duration, now time.Time) (Expiry, bool) {
	if ids.Len() == 0 {
		return Expiry{}, false
	}
	if d <= 0 {
		d = m.duration
	}
	m.generation++
	e := entry{ids: ids.Clone(), generation: m.generation, expiresAt: now.Add(d)}
	m.active[category] = e
	return Expiry{Category: category, Generation: e.generation, At: e.expiresAt}, true
}

// Expire clears the category if x still names its current flash.
func (m *Manager) Expire(x Expiry) bool {
	e, ok := m.active[x.Category]
	if !ok || e.generation != x.Generation {
		return false
	}
	delete(m.active, x.Category)
	return true
}

// Clear returns one category to idle.
func (m *Manager) Clear(category string) {
	delete(m.active, category)
}

// Reset returns every category to idle.
func (m *Manager) Reset() {
	clear(m.active)
}

// Active returns the ids highlighted under category at now.
func (m *Manager) Active(category string, now time.Time) snapshot.IDSet {
	e, ok := m.active[category]
	if !ok || !now.Before(e.expiresAt) {
		return snapshot.NewIDSet()
	}
	return e.ids.Clone()
}

// Highlighted reports whether id is highlighted under category at now.
func (m *Manager) Highlighted(category, id string, now time.Time) bool {
	e, ok := m.active[category]
	return ok && now.Before(e.expiresAt) && e.ids.Has(id)
}

// State returns the raw state of a category, ignoring the deadline.
func (m *Manager) State(category string) (State, bool) {
	e, ok := m.active[category]
	if !ok {
		return State{}, false
	}
	return State{IDs: e.ids.Clone(), ExpiresAt: e.expiresAt}, true
}

// Categories lists the non-idle categories in name order.
func (m *Manager) Categories() []string {
	out := make([]string, 0, len(m.active))
	for c := range m.active {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

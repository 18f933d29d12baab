// Package snapshot detects newly arrived entities between consecutive polls
// of one resource.
package snapshot

import (
	"time"

	"github.com/fundsmith/tradewatch/internal/model"
)

// Snapshot is the id set observed at one tick. The zero value is the
// unobserved initial snapshot of a resource.
type Snapshot struct {
	ids      IDSet
	observed bool
	takenAt  time.Time
}

// Take captures the ids of entities as an observed snapshot.
func Take(entities []model.Entity, at time.Time) Snapshot {
	ids := make(IDSet, len(entities))
	for _, e := range entities {
		ids[e.ID] = struct{}{}
	}
	return Snapshot{ids: ids, observed: true, takenAt: at}
}

// Observed reports whether the snapshot came from a completed poll.
func (s Snapshot) Observed() bool { return s.observed }

// IDs returns a copy of the snapshot's ids.
func (s Snapshot) IDs() IDSet { return s.ids.Clone() }

// Len returns the number of ids.
func (s Snapshot) Len() int { return len(s.ids) }

// TakenAt returns when the snapshot was captured.
func (s Snapshot) TakenAt() time.Time { return s.takenAt }

// Differ classifies entities that are new relative to a previous snapshot.
type Differ struct {
	// Window bounds how old an entity's CreatedAt may be and still count as
	// an arrival. Zero means model.DefaultRecencyWindow.
	Window time.Duration
}

func (d Differ) window() time.Duration {
	if d.Window <= 0 {
		return model.DefaultRecencyWindow
	}
	return d.Window
}

// Diff returns the ids present in current but not in prev whose CreatedAt is
// within the recency window of now. Diffing against an unobserved previous
// snapshot returns an empty set: the first population is not an arrival.
func (d Differ) Diff(prev Snapshot, current []model.Entity, now time.Time) IDSet {
	out := IDSet{}
	if !prev.observed {
		return out
	}
	window := d.window()
	for _, e := range current {
		if prev.ids.Has(e.ID) {
			continue
		}
		if e.CreatedAt.IsZero() || now.Sub(e.CreatedAt) > window {
			continue
		}
		out[e.ID] = struct{}{}
	}
	return out
}

// Tracker owns the previous snapshot of exactly one resource.
type Tracker struct {
	differ Differ
	prev   Snapshot
}

// NewTracker returns a tracker with no observed snapshot.
func NewTracker(window time.Duration) *Tracker {
	return &Tracker{differ: Differ{Window: window}}
}

// Observe diffs entities against the previous snapshot, then replaces it.
func (t *Tracker) Observe(entities []model.Entity, now time.Time) IDSet {
	fresh := t.differ.Diff(t.prev, entities, now)
	t.prev = Take(entities, now)
	return fresh
}

// Previous returns the last observed snapshot.
func (t *Tracker) Previous() Snapshot { return t.prev }

// Reset forgets the previous snapshot, so the next Observe is a first load.
func (t *Tracker) Reset() { t.prev = Snapshot{} }

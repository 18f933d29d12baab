// Package poll schedules repeated fetches of one remote resource with
// completion-relative delays, exponential backoff and cancellation tokens.
//
// A Resource is a pure state machine: it never starts goroutines or timers
// itself. The TUI drives it from the bubbletea update loop; Runner drives it
// from a dedicated goroutine in headless mode.
package poll

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Config describes one polled resource.
type Config struct {
	Key         string
	Interval    time.Duration // base delay between a completed tick and the next one
	MaxInterval time.Duration // backoff ceiling; values below Interval are raised to it
}

// Wakeup is an armed "start the next tick after Delay" request. Only the most
// recently armed wakeup of the current generation is honoured.
type Wakeup struct {
	Key        string
	Generation uint64
	Arm        uint64
	Delay      time.Duration
}

// Ticket identifies one in-flight tick.
type Ticket struct {
	Key        string
	Generation uint64
	Seq        uint64
	StartedAt  time.Time
}

// Outcome classifies a completed tick.
type Outcome int

const (
	// Applied means the tick succeeded and its result may be applied.
	Applied Outcome = iota
	// Failed means the fetch returned an error; backoff grew.
	Failed
	// Stale means the tick was superseded (cancelled, remounted or already
	// applied) and its result must be dropped without side effects.
	Stale
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Failed:
		return "failed"
	case Stale:
		return "stale"
	default:
		return "unknown"
	}
}

// Completion is the result of Complete.
type Completion struct {
	Outcome Outcome
	// Next is the armed wakeup for the following tick. Zero when Stale.
	Next Wakeup
	// Notify is set on the first failure of a failure episode only.
	Notify bool
	// Recovered is set on the success that ends a failure episode.
	Recovered bool
	Err       error
}

// Resource is the scheduling state of one tracked resource.
type Resource struct {
	key     string
	base    time.Duration
	max     time.Duration
	backoff *backoff.ExponentialBackOff

	generation uint64
	armed      uint64
	seq        uint64
	appliedSeq uint64

	mounted  bool
	inFlight bool
	interval time.Duration

	lastFetchedAt time.Time
	lastErr       error
	lastErrAt     time.Time
	failures      int
}

// New creates an unmounted resource.
func New(cfg Config) *Resource {
	r := &Resource{key: cfg.Key}
	r.configure(cfg.Interval, cfg.MaxInterval)
	return r
}

func (r *Resource) configure(base, max time.Duration) {
	if base <= 0 {
		base = time.Second
	}
	if max < base {
		max = base
	}
	r.base = base
	r.max = max
	r.backoff = backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(base),
		backoff.WithMaxInterval(max),
		backoff.WithMultiplier(2),
		backoff.WithRandomizationFactor(0),
		backoff.WithMaxElapsedTime(0),
	)
	r.interval = base
}

// Key returns the resource key.
func (r *Resource) Key() string { return r.key }

// Mount starts or restarts polling. Any tick or wakeup from a previous
// generation becomes stale. The returned wakeup is due immediately.
func (r *Resource) Mount() Wakeup {
	r.generation++
	r.mounted = true
	r.inFlight = false
	r.failures = 0
	r.lastErr = nil
	r.backoff.Reset()
	r.interval = r.base
	return r.arm(0)
}

// Cancel halts scheduling. Completions of in-flight ticks become stale.
func (r *Resource) Cancel() {
	if !r.mounted {
		return
	}
	r.generation++
	r.mounted = false
	r.inFlight = false
}

// Mounted reports whether the resource is currently polling.
func (r *Resource) Mounted() bool { return r.mounted }

// Generation returns the cancellation token of the current mount.
func (r *Resource) Generation() uint64 { return r.generation }

func (r *Resource) arm(delay time.Duration) Wakeup {
	r.armed++
	return Wakeup{Key: r.key, Generation: r.generation, Arm: r.armed, Delay: delay}
}

// Due reports whether w is the live wakeup of the current generation.
func (r *Resource) Due(w Wakeup) bool {
	return r.mounted && w.Key == r.key && w.Generation == r.generation && w.Arm == r.armed
}

// Begin starts a tick. It refuses while unmounted or while a tick is in
// flight, so ticks of one resource never overlap.
func (r *Resource) Begin(now time.Time) (Ticket, bool) {
	if !r.mounted || r.inFlight {
		return Ticket{}, false
	}
	r.inFlight = true
	r.seq++
	return Ticket{Key: r.key, Generation: r.generation, Seq: r.seq, StartedAt: now}, true
}

// Fire begins a tick for a due wakeup.
func (r *Resource) Fire(w Wakeup, now time.Time) (Ticket, bool) {
	if !r.Due(w) {
		return Ticket{}, false
	}
	return r.Begin(now)
}

// Refresh arms an immediate wakeup, superseding the pending one. It is a
// no-op while a tick is in flight; that tick's completion re-arms anyway.
func (r *Resource) Refresh() (Wakeup, bool) {
	if !r.mounted || r.inFlight {
		return Wakeup{}, false
	}
	return r.arm(0), true
}

// Current reports whether a completion for t would still be accepted.
func (r *Resource) Current(t Ticket) bool {
	return r.mounted && t.Key == r.key && t.Generation == r.generation && t.Seq > r.appliedSeq
}

// Complete records the end of a tick and arms the next wakeup, measured from
// now. It is the apply-time guard: callers mutate downstream state only when
// the outcome is Applied.
func (r *Resource) Complete(t Ticket, err error, now time.Time) Completion {
	if !r.Current(t) {
		return Completion{Outcome: Stale, Err: err}
	}
	r.inFlight = false
	r.appliedSeq = t.Seq

	c := Completion{Err: err}
	if err != nil {
		r.failures++
		r.lastErr = err
		r.lastErrAt = now
		r.interval = r.backoff.NextBackOff()
		c.Outcome = Failed
		c.Notify = r.failures == 1
	} else {
		c.Outcome = Applied
		c.Recovered = r.failures > 0
		r.failures = 0
		r.lastErr = nil
		r.lastFetchedAt = now
		r.backoff.Reset()
		r.interval = r.base
	}
	c.Next = r.arm(r.interval)
	return c
}

// SetInterval changes the base interval and resets backoff. The pending
// wakeup keeps its delay; the new base applies from the next completion.
func (r *Resource) SetInterval(base time.Duration) {
	if base == r.base {
		return
	}
	max := r.max
	if max < base {
		max = base
	}
	r.configure(base, max)
}

// BaseInterval returns the delay used after a successful tick.
func (r *Resource) BaseInterval() time.Duration { return r.base }

// MaxInterval returns the backoff ceiling.
func (r *Resource) MaxInterval() time.Duration { return r.max }

// Interval returns the delay armed after the most recent completion.
func (r *Resource) Interval() time.Duration { return r.interval }

// InFlight reports whether a tick is outstanding.
func (r *Resource) InFlight() bool { return r.inFlight }

// LastFetchedAt returns when the last successful tick completed.
func (r *Resource) LastFetchedAt() time.Time { return r.lastFetchedAt }

// LastError returns the error of the last tick, nil after a success.
func (r *Resource) LastError() error { return r.lastErr }

// LastErrorAt returns when LastError was recorded.
func (r *Resource) LastErrorAt() time.Time { return r.lastErrAt }

// ConsecutiveFailures returns the length of the current failure episode.
func (r *Resource) ConsecutiveFailures() int { return r.failures }

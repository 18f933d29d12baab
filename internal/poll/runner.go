package poll

import (
	"context"
	"time"
)

// Runner drives one Resource from its own goroutine. It owns the resource
// exclusively for the duration of Run.
type Runner[T any] struct {
	res       *Resource
	fetch     func(ctx context.Context) (T, error)
	complete  CompleteFunc[T]
	onFailure func(err error, c Completion)
	now       func() time.Time
}

// CompleteFunc records one fetch result against its ticket. It must call
// Resource.Complete and only mutate state when the outcome is Applied.
type CompleteFunc[T any] func(t Ticket, v T, err error, now time.Time) Completion

// NewRunner binds a fetch function and an apply callback to res. apply
// only sees Applied results.
func NewRunner[T any](res *Resource, fetch func(ctx context.Context) (T, error), apply func(v T, now time.Time)) *Runner[T] {
	return NewRunnerFunc(res, fetch, func(t Ticket, v T, err error, now time.Time) Completion {
		c := res.Complete(t, err, now)
		if c.Outcome == Applied {
			apply(v, now)
		}
		return c
	})
}

// NewRunnerFunc is NewRunner for owners that complete tickets themselves,
// such as a monitor that validates the value before applying it.
func NewRunnerFunc[T any](res *Resource, fetch func(ctx context.Context) (T, error), complete CompleteFunc[T]) *Runner[T] {
	return &Runner[T]{res: res, fetch: fetch, complete: complete, now: time.Now}
}

// OnFailure registers a callback for Failed completions.
func (r *Runner[T]) OnFailure(fn func(err error, c Completion)) *Runner[T] {
	r.onFailure = fn
	return r
}

// Run polls until ctx is cancelled. A fetch that returns after cancellation
// is completed as stale and never applied.
func (r *Runner[T]) Run(ctx context.Context) error {
	w := r.res.Mount()
	timer := time.NewTimer(w.Delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			r.res.Cancel()
			return nil
		case <-timer.C:
		}

		ticket, ok := r.res.Begin(r.now())
		if !ok {
			return nil
		}
		v, err := r.fetch(ctx)
		if ctx.Err() != nil {
			r.res.Cancel()
		}

		c := r.complete(ticket, v, err, r.now())
		switch c.Outcome {
		case Stale:
			return nil
		case Failed:
			if r.onFailure != nil {
				r.onFailure(c.Err, c)
			}
		}
		timer.Reset(c.Next.Delay)
	}
}

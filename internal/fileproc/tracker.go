package fileproc

import (
	"context"
	"sync/atomic"
)

// ProgressFunc is called after each file completes.
// current is the number of files finished, total the number scheduled.
type ProgressFunc func(current, total int, path string)

// Tracker counts finished files. It is safe for concurrent use.
type Tracker struct {
	total    atomic.Int32
	current  atomic.Int32
	failed   atomic.Int32
	callback ProgressFunc
}

// NewTracker creates a tracker that invokes callback on every Tick.
func NewTracker(callback ProgressFunc) *Tracker {
	return &Tracker{callback: callback}
}

// Add increments the total by n.
func (t *Tracker) Add(n int) {
	t.total.Add(int32(n))
}

// Tick marks path as finished.
func (t *Tracker) Tick(path string) {
	current := int(t.current.Add(1))
	if t.callback != nil {
		t.callback(current, int(t.total.Load()), path)
	}
}

// Fail marks path as finished with an error.
func (t *Tracker) Fail(path string) {
	t.failed.Add(1)
	t.Tick(path)
}

// Current returns the number of finished files.
func (t *Tracker) Current() int { return int(t.current.Load()) }

// Total returns the number of scheduled files.
func (t *Tracker) Total() int { return int(t.total.Load()) }

// Failed returns the number of files that finished with an error.
func (t *Tracker) Failed() int { return int(t.failed.Load()) }

type trackerKey struct{}

// WithTracker returns a context that carries a progress tracker.
func WithTracker(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// TrackerFromContext extracts the progress tracker from the context.
// Returns nil if no tracker was set.
func TrackerFromContext(ctx context.Context) *Tracker {
	if t, ok := ctx.Value(trackerKey{}).(*Tracker); ok {
		return t
	}
	return nil
}

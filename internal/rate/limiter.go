package rate

import (
	"context"
	"errors"
	"time"
)

// ErrBackendUnavailable wraps failures of a shared window backend. The
// in-process store never returns it.
var ErrBackendUnavailable = errors.New("rate limit backend unavailable")

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Remaining int
}

// Store keeps the timestamp windows. Implementations must prune entries
// older than now-window before counting.
type Store interface {
	// Check reports whether one more action would be admitted, without
	// recording anything.
	Check(ctx context.Context, sessionID, action string, limit int, window time.Duration, now time.Time) (Decision, error)
	// Record appends an action timestamp. Call only after an allowed
	// Check; prefer Reserve, which closes the race between the two.
	Record(ctx context.Context, sessionID, action string, window time.Duration, now time.Time) error
	// Reserve checks and, when allowed, records in one atomic step.
	Reserve(ctx context.Context, sessionID, action string, limit int, window time.Duration, now time.Time) (Decision, error)
}

// Limiter binds a Store to a window length and clock.
type Limiter struct {
	store  Store
	window time.Duration
	now    func() time.Time
}

// New creates a Limiter. A nil clock means time.Now.
func New(store Store, window time.Duration, clock func() time.Time) *Limiter {
	if clock == nil {
		clock = time.Now
	}
	return &Limiter{
		store:  store,
		window: window,
		now:    clock,
	}
}

// Check reports admission for one more action without recording it.
func (l *Limiter) Check(ctx context.Context, sessionID, action string, limit int) (Decision, error) {
	return l.store.Check(ctx, sessionID, action, limit, l.window, l.now())
}

// Record appends an action timestamp.
func (l *Limiter) Record(ctx context.Context, sessionID, action string) error {
	return l.store.Record(ctx, sessionID, action, l.window, l.now())
}

// Reserve admits and records atomically.
func (l *Limiter) Reserve(ctx context.Context, sessionID, action string, limit int) (Decision, error) {
	return l.store.Reserve(ctx, sessionID, action, limit, l.window, l.now())
}

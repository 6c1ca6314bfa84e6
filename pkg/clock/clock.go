package clock

import (
	"sync"
	"time"
)

// Resolution is the precision timestamps are truncated to, matching Postgres timestamptz
const Resolution = time.Microsecond

// Monotonic hands out strictly increasing UTC timestamps, even when the
// wall clock stalls or steps backwards.
type Monotonic struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// New creates a clock backed by time.Now
func New() *Monotonic {
	return NewWithSource(time.Now)
}

// NewWithSource creates a clock backed by now
func NewWithSource(now func() time.Time) *Monotonic {
	return &Monotonic{now: now}
}

// Now returns the next timestamp
func (c *Monotonic) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(Resolution)
	if !t.After(c.last) {
		t = c.last.Add(Resolution)
	}
	c.last = t
	return t
}

// Last returns the most recent timestamp handed out
func (c *Monotonic) Last() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Stepped returns a source that starts at start and advances by step on every call.
// Useful for deterministic tests.
func Stepped(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(step)
		return t
	}
}

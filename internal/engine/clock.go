package engine

import "sync/atomic"

// Sequencer hands out logical timestamps. Clock is the production
// implementation; tests may inject a deterministic one with WithClock.
type Sequencer interface {
	Next() int64
	Current() int64
}

// Clock is a monotonic logical clock for event ordering.
//
// Every run and step is stamped with a strictly increasing seq from this
// clock, so replay sees the same order and no wall-clock races exist.
//
// Clock is safe for concurrent use, although the engine's single-writer
// design means only the Run goroutine calls Next.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific sequence number.
// Used to continue numbering after the last seq found in a store.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

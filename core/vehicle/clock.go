package vehicle

import "time"

// Clock returns the current time in milliseconds. Successive readings must
// not decrease.
type Clock interface {
	Now() int64
}

// MonotonicClock reports Unix epoch milliseconds anchored at creation and
// advanced with the monotonic clock, so wall clock jumps do not move it
// backwards.
type MonotonicClock struct {
	base  time.Time
	epoch int64
}

// NewMonotonicClock returns a clock anchored at the current time.
func NewMonotonicClock() *MonotonicClock {
	now := time.Now()
	return &MonotonicClock{base: now, epoch: now.UnixMilli()}
}

// Now implements Clock.
func (c *MonotonicClock) Now() int64 {
	return c.epoch + time.Since(c.base).Milliseconds()
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() int64

// Now implements Clock.
func (f ClockFunc) Now() int64 { return f() }

package testutil

import (
	"sync"
	"time"
)

// Clock hands out deterministic, increasing times. Safe for concurrent use.
type Clock struct {
	mu      sync.Mutex
	current time.Time
	step    time.Duration
}

// NewClock returns a clock whose first [Clock.Now] is 2024-01-01 00:00:01 UTC.
func NewClock() *Clock {
	return &Clock{
		current: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		step:    time.Second,
	}
}

// Now advances the clock one step and returns the new time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = c.current.Add(c.step)

	return c.current
}

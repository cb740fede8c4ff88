package job

import (
	"sync"
	"time"
)

// Clock abstracts time so the poller and estimator can run under test.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// RealClock is the wall clock.
var RealClock Clock = realClock{}

// SteppingClock fires every timer immediately and advances its own time by
// the requested duration. Tests use it to run polling loops without sleeping.
type SteppingClock struct {
	mu      sync.Mutex
	current time.Time
}

func NewSteppingClock(start time.Time) *SteppingClock {
	return &SteppingClock{current: start}
}

func (c *SteppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *SteppingClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.current = c.current.Add(d)
	now := c.current
	c.mu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- now
	return ch
}

func (c *SteppingClock) Add(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	c.mu.Unlock()
}

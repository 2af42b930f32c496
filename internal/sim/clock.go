package sim

import "time"

// FrameClock measures the wall time between frames on the monotonic clock.
type FrameClock struct {
	now  func() time.Time
	last time.Time
}

// NewFrameClock creates a clock using time.Now.
func NewFrameClock() *FrameClock {
	return &FrameClock{now: time.Now}
}

// Tick returns the seconds elapsed since the previous Tick. The first Tick returns 0.
func (c *FrameClock) Tick() float64 {
	t := c.now()
	if c.last.IsZero() {
		c.last = t
		return 0
	}
	dt := t.Sub(c.last).Seconds()
	c.last = t
	return dt
}

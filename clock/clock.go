// Package clock implements the simulation's monotonic fixed-step clock.
package clock

import "fmt"

// Clock tracks simulation time as a count of fixed-size steps, so that
// elapsed time is always an exact multiple of DT regardless of floating
// point drift.
type Clock struct {
	DT    float64
	Step  int64
	T     float64
}

// New creates a clock with the given fixed step size, starting at t=0.
func New(dt float64) *Clock {
	return &Clock{DT: dt}
}

// Advance moves the clock forward by one DT and returns the new time.
func (c *Clock) Advance() float64 {
	c.Step++
	c.T = float64(c.Step) * c.DT
	return c.T
}

// Reset returns the clock to t=0, step 0.
func (c *Clock) Reset() {
	c.Step = 0
	c.T = 0
}

// String renders the current time as HH:MM:SS.
func (c *Clock) String() string {
	t := c.T
	h := int(t / 3600)
	t -= float64(h * 3600)
	m := int(t / 60)
	t -= float64(m * 60)
	s := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

package orchestrator

import (
	"github.com/magv-sim/citysim/internal/navveh"
	"github.com/magv-sim/citysim/internal/semaphore"
)

// Context is the explicit, caller-owned home for the tick/visited epoch
// counters and the semaphore clock, replacing process-wide globals with
// a value threaded through every call. navveh.Clock already carries the
// tick/visited pair the vehicle planner needs, so Context simply bundles
// it with the semaphore table rather than re-declaring the counters
// itself.
type Context struct {
	Clock     navveh.Clock
	Semaphore *semaphore.Table
}

// NewContext returns a fresh context with its semaphore table at
// default (always-green) timings and both epoch counters at zero.
func NewContext() *Context {
	return &Context{Semaphore: semaphore.New()}
}

// Tick advances the semaphore clock by dt seconds and then the frame's
// tick epoch by one, in that order — signals must reflect the elapsed
// time before planners read IsGreen for this frame.
func (c *Context) Tick(dt float32) {
	c.Semaphore.Tick(dt)
	c.Clock.Advance()
}

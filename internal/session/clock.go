package session

import "time"

// Clock reports seconds elapsed since the session started. It must be monotonic.
type Clock interface {
	Elapsed() float64
}

// WallClock measures real time for the live window.
type WallClock struct {
	start time.Time
	now   func() time.Time
}

func NewWallClock() *WallClock {
	return &WallClock{start: time.Now(), now: time.Now}
}

func (c *WallClock) Elapsed() float64 {
	return c.now().Sub(c.start).Seconds()
}

// StepClock advances in whole frames at a fixed rate, for offline renders.
type StepClock struct {
	fps   int
	frame int
}

func NewStepClock(fps int) *StepClock {
	if fps <= 0 {
		fps = 30
	}
	return &StepClock{fps: fps}
}

// Advance moves the clock one frame forward.
func (c *StepClock) Advance() { c.frame++ }

// Frame is the current frame index.
func (c *StepClock) Frame() int { return c.frame }

func (c *StepClock) Elapsed() float64 {
	return float64(c.frame) / float64(c.fps)
}

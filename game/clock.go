package game

import "time"

// FPSUpdateFreq is how many ticks FPS averages over.
const FPSUpdateFreq = 30

// Clock paces the main loop.
type Clock struct {
	now   func() time.Time
	sleep func(time.Duration)

	tick    time.Time
	fpsMark time.Time
	nticks  int
	fps     float32
}

func NewClock() *Clock {
	return NewClockWith(time.Now, time.Sleep)
}

// NewClockWith reads time from now and blocks with sleep.
func NewClockWith(now func() time.Time, sleep func(time.Duration)) *Clock {
	t := now()
	return &Clock{now: now, sleep: sleep, tick: t, fpsMark: t}
}

// Tick sleeps until 1/fps seconds have passed since the previous tick and
// returns the seconds actually elapsed. A frame that overran is not made up.
func (c *Clock) Tick(fps float32) float32 {
	last := c.tick
	c.tick = c.now()
	if fps > 0 {
		wait := time.Duration(float64(time.Second)/float64(fps)) - c.tick.Sub(last)
		if wait > 0 {
			c.sleep(wait)
			c.tick = c.now()
		}
	}

	c.nticks++
	if c.nticks >= FPSUpdateFreq {
		if d := c.tick.Sub(c.fpsMark).Seconds(); d > 0 {
			c.fps = float32(FPSUpdateFreq / d)
		}
		c.fpsMark = c.tick
		c.nticks = 0
	}
	return float32(c.tick.Sub(last).Seconds())
}

// FPS is the average rate over the last FPSUpdateFreq ticks, or 0 before
// the first full window.
func (c *Clock) FPS() float32 { return c.fps }

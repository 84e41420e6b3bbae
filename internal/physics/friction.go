package physics

import "math"

// FrictionClock tracks simulated time and fires once each time the whole
// second changes. It decays speed in coarse steps, not per frame.
type FrictionClock struct {
	Elapsed    float64 `json:"elapsed"`
	LastSecond int64   `json:"last_second"`
}

// NewFrictionClock starts a clock at the given simulated time.
func NewFrictionClock(start float64) *FrictionClock {
	return &FrictionClock{
		Elapsed:    start,
		LastSecond: wholeSeconds(start),
	}
}

// Advance adds dt to the clock and reports whether the integer second changed.
func (c *FrictionClock) Advance(dt float64) bool {
	c.Elapsed += dt
	sec := wholeSeconds(c.Elapsed)
	if sec == c.LastSecond {
		return false
	}
	c.LastSecond = sec
	return true
}

// wholeSeconds floors t, treating values within clockTolerance below an integer
// as that integer. Summing 1/60 a hundred and twenty times gives 1.9999999999999978.
func wholeSeconds(t float64) int64 {
	return int64(math.Floor(t + clockTolerance))
}

// ApplyFriction multiplies every ball's velocity by roll.
func ApplyFriction(s *Store, roll float64) {
	for i := 0; i < s.Len(); i++ {
		b := s.At(i)
		b.Velocity = b.Velocity.Mul(roll)
	}
}

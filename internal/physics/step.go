package physics

// EventType classifies what happened to a ball during a step.
type EventType string

const (
	EventBall     EventType = "ball"
	EventCushion  EventType = "cushion"
	EventFriction EventType = "friction"
	EventBoost    EventType = "boost"
)

// Event records one contact or decay for renderers (sound, effects).
type Event struct {
	Type     EventType `json:"type"`
	BallID   int       `json:"ball_id"`
	TargetID int       `json:"target_id"`      // other ball for EventBall, -1 otherwise
	Hits     int       `json:"hits,omitempty"` // cushion axes hit, 2 in a corner
	Speed    float64   `json:"speed"`
}

// Friction holds the two speed-retention factors.
type Friction struct {
	Cushion   float64 `json:"cushion"`    // per axis reflection
	PerSecond float64 `json:"per_second"` // per simulated second
}

// DefaultFriction keeps 80% of speed on each cushion hit and each second.
func DefaultFriction() Friction {
	return Friction{Cushion: DefaultRollFriction, PerSecond: DefaultRollFriction}
}

// Options tune the step beyond the reference behavior.
type Options struct {
	MaxFrameDelta    float64 `json:"max_frame_delta"`
	ClampToBounds    bool    `json:"clamp_to_bounds"`
	SeparateOverlaps bool    `json:"separate_overlaps"`
}

// DefaultOptions clamps to the table and leaves overlaps to the velocity fix.
func DefaultOptions() Options {
	return Options{
		MaxFrameDelta: DefaultMaxFrameDelta,
		ClampToBounds: true,
	}
}

// StepResult summarizes one call to Step.
type StepResult struct {
	Skipped         bool    `json:"skipped"`
	Dt              float64 `json:"dt"`
	Collisions      int     `json:"collisions"`
	CushionHits     int     `json:"cushion_hits"`
	FrictionApplied bool    `json:"friction_applied"`
	Events          []Event `json:"events,omitempty"`
}

// Step advances the simulation by one frame of dt seconds.
//
// A dt above opts.MaxFrameDelta (or a negative one) leaves every ball and the
// clock untouched. Otherwise each ball in index order is collided against the
// balls after it, integrated with its possibly updated velocity, then reflected
// off the cushions. After the loop the clock advances and friction is applied
// if a whole simulated second has passed.
func Step(s *Store, dt float64, bd Bounds, f Friction, clock *FrictionClock, opts Options) StepResult {
	res := StepResult{Dt: dt}
	if dt < 0 || (opts.MaxFrameDelta > 0 && dt > opts.MaxFrameDelta) {
		res.Skipped = true
		return res
	}

	for i := 0; i < s.Len(); i++ {
		before := len(res.Events)
		res.Events = resolveFor(s, i, opts, res.Events)
		res.Collisions += len(res.Events) - before

		b := s.At(i)
		integrate(b, dt)

		speed := b.Speed()
		if hits := Reflect(b, bd, f.Cushion, opts.ClampToBounds); hits > 0 {
			res.CushionHits += hits
			res.Events = append(res.Events, Event{
				Type:     EventCushion,
				BallID:   b.ID,
				TargetID: -1,
				Hits:     hits,
				Speed:    speed,
			})
		}
	}

	if clock != nil && clock.Advance(dt) {
		ApplyFriction(s, f.PerSecond)
		res.FrictionApplied = true
		res.Events = append(res.Events, Event{Type: EventFriction, BallID: -1, TargetID: -1})
	}

	return res
}

// ApplySpeedBoost scales every velocity by factor and then integrates one
// sub-step of dt. It is the manual nudge for balls stuck inside each other.
func ApplySpeedBoost(s *Store, factor, dt float64) {
	for i := 0; i < s.Len(); i++ {
		b := s.At(i)
		b.Velocity = b.Velocity.Mul(factor)
		integrate(b, dt)
	}
}

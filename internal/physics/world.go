package physics

import "github.com/go-gl/mathgl/mgl64"

// BallSnapshot is what a renderer needs to place and rotate one ball mesh.
type BallSnapshot struct {
	ID       int        `json:"id"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	Z        float64    `json:"z"`
	Rotation [4]float64 `json:"rotation"` // quaternion w, x, y, z
	Matrix   mgl64.Mat4 `json:"matrix"`   // column-major rotation
}

// World bundles a ball store with the table, friction and clock a step needs.
type World struct {
	Params   Params
	Bounds   Bounds
	Friction Friction
	Options  Options

	balls *Store
	clock *FrictionClock
	frame uint64
}

// NewWorld initializes a ball set for p and wraps it.
func NewWorld(p Params, rng Rand, f Friction, opts Options) (*World, error) {
	balls, err := Initialize(p, rng)
	if err != nil {
		return nil, err
	}
	return NewWorldFromStore(p, balls, f, opts), nil
}

// NewWorldFromStore wraps an existing store, e.g. a hand-built test layout.
func NewWorldFromStore(p Params, balls *Store, f Friction, opts Options) *World {
	return &World{
		Params:   p,
		Bounds:   p.Bounds(),
		Friction: f,
		Options:  opts,
		balls:    balls,
		clock:    NewFrictionClock(0),
	}
}

// Step runs one frame. Skipped frames do not count.
func (w *World) Step(dt float64) StepResult {
	res := Step(w.balls, dt, w.Bounds, w.Friction, w.clock, w.Options)
	if !res.Skipped {
		w.frame++
	}
	return res
}

// Boost applies the speed boost and keeps the balls on the table afterwards.
func (w *World) Boost(factor, dt float64) []Event {
	ApplySpeedBoost(w.balls, factor, dt)

	events := make([]Event, 0, w.balls.Len())
	for i := 0; i < w.balls.Len(); i++ {
		b := w.balls.At(i)
		Reflect(b, w.Bounds, w.Friction.Cushion, w.Options.ClampToBounds)
		events = append(events, Event{Type: EventBoost, BallID: b.ID, TargetID: -1, Speed: b.Speed()})
	}
	return events
}

// Balls exposes the underlying store.
func (w *World) Balls() *Store {
	return w.balls
}

// Frame returns the number of simulated (non-skipped) frames.
func (w *World) Frame() uint64 {
	return w.frame
}

// Elapsed returns simulated seconds.
func (w *World) Elapsed() float64 {
	return w.clock.Elapsed
}

// Snapshot copies positions and orientations for rendering.
func (w *World) Snapshot() []BallSnapshot {
	out := make([]BallSnapshot, w.balls.Len())
	for i := range out {
		b := w.balls.At(i)
		q := b.Orientation
		out[i] = BallSnapshot{
			ID:       b.ID,
			X:        b.Position[0],
			Y:        b.Position[1],
			Z:        b.Position[2],
			Rotation: [4]float64{q.W, q.V[0], q.V[1], q.V[2]},
			Matrix:   q.Mat4(),
		}
	}
	return out
}

// Speeds returns each ball's speed, indexed by ID.
func (w *World) Speeds() []float64 {
	out := make([]float64, w.balls.Len())
	for i := range out {
		out[i] = w.balls.At(i).Speed()
	}
	return out
}

// KineticEnergy returns the total translational kinetic energy.
func (w *World) KineticEnergy() float64 {
	total := 0.0
	for i := 0; i < w.balls.Len(); i++ {
		b := w.balls.At(i)
		total += 0.5 * b.Mass * b.Velocity.Dot(b.Velocity)
	}
	return total
}

// AllStopped reports whether every ball moves slower than threshold.
func (w *World) AllStopped(threshold float64) bool {
	for i := 0; i < w.balls.Len(); i++ {
		if w.balls.At(i).Speed() >= threshold {
			return false
		}
	}
	return true
}

// Overlaps counts pairs currently interpenetrating.
func (w *World) Overlaps() int {
	n := 0
	for i := 0; i < w.balls.Len(); i++ {
		for j := i + 1; j < w.balls.Len(); j++ {
			if overlapping(w.balls.At(i), w.balls.At(j)) {
				n++
			}
		}
	}
	return n
}

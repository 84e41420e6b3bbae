package physics

import "github.com/go-gl/mathgl/mgl64"

// Ball is the kinematic state of one sphere on the table.
type Ball struct {
	ID          int        `json:"id"`
	Position    mgl64.Vec3 `json:"position"`
	Velocity    mgl64.Vec3 `json:"velocity"`
	Radius      float64    `json:"radius"`
	Mass        float64    `json:"mass"`
	Orientation mgl64.Quat `json:"orientation"` // visual only
}

// Speed returns the magnitude of the ball's velocity.
func (b *Ball) Speed() float64 {
	return b.Velocity.Len()
}

// Store is a fixed-size, index-addressed collection of balls. A ball's index is
// its ID. Not safe for concurrent use.
type Store struct {
	balls []Ball
}

// NewStore takes ownership of balls and renumbers them by index.
func NewStore(balls []Ball) *Store {
	for i := range balls {
		balls[i].ID = i
	}
	return &Store{balls: balls}
}

// Len returns the number of balls.
func (s *Store) Len() int {
	return len(s.balls)
}

// At returns a pointer to ball i for in-place mutation.
func (s *Store) At(i int) *Ball {
	return &s.balls[i]
}

// Balls exposes the backing slice. Its length never changes.
func (s *Store) Balls() []Ball {
	return s.balls
}

// Clone returns a deep copy of the store.
func (s *Store) Clone() *Store {
	cp := make([]Ball, len(s.balls))
	copy(cp, s.balls)
	return &Store{balls: cp}
}

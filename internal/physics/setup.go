package physics

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrInvalidParams   = errors.New("invalid simulation parameters")
	ErrPlacementFailed = errors.New("could not place balls without overlap")
)

// Params describes the initial ball set and the table it sits on.
type Params struct {
	BallCount       int     `json:"ball_count" yaml:"ball_count"`
	Radius          float64 `json:"radius" yaml:"radius"`
	Mass            float64 `json:"mass" yaml:"mass"`
	TableHalfWidth  float64 `json:"table_half_width" yaml:"table_half_width"`
	TableHalfHeight float64 `json:"table_half_height" yaml:"table_half_height"`
	VelocityRange   float64 `json:"velocity_range" yaml:"velocity_range"` // initial |v.x|, |v.y| upper bound
}

// Bounds returns the legal region for ball centers on this table.
func (p Params) Bounds() Bounds {
	return NewBounds(p.TableHalfWidth, p.TableHalfHeight, p.Radius)
}

// Validate checks the parameters once, before Initialize. Step never re-validates.
func (p Params) Validate() error {
	if p.BallCount < 1 {
		return fmt.Errorf("%w: ball count must be positive, got %d", ErrInvalidParams, p.BallCount)
	}
	if p.Radius <= 0 {
		return fmt.Errorf("%w: radius must be positive, got %g", ErrInvalidParams, p.Radius)
	}
	if p.Mass <= 0 {
		return fmt.Errorf("%w: mass must be positive, got %g", ErrInvalidParams, p.Mass)
	}
	if p.TableHalfWidth <= p.Radius || p.TableHalfHeight <= p.Radius {
		return fmt.Errorf("%w: table %gx%g too small for radius %g", ErrInvalidParams,
			p.TableHalfWidth, p.TableHalfHeight, p.Radius)
	}
	if p.VelocityRange < 0 {
		return fmt.Errorf("%w: velocity range must not be negative, got %g", ErrInvalidParams, p.VelocityRange)
	}
	return nil
}

// Rand is the random source used for placement. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
}

// Initialize builds the fixed ball set. Each center is drawn uniformly inside
// the table bounds and redrawn while it lies within two radii of an already
// placed ball. Velocities are uniform in [-VelocityRange, VelocityRange] on x
// and y, zero on z. All balls rest on the plane z = Radius.
func Initialize(p Params, rng Rand) (*Store, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	bounds := p.Bounds()
	minDist := 2 * p.Radius
	balls := make([]Ball, 0, p.BallCount)

	for i := 0; i < p.BallCount; i++ {
		placed := false
		for attempt := 0; attempt < maxPlacementAttempts; attempt++ {
			candidate := mgl64.Vec3{
				uniform(rng, bounds.HalfWidth),
				uniform(rng, bounds.HalfHeight),
				p.Radius,
			}
			if !overlapsAny(candidate, balls, minDist) {
				balls = append(balls, Ball{
					ID:       i,
					Position: candidate,
					Velocity: mgl64.Vec3{
						uniform(rng, p.VelocityRange),
						uniform(rng, p.VelocityRange),
						0,
					},
					Radius:      p.Radius,
					Mass:        p.Mass,
					Orientation: mgl64.QuatIdent(),
				})
				placed = true
				break
			}
		}
		if !placed {
			return nil, fmt.Errorf("%w: ball %d of %d after %d attempts", ErrPlacementFailed,
				i, p.BallCount, maxPlacementAttempts)
		}
	}

	return NewStore(balls), nil
}

// uniform returns a value in [-limit, limit].
func uniform(rng Rand, limit float64) float64 {
	return (rng.Float64()*2 - 1) * limit
}

func overlapsAny(pos mgl64.Vec3, placed []Ball, minDist float64) bool {
	for i := range placed {
		if pos.Sub(placed[i].Position).Len() < minDist {
			return true
		}
	}
	return false
}

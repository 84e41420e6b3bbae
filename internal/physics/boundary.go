package physics

import "math"

// Bounds is the legal rectangle for ball centers: the table half-extents less
// one ball radius.
type Bounds struct {
	HalfWidth  float64 `json:"half_width"`
	HalfHeight float64 `json:"half_height"`
}

// NewBounds derives center bounds from the table's half-extents.
func NewBounds(tableHalfWidth, tableHalfHeight, radius float64) Bounds {
	return Bounds{
		HalfWidth:  tableHalfWidth - radius,
		HalfHeight: tableHalfHeight - radius,
	}
}

// Contains reports whether pos lies inside the bounds, with tolerance tol.
func (bd Bounds) Contains(x, y, tol float64) bool {
	return math.Abs(x) <= bd.HalfWidth+tol && math.Abs(y) <= bd.HalfHeight+tol
}

// Reflect turns ball b back toward the table when its center is past an edge.
// Each axis is handled on its own: the offending velocity component is forced
// inward and the whole velocity is scaled by roll. A corner hit therefore
// scales twice. With clamp set the center is also moved back onto the edge.
// It returns how many axes fired.
func Reflect(b *Ball, bd Bounds, roll float64, clamp bool) int {
	hits := 0

	switch {
	case b.Position[0] > bd.HalfWidth:
		b.Velocity[0] = -math.Abs(b.Velocity[0])
		b.Velocity = b.Velocity.Mul(roll)
		if clamp {
			b.Position[0] = bd.HalfWidth
		}
		hits++
	case b.Position[0] < -bd.HalfWidth:
		b.Velocity[0] = math.Abs(b.Velocity[0])
		b.Velocity = b.Velocity.Mul(roll)
		if clamp {
			b.Position[0] = -bd.HalfWidth
		}
		hits++
	}

	switch {
	case b.Position[1] > bd.HalfHeight:
		b.Velocity[1] = -math.Abs(b.Velocity[1])
		b.Velocity = b.Velocity.Mul(roll)
		if clamp {
			b.Position[1] = bd.HalfHeight
		}
		hits++
	case b.Position[1] < -bd.HalfHeight:
		b.Velocity[1] = math.Abs(b.Velocity[1])
		b.Velocity = b.Velocity.Mul(roll)
		if clamp {
			b.Position[1] = -bd.HalfHeight
		}
		hits++
	}

	return hits
}

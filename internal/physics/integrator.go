package physics

import "github.com/go-gl/mathgl/mgl64"

var tableNormal = mgl64.Vec3{0, 0, 1}

// Advance computes where ball b ends up after dt seconds at velocity v, and the
// rotation it picks up on the way when rolling without slipping. The ball stays
// on its resting plane. For a zero velocity the rotation is undefined and ok is
// false; the caller keeps the current orientation.
func Advance(b *Ball, v mgl64.Vec3, dt float64) (pos mgl64.Vec3, delta mgl64.Quat, ok bool) {
	pos = b.Position.Add(v.Mul(dt))
	pos[2] = b.Position[2]

	axis := tableNormal.Cross(v)
	axisLen := axis.Len()
	speed := v.Len()
	if axisLen < normalEpsilon || speed == 0 || b.Radius <= 0 {
		return pos, mgl64.QuatIdent(), false
	}

	omega := speed / b.Radius
	return pos, mgl64.QuatRotate(omega*dt, axis.Mul(1/axisLen)), true
}

// integrate moves ball b by one time step and composes its orientation.
func integrate(b *Ball, dt float64) {
	pos, delta, ok := Advance(b, b.Velocity, dt)
	b.Position = pos
	if ok {
		b.Orientation = delta.Mul(b.Orientation).Normalize()
	}
}

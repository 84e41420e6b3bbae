package physics

// ResolvePair applies a one-dimensional elastic collision along the line of
// centers of a and b when they overlap. Tangential velocity is untouched and
// positions are not corrected. It reports whether an impulse was exchanged and
// the normal-direction closing speed. Coincident centers are skipped.
func ResolvePair(a, b *Ball) (resolved bool, impact float64) {
	d := b.Position.Sub(a.Position)
	dist := d.Len()
	if dist >= a.Radius+b.Radius {
		return false, 0
	}
	if dist < normalEpsilon {
		return false, 0
	}

	n := d.Mul(1 / dist)
	ai := a.Velocity.Dot(n)
	aj := b.Velocity.Dot(n)
	p := 2 * (ai - aj) / (a.Mass + b.Mass)

	a.Velocity = a.Velocity.Sub(n.Mul(p * b.Mass))
	b.Velocity = b.Velocity.Add(n.Mul(p * a.Mass))

	return true, ai - aj
}

// separate pushes an overlapping pair apart along the line of centers so they
// just touch, splitting the correction by inverse mass.
func separate(a, b *Ball) {
	d := b.Position.Sub(a.Position)
	dist := d.Len()
	overlap := a.Radius + b.Radius - dist
	if overlap <= 0 || dist < normalEpsilon {
		return
	}
	n := d.Mul(1 / dist)
	invA, invB := 1/a.Mass, 1/b.Mass
	total := invA + invB

	a.Position = a.Position.Sub(n.Mul(overlap * invA / total))
	b.Position = b.Position.Add(n.Mul(overlap * invB / total))
}

// resolveFor checks ball i against every higher-indexed ball, so each unordered
// pair is visited once per frame. Velocities written here are seen by later
// pairs in the same frame.
func resolveFor(s *Store, i int, opts Options, events []Event) []Event {
	a := s.At(i)
	for j := i + 1; j < s.Len(); j++ {
		b := s.At(j)
		resolved, impact := ResolvePair(a, b)
		if !resolved {
			continue
		}
		if opts.SeparateOverlaps {
			separate(a, b)
		}
		events = append(events, Event{
			Type:     EventBall,
			BallID:   a.ID,
			TargetID: b.ID,
			Speed:    impact,
		})
	}
	return events
}

// ResolvePairwise runs the resolver over every unordered pair in index order.
// It returns the number of pairs that exchanged an impulse.
func ResolvePairwise(s *Store) int {
	count := 0
	for i := 0; i < s.Len(); i++ {
		for j := i + 1; j < s.Len(); j++ {
			if ok, _ := ResolvePair(s.At(i), s.At(j)); ok {
				count++
			}
		}
	}
	return count
}

// overlapping reports whether two centers are closer than the sum of radii.
func overlapping(a, b *Ball) bool {
	return a.Position.Sub(b.Position).Len() < a.Radius+b.Radius
}

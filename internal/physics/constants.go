package physics

// Default physics constants. Units are metres, kilograms and seconds.
const (
	DefaultRollFriction  = 0.8  // fraction of speed kept after a cushion hit or a friction tick
	DefaultMaxFrameDelta = 0.15 // frames longer than this are not simulated
	DefaultBoostFactor   = 1.5

	// Centers closer than this are treated as coincident.
	normalEpsilon = 1e-12

	// Rejection sampling gives up after this many candidates per ball.
	maxPlacementAttempts = 10000

	// Accumulated frame time within this of a whole second counts as reaching it.
	clockTolerance = 1e-9
)

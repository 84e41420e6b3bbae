// Package telemetry summarizes ball motion for logs, the stats endpoint and
// headless run output.
package telemetry

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/playpool/billiards/internal/physics"
)

// Stats is a point-in-time summary of a world.
type Stats struct {
	Frame         uint64  `json:"frame" csv:"frame"`
	SimSeconds    float64 `json:"sim_seconds" csv:"sim_seconds"`
	Balls         int     `json:"balls" csv:"balls"`
	MeanSpeed     float64 `json:"mean_speed" csv:"mean_speed"`
	StdDevSpeed   float64 `json:"stddev_speed" csv:"stddev_speed"`
	MaxSpeed      float64 `json:"max_speed" csv:"max_speed"`
	KineticEnergy float64 `json:"kinetic_energy" csv:"kinetic_energy"`
	Overlaps      int     `json:"overlaps" csv:"overlaps"`
}

// Collect computes Stats for w.
func Collect(w *physics.World) Stats {
	speeds := w.Speeds()
	s := Stats{
		Frame:         w.Frame(),
		SimSeconds:    w.Elapsed(),
		Balls:         len(speeds),
		KineticEnergy: w.KineticEnergy(),
		Overlaps:      w.Overlaps(),
	}
	if len(speeds) == 0 {
		return s
	}

	s.MeanSpeed, s.StdDevSpeed = stat.MeanStdDev(speeds, nil)
	if len(speeds) == 1 {
		s.StdDevSpeed = 0
	}
	s.MaxSpeed = floats.Max(speeds)
	return s
}

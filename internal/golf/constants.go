package golf

import "math"

// Physics defaults for the flight model. Lengths are meters, time is seconds.
const (
	Gravity        = 9.81
	DragCoeff      = 0.0048 // quadratic drag per unit mass, 1/m
	LiftCoeff      = 0.0045 // Magnus lift per unit spin, 1/m
	SpinDecay      = 0.05   // fraction of backspin lost per second
	TimeStep       = 0.005
	PowerScale     = 0.1 // club power units -> launch speed in m/s
	MaxFlightTime  = 30.0
	RollResistance = 8.0

	// Loft bounds used by the calibrator. The simulator itself accepts the
	// open interval (0, pi/2).
	MinLoft = 1.0e-7
	MaxLoft = math.Pi/2 - 1.0e-3

	metersPerYard = 0.9144
)

// ToMeters converts yards to meters.
func ToMeters(yards float64) float64 {
	return yards * metersPerYard
}

// ToYards converts meters to yards.
func ToYards(meters float64) float64 {
	return meters / metersPerYard
}

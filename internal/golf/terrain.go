package golf

import (
	"fmt"
	"strings"
)

// Friction and bounce used when no landing surface is known.
const (
	SimulatedFriction = 5.0e-2
	SimulatedBounce   = 0.3
)

// TerrainType describes how a surface treats a landing ball. LieRate is the
// chance of a clean lie; otherwise the roll is scaled by up to ±LieRange.
type TerrainType struct {
	Name     string  `json:"name"`
	Friction float64 `json:"friction"`
	Bounce   float64 `json:"bounce"`
	LieRate  float64 `json:"lie_rate"`
	LieRange float64 `json:"lie_range"`
	Hazard   bool    `json:"hazard"`
}

var (
	Tee     = TerrainType{Name: "Tee", Friction: 5.0e-2, Bounce: 0.3, LieRate: 0.99, LieRange: 0.02}
	Green   = TerrainType{Name: "Green", Friction: 5.0e-2, Bounce: 0.3, LieRate: 0.99, LieRange: 0.02}
	Fairway = TerrainType{Name: "Fairway", Friction: 5.0e-2, Bounce: 0.3, LieRate: 0.99, LieRange: 0.02}
	Rough   = TerrainType{Name: "Rough", Friction: 3.0e-2, Bounce: 0.3, LieRate: 0.80, LieRange: 0.16}
	Bunker  = TerrainType{Name: "Bunker", Friction: 1.0e-2, Bounce: 0.1, LieRate: 0.70, LieRange: 0.20}
	Water   = TerrainType{Name: "Water", Friction: 1.0e-9, Bounce: 0.0, LieRate: 0.20, LieRange: 0.10, Hazard: true}

	// Simulated is the roll-out surface for shots that do not name one,
	// including every calibration probe. Its lie is always clean.
	Simulated = TerrainType{Name: "Simulated", Friction: SimulatedFriction, Bounce: SimulatedBounce, LieRate: 1}
)

// Terrains lists every surface category.
func Terrains() []TerrainType {
	return []TerrainType{Tee, Green, Fairway, Rough, Bunker, Water}
}

// TerrainByName resolves a course surface by the first letter of its object
// name ("Green_03", "bunker", ...).
func TerrainByName(name string) (TerrainType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return TerrainType{}, fmt.Errorf("%w: empty terrain name", ErrInvalidArgument)
	}
	switch strings.ToUpper(name[:1]) {
	case "B":
		return Bunker, nil
	case "F":
		return Fairway, nil
	case "G":
		return Green, nil
	case "R":
		return Rough, nil
	case "T":
		return Tee, nil
	case "W":
		return Water, nil
	}
	return TerrainType{}, fmt.Errorf("%w: cannot get terrain type for name %q", ErrInvalidArgument, name)
}

// OnGreen reports whether the named surface is a putting green.
func OnGreen(surface string) bool {
	surface = strings.TrimSpace(surface)
	return surface != "" && strings.ToUpper(surface[:1]) == "G"
}

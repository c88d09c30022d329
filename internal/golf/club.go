package golf

// ClubType identifies a club slot. Clubs differ only in their parameters.
type ClubType string

const (
	OneWood       ClubType = "1W"
	ThreeWood     ClubType = "3W"
	FiveWood      ClubType = "5W"
	ThreeIron     ClubType = "3I"
	FourIron      ClubType = "4I"
	FiveIron      ClubType = "5I"
	SixIron       ClubType = "6I"
	SevenIron     ClubType = "7I"
	EightIron     ClubType = "8I"
	NineIron      ClubType = "9I"
	PitchingWedge ClubType = "PW"
	SandWedge     ClubType = "SW"
	LobWedge      ClubType = "LW"
	Putter        ClubType = "PT"
)

var clubNames = map[ClubType]string{
	OneWood:       "Driver",
	ThreeWood:     "3 Wood",
	FiveWood:      "5 Wood",
	ThreeIron:     "3 Iron",
	FourIron:      "4 Iron",
	FiveIron:      "5 Iron",
	SixIron:       "6 Iron",
	SevenIron:     "7 Iron",
	EightIron:     "8 Iron",
	NineIron:      "9 Iron",
	PitchingWedge: "Pitching Wedge",
	SandWedge:     "Sand Wedge",
	LobWedge:      "Lob Wedge",
	Putter:        "Putter",
}

// Name is the display name of the club type.
func (t ClubType) Name() string {
	if n, ok := clubNames[t]; ok {
		return n
	}
	return string(t)
}

// Club is one calibrated entry of a bag. Distance is the simulated total
// distance in meters and is filled in by Measure or Calibrate.
type Club struct {
	Type     ClubType `json:"type"`
	Name     string   `json:"name"`
	Power    float64  `json:"power"`
	Loft     float64  `json:"loft"`
	Distance float64  `json:"distance"`
}

func NewClub(t ClubType, power, loft float64) Club {
	return Club{Type: t, Name: t.Name(), Power: power, Loft: loft}
}

// DefaultClubs is the canonical 14-club table, driver first and putter last.
// Power and loft are calibrated against DefaultTargets under
// DefaultEnvironment.
func DefaultClubs() []Club {
	return []Club{
		// type, power, shot loft (radians)
		NewClub(OneWood, 728.0, 0.125),
		NewClub(ThreeWood, 635.1, 0.201),
		NewClub(FiveWood, 600.3, 0.247),
		NewClub(ThreeIron, 553.4, 0.267),
		NewClub(FourIron, 532.4, 0.305),
		NewClub(FiveIron, 513.1, 0.361),
		NewClub(SixIron, 488.1, 0.390),
		NewClub(SevenIron, 466.1, 0.449),
		NewClub(EightIron, 441.1, 0.486),
		NewClub(NineIron, 417.0, 0.524),
		NewClub(PitchingWedge, 393.4, 0.561),
		NewClub(SandWedge, 367.2, 0.648),
		NewClub(LobWedge, 335.0, 0.750),
		NewClub(Putter, 84.4, 0.053),
	}
}

// Target is the distance and apex height a club slot should produce.
type Target struct {
	Distance float64 `json:"distance"`
	Height   float64 `json:"height"`
}

var (
	targetDistancesYards = [...]float64{275, 243, 230, 212, 203, 194, 183, 172, 160, 148, 136, 120, 100, 10}
	targetHeightsYards   = [...]float64{32, 30, 31, 27, 28, 31, 30, 32, 31, 30, 29, 30, 30, 0.001}
)

// DefaultTargets returns the per-slot calibration targets in meters.
func DefaultTargets() []Target {
	targets := make([]Target, len(targetDistancesYards))
	for i := range targets {
		targets[i] = Target{
			Distance: ToMeters(targetDistancesYards[i]),
			Height:   ToMeters(targetHeightsYards[i]),
		}
	}
	return targets
}

// Measure simulates every club under env and returns copies with Distance set.
func Measure(clubs []Club, env Environment) ([]Club, error) {
	out := make([]Club, len(clubs))
	for i, c := range clubs {
		tr, err := Simulate(c.Power, c.Loft, env)
		if err != nil {
			return nil, err
		}
		c.Distance = tr.Distance
		out[i] = c
	}
	return out, nil
}

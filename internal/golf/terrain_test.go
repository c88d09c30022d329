package golf

import (
	"errors"
	"math"
	"testing"
)

func TestTerrainByName(t *testing.T) {
	cases := map[string]string{
		"Bunker_2":  "Bunker",
		"Fairway":   "Fairway",
		"Green_18":  "Green",
		"rough":     "Rough",
		"Tee box":   "Tee",
		"Water (1)": "Water",
	}
	for in, want := range cases {
		got, err := TerrainByName(in)
		if err != nil {
			t.Fatalf("TerrainByName(%q): %v", in, err)
		}
		if got.Name != want {
			t.Errorf("TerrainByName(%q) = %s, want %s", in, got.Name, want)
		}
	}
	for _, bad := range []string{"", "  ", "Cart path"} {
		if _, err := TerrainByName(bad); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("TerrainByName(%q): expected ErrInvalidArgument, got %v", bad, err)
		}
	}
}

func TestOnGreen(t *testing.T) {
	if !OnGreen("Green_01") || !OnGreen("green") {
		t.Errorf("green surfaces not detected")
	}
	if OnGreen("Fairway") || OnGreen("") {
		t.Errorf("non-green surface reported as green")
	}
}

func TestUnitConversions(t *testing.T) {
	if got := ToMeters(100); math.Abs(got-91.44) > 1e-9 {
		t.Errorf("ToMeters(100) = %v", got)
	}
	if got := ToYards(ToMeters(275)); math.Abs(got-275) > 1e-9 {
		t.Errorf("round trip = %v", got)
	}
	if got := MapDistance(Vec3{X: 0, Y: 10, Z: 0}, Vec3{X: 3, Y: -50, Z: 4}); got != 5 {
		t.Errorf("MapDistance ignores height, got %v", got)
	}
}

func TestDefaultEnvironmentRollsOnSimulatedSurface(t *testing.T) {
	env := DefaultEnvironment()
	if env.Terrain == nil {
		t.Fatal("default environment has no roll-out surface")
	}
	if env.Terrain.Friction != SimulatedFriction || env.Terrain.Bounce != SimulatedBounce {
		t.Errorf("roll-out surface %+v does not use the simulated constants", *env.Terrain)
	}
	for _, tt := range Terrains() {
		if tt.Name == Simulated.Name {
			t.Errorf("simulated surface must not be a course terrain")
		}
	}
}

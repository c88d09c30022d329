package golf

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"
)

func TestSimulateRejectsInvalidShots(t *testing.T) {
	env := DefaultEnvironment()
	cases := []struct {
		name        string
		power, loft float64
	}{
		{"zero power", 0, 0.3},
		{"negative power", -10, 0.3},
		{"nan power", math.NaN(), 0.3},
		{"infinite power", math.Inf(1), 0.3},
		{"zero loft", 400, 0},
		{"negative loft", 400, -0.1},
		{"vertical loft", 400, math.Pi / 2},
		{"loft past vertical", 400, 2},
	}
	for _, tc := range cases {
		if _, err := Simulate(tc.power, tc.loft, env); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%s: expected ErrInvalidArgument, got %v", tc.name, err)
		}
	}
}

func TestSimulateRejectsInvalidEnvironment(t *testing.T) {
	env := DefaultEnvironment()
	env.Gravity = 0
	if _, err := Simulate(400, 0.3, env); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("zero gravity: expected ErrInvalidArgument, got %v", err)
	}

	env = DefaultEnvironment()
	env.TimeStep = -0.01
	if _, err := Simulate(400, 0.3, env); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("negative time step: expected ErrInvalidArgument, got %v", err)
	}
}

func TestSimulateRejectsNonFiniteEnvironment(t *testing.T) {
	cases := map[string]func(*Environment){
		"nan wind":         func(e *Environment) { e.Wind = math.NaN() },
		"infinite drag":    func(e *Environment) { e.Drag = math.Inf(1) },
		"too many steps":   func(e *Environment) { e.MaxFlightTime = 1e9 },
		"nan terrain":      func(e *Environment) { e.Terrain = &TerrainType{Name: "x", Friction: math.NaN()} },
		"infinite gravity": func(e *Environment) { e.Gravity = math.Inf(1) },
	}
	for name, mutate := range cases {
		env := DefaultEnvironment()
		mutate(&env)
		if _, err := Simulate(400, 0.3, env); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%s: expected ErrInvalidArgument, got %v", name, err)
		}
	}
}

func TestSimulateRejectsOverflowingShots(t *testing.T) {
	headwind := DefaultEnvironment()
	headwind.Wind = -1e200
	cases := []struct {
		name  string
		power float64
		env   Environment
	}{
		{"huge power", 1e200, DefaultEnvironment()},
		{"huge power carry only", 1e200, DefaultEnvironment().CarryOnly()},
		{"huge headwind", 100, headwind},
	}
	for _, tc := range cases {
		tr, err := Simulate(tc.power, 0.3, tc.env)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%s: expected ErrInvalidArgument, got %v with %+v", tc.name, err, tr)
		}
		if _, err := SimulateShot(tc.power, 0.3, tc.env, Rough, rand.New(rand.NewSource(1)), 10); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%s: SimulateShot expected ErrInvalidArgument, got %v", tc.name, err)
		}
	}
}

func TestSimulateIsDeterministic(t *testing.T) {
	env := DefaultEnvironment()
	first, err := Simulate(466.1, 0.449, env)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Simulate(466.1, 0.449, env)
		if err != nil {
			t.Fatalf("Simulate: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %+v vs %+v", i, first, again)
		}
	}
}

func TestDistanceNonDecreasingInPower(t *testing.T) {
	env := DefaultEnvironment()
	ranges := []struct {
		loft   float64
		lo, hi float64
	}{
		{0.125, 300, 900},
		{0.486, 200, 600},
		{0.750, 150, 500},
	}
	for _, r := range ranges {
		prev := -1.0
		for p := r.lo; p <= r.hi; p += 10 {
			tr, err := Simulate(p, r.loft, env)
			if err != nil {
				t.Fatalf("Simulate(%v, %v): %v", p, r.loft, err)
			}
			if tr.Distance < prev {
				t.Errorf("loft %.3f: distance dropped from %.3f to %.3f at power %.0f", r.loft, prev, tr.Distance, p)
			}
			prev = tr.Distance
		}
	}
}

func TestDriverFlight(t *testing.T) {
	tr, err := Simulate(728.0, 0.125, DefaultEnvironment())
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if !tr.Landed {
		t.Fatalf("driver never landed")
	}
	if tr.Apex <= 0 || tr.Apex >= tr.Carry {
		t.Errorf("unexpected apex %.2f for carry %.2f", tr.Apex, tr.Carry)
	}
	if tr.Roll <= 0 {
		t.Errorf("expected roll-out on fairway, got %.2f", tr.Roll)
	}
	if math.Abs(tr.Distance-(tr.Carry+tr.Roll)) > 1e-9 {
		t.Errorf("distance %.4f != carry %.4f + roll %.4f", tr.Distance, tr.Carry, tr.Roll)
	}
	if tr.LandingAngle <= 0 || tr.LandingAngle >= math.Pi/2 {
		t.Errorf("landing angle out of range: %.3f", tr.LandingAngle)
	}
}

func TestCarryOnlySkipsRoll(t *testing.T) {
	tr, err := Simulate(466.1, 0.449, DefaultEnvironment().CarryOnly())
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if tr.Roll != 0 || tr.Distance != tr.Carry {
		t.Errorf("expected carry only, got carry=%.3f roll=%.3f distance=%.3f", tr.Carry, tr.Roll, tr.Distance)
	}
}

func TestPuttStaysOnTheGround(t *testing.T) {
	tr, err := Simulate(84.4, MinLoft, DefaultEnvironment().WithTerrain(Green))
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if tr.Carry > 0.01 {
		t.Errorf("putt carried %.4f m", tr.Carry)
	}
	if tr.Apex > 1e-3 {
		t.Errorf("putt apex %.5f m", tr.Apex)
	}
	if tr.Roll <= 0 {
		t.Errorf("putt did not roll")
	}
}

func TestWindAlongTargetLine(t *testing.T) {
	calm := DefaultEnvironment().CarryOnly()
	tail := calm
	tail.Wind = 5
	head := calm
	head.Wind = -5

	c, _ := Simulate(728.0, 0.125, calm)
	tw, _ := Simulate(728.0, 0.125, tail)
	hw, _ := Simulate(728.0, 0.125, head)
	if !(hw.Carry < c.Carry && c.Carry < tw.Carry) {
		t.Errorf("expected headwind < calm < tailwind, got %.2f %.2f %.2f", hw.Carry, c.Carry, tw.Carry)
	}
}

func TestFlightTimeCap(t *testing.T) {
	env := DefaultEnvironment()
	env.MaxFlightTime = 0.5
	tr, err := Simulate(728.0, 0.125, env)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if tr.Landed {
		t.Errorf("expected the ball to still be airborne")
	}
	if tr.Roll != 0 {
		t.Errorf("airborne ball should not roll, got %.3f", tr.Roll)
	}
}

func TestSimulatePathSamples(t *testing.T) {
	tr, err := SimulatePath(466.1, 0.449, DefaultEnvironment(), 20)
	if err != nil {
		t.Fatalf("SimulatePath: %v", err)
	}
	if len(tr.Path) < 3 {
		t.Fatalf("expected several samples, got %d", len(tr.Path))
	}
	if !tr.Path[0].IsZero() {
		t.Errorf("path should start at the tee, got %+v", tr.Path[0])
	}
	last := tr.Path[len(tr.Path)-1]
	if math.Abs(last.X-tr.Distance) > 1e-9 || last.Y != 0 {
		t.Errorf("path should end at rest point %.3f, got %+v", tr.Distance, last)
	}
	for _, p := range tr.Path {
		if p.Y > tr.Apex+1e-9 {
			t.Errorf("sample %+v above apex %.3f", p, tr.Apex)
		}
	}

	plain, _ := Simulate(466.1, 0.449, DefaultEnvironment())
	if plain.Distance != tr.Distance || plain.Path != nil {
		t.Errorf("sampling changed the result: %.4f vs %.4f", plain.Distance, tr.Distance)
	}
}

func TestShotIntoWaterStops(t *testing.T) {
	tr, err := SimulateShot(466.1, 0.449, DefaultEnvironment(), Water, rand.New(rand.NewSource(1)), 0)
	if err != nil {
		t.Fatalf("SimulateShot: %v", err)
	}
	if tr.Roll != 0 || tr.Distance != tr.Carry {
		t.Errorf("ball in water rolled %.3f", tr.Roll)
	}
	if tr.Surface != "Water" {
		t.Errorf("surface = %q", tr.Surface)
	}
}

func TestShotLieIsSeeded(t *testing.T) {
	env := DefaultEnvironment()
	for seed := int64(0); seed < 20; seed++ {
		a, _ := SimulateShot(441.1, 0.486, env, Bunker, rand.New(rand.NewSource(seed)), 0)
		b, _ := SimulateShot(441.1, 0.486, env, Bunker, rand.New(rand.NewSource(seed)), 0)
		if a.Distance != b.Distance || a.Lie != b.Lie {
			t.Fatalf("seed %d not reproducible: %+v vs %+v", seed, a, b)
		}
		if a.Lie < 1-Bunker.LieRange || a.Lie > 1+Bunker.LieRange {
			t.Errorf("seed %d: lie %.3f outside range", seed, a.Lie)
		}
	}

	clean, _ := SimulateShot(441.1, 0.486, env, Bunker, nil, 0)
	if clean.Lie != 1 {
		t.Errorf("without rng the lie should be clean, got %.3f", clean.Lie)
	}
}

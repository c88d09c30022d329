package golf

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ErrInvalidArgument is returned for inputs the kernel refuses to work with.
var ErrInvalidArgument = errors.New("invalid argument")

// Environment carries the constants a shot is simulated under.
type Environment struct {
	Gravity        float64 `json:"gravity"`
	Drag           float64 `json:"drag"`
	Lift           float64 `json:"lift"`
	SpinDecay      float64 `json:"spin_decay"`
	TimeStep       float64 `json:"time_step"`
	PowerScale     float64 `json:"power_scale"`
	MaxFlightTime  float64 `json:"max_flight_time"`
	RollResistance float64 `json:"roll_resistance"`
	// Wind along the target line in m/s; positive is downwind.
	Wind float64 `json:"wind"`
	// Terrain the ball rolls out on after landing. Nil reports carry only.
	Terrain *TerrainType `json:"terrain,omitempty"`
}

// DefaultEnvironment rolls out on the simulated surface with no wind.
func DefaultEnvironment() Environment {
	surface := Simulated
	return Environment{
		Gravity:        Gravity,
		Drag:           DragCoeff,
		Lift:           LiftCoeff,
		SpinDecay:      SpinDecay,
		TimeStep:       TimeStep,
		PowerScale:     PowerScale,
		MaxFlightTime:  MaxFlightTime,
		RollResistance: RollResistance,
		Terrain:        &surface,
	}
}

// WithTerrain returns a copy of e rolling out on t.
func (e Environment) WithTerrain(t TerrainType) Environment {
	e.Terrain = &t
	return e
}

// CarryOnly returns a copy of e without roll-out.
func (e Environment) CarryOnly() Environment {
	e.Terrain = nil
	return e
}

// maxFlightSteps bounds the integration loop of a single shot.
const maxFlightSteps = 1_000_000

func (e Environment) Validate() error {
	if !finite(e.Gravity, e.Drag, e.Lift, e.SpinDecay, e.TimeStep, e.PowerScale, e.MaxFlightTime, e.RollResistance, e.Wind) {
		return fmt.Errorf("%w: environment values must be finite", ErrInvalidArgument)
	}
	switch {
	case e.Gravity <= 0:
		return fmt.Errorf("%w: gravity must be positive, got %v", ErrInvalidArgument, e.Gravity)
	case e.TimeStep <= 0:
		return fmt.Errorf("%w: time step must be positive, got %v", ErrInvalidArgument, e.TimeStep)
	case e.PowerScale <= 0:
		return fmt.Errorf("%w: power scale must be positive, got %v", ErrInvalidArgument, e.PowerScale)
	case e.MaxFlightTime <= 0:
		return fmt.Errorf("%w: max flight time must be positive, got %v", ErrInvalidArgument, e.MaxFlightTime)
	case e.Drag < 0 || e.Lift < 0 || e.SpinDecay < 0 || e.RollResistance < 0:
		return fmt.Errorf("%w: drag, lift, spin decay and roll resistance must not be negative", ErrInvalidArgument)
	case e.MaxFlightTime/e.TimeStep > maxFlightSteps:
		return fmt.Errorf("%w: max flight time %v is more than %d steps of %v", ErrInvalidArgument, e.MaxFlightTime, maxFlightSteps, e.TimeStep)
	}
	if e.Terrain != nil && !finite(e.Terrain.Friction, e.Terrain.Bounce) {
		return fmt.Errorf("%w: terrain %q has non-finite friction or bounce", ErrInvalidArgument, e.Terrain.Name)
	}
	return nil
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Trajectory is the outcome of one simulated shot.
type Trajectory struct {
	Distance     float64 `json:"distance"`
	Carry        float64 `json:"carry"`
	Roll         float64 `json:"roll"`
	Apex         float64 `json:"apex"`
	FlightTime   float64 `json:"flight_time"`
	LandingAngle float64 `json:"landing_angle"`
	LandingSpeed float64 `json:"landing_speed"`
	Landed       bool    `json:"landed"`
	Surface      string  `json:"surface,omitempty"`
	Lie          float64 `json:"lie,omitempty"`
	Path         []Vec2  `json:"path,omitempty"`
}

// Simulate flies a ball struck with the given power and loft (radians) and
// returns where it comes to rest along the target line and how high it got.
func Simulate(power, loft float64, env Environment) (Trajectory, error) {
	return SimulatePath(power, loft, env, 0)
}

// SimulatePath is Simulate that also records every sampleEvery-th position of
// the flight. sampleEvery <= 0 records nothing.
func SimulatePath(power, loft float64, env Environment, sampleEvery int) (Trajectory, error) {
	if err := validateShot(power, loft, env); err != nil {
		return Trajectory{}, err
	}
	tr, vel := fly(power, loft, env, sampleEvery)
	if env.Terrain != nil {
		rollOut(&tr, vel, *env.Terrain, env)
	}
	tr.Distance = tr.Carry + tr.Roll
	if err := checkFinite(tr, power, env); err != nil {
		return Trajectory{}, err
	}
	if sampleEvery > 0 && tr.Roll > 0 {
		tr.Path = append(tr.Path, Vec2{X: tr.Distance})
	}
	return tr, nil
}

// SimulateShot plays a shot onto a known landing surface. With a non-nil rng
// the roll is perturbed according to the surface's lie.
func SimulateShot(power, loft float64, env Environment, surface TerrainType, rng *rand.Rand, sampleEvery int) (Trajectory, error) {
	if err := validateShot(power, loft, env); err != nil {
		return Trajectory{}, err
	}
	tr, vel := fly(power, loft, env, sampleEvery)
	tr.Surface = surface.Name
	tr.Lie = 1
	rollOut(&tr, vel, surface, env)
	if rng != nil && tr.Roll > 0 && rng.Float64() > surface.LieRate {
		tr.Lie = 1 + surface.LieRange*(2*rng.Float64()-1)
		tr.Roll *= tr.Lie
	}
	tr.Distance = tr.Carry + tr.Roll
	if err := checkFinite(tr, power, env); err != nil {
		return Trajectory{}, err
	}
	if sampleEvery > 0 && tr.Roll > 0 {
		tr.Path = append(tr.Path, Vec2{X: tr.Distance})
	}
	return tr, nil
}

// checkFinite rejects shots whose numbers overflowed during integration.
func checkFinite(tr Trajectory, power float64, env Environment) error {
	if finite(tr.Distance, tr.Carry, tr.Roll, tr.Apex, tr.FlightTime, tr.LandingAngle, tr.LandingSpeed) {
		return nil
	}
	return fmt.Errorf("%w: shot with power %v and wind %v leaves the simulated range", ErrInvalidArgument, power, env.Wind)
}

func validateShot(power, loft float64, env Environment) error {
	if !(power > 0) || !finite(power) {
		return fmt.Errorf("%w: power must be positive, got %v", ErrInvalidArgument, power)
	}
	if !(loft > 0 && loft < math.Pi/2) {
		return fmt.Errorf("%w: loft must be in (0, pi/2), got %v", ErrInvalidArgument, loft)
	}
	return env.Validate()
}

// fly integrates the airborne part of the shot with a fixed step and returns
// the trajectory so far plus the velocity at touchdown.
func fly(power, loft float64, env Environment, sampleEvery int) (Trajectory, Vec2) {
	speed := power * env.PowerScale
	vel := NewVec2(speed*math.Cos(loft), speed*math.Sin(loft))
	wind := Vec2{X: env.Wind}
	gravity := Vec2{Y: -env.Gravity}
	dt := env.TimeStep

	var tr Trajectory
	var pos Vec2
	if sampleEvery > 0 {
		tr.Path = append(tr.Path, pos)
	}

	spin := 1.0
	maxSteps := int(math.Ceil(env.MaxFlightTime / dt))
	step := 0
	for ; step < maxSteps; step++ {
		rel := vel.Minus(wind)
		airSpeed := rel.Magnitude()
		accel := rel.Times(-env.Drag * airSpeed).
			Plus(rel.LeftNormal().Times(env.Lift * spin * airSpeed)).
			Plus(gravity)

		nextVel := vel.Plus(accel.Times(dt))
		next := pos.Plus(nextVel.Times(dt))
		if !finite(next.X, next.Y, nextVel.X, nextVel.Y) {
			pos, vel = next, nextVel
			break
		}
		spin *= 1 - env.SpinDecay*dt

		if next.Y <= 0 {
			// Touchdown inside this step: interpolate to ground level.
			f := 0.0
			if pos.Y-next.Y > 0 {
				f = pos.Y / (pos.Y - next.Y)
			}
			pos = pos.Plus(next.Minus(pos).Times(f))
			pos.Y = 0
			vel = nextVel
			tr.FlightTime = (float64(step) + f) * dt
			tr.Landed = true
			break
		}

		pos, vel = next, nextVel
		if pos.Y > tr.Apex {
			tr.Apex = pos.Y
		}
		if sampleEvery > 0 && (step+1)%sampleEvery == 0 {
			tr.Path = append(tr.Path, pos)
		}
	}
	if !tr.Landed {
		tr.FlightTime = float64(step) * dt
	}
	if sampleEvery > 0 {
		tr.Path = append(tr.Path, pos)
	}

	tr.Carry = pos.X
	tr.LandingSpeed = vel.Magnitude()
	if vel.X > 0 {
		tr.LandingAngle = vel.DescentAngle()
	} else {
		tr.LandingAngle = math.Pi / 2
	}
	return tr, vel
}

// rollOut approximates the bounce and roll after touchdown. The steeper the
// descent the more horizontal speed the surface takes away.
func rollOut(tr *Trajectory, vel Vec2, surface TerrainType, env Environment) {
	if !tr.Landed || surface.Hazard || vel.X <= 0 {
		return
	}
	retained := 1 - (1-surface.Bounce)*math.Sin(math.Max(tr.LandingAngle, 0))
	v := vel.X * retained
	decel := surface.Friction * env.Gravity * env.RollResistance
	if v <= 0 || decel <= 0 {
		return
	}
	tr.Roll = v * v / (2 * decel)
}

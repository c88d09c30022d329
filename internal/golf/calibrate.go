package golf

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// DefaultIterations is the simulator budget spent per club.
const DefaultIterations = 1000

// Step sizes below these floors no longer move the search.
const (
	minPowerStep = 1e-9
	minLoftStep  = 1e-12
)

// ShotRequest asks the calibrator to tune one club slot. The club's current
// power and loft are the starting point of the search.
type ShotRequest struct {
	Slot           int     `json:"slot"`
	Club           Club    `json:"club"`
	TargetDistance float64 `json:"target_distance"`
	TargetHeight   float64 `json:"target_height"`
	Budget         int     `json:"budget"`
}

type CalibrateOptions struct {
	// HeightWeight scales the apex error against the distance error. Zero
	// calibrates distance only.
	HeightWeight float64 `json:"height_weight"`
	// DistanceTolerance is the relative distance error counted as converged.
	DistanceTolerance float64 `json:"distance_tolerance"`
	// HeightTolerance is the apex error, relative to max(height, 1m), counted
	// as converged. Ignored when HeightWeight is zero.
	HeightTolerance float64 `json:"height_tolerance"`
	// Trace keeps every probe in the result.
	Trace bool `json:"trace"`
}

func DefaultCalibrateOptions() CalibrateOptions {
	return CalibrateOptions{
		HeightWeight:      0.25,
		DistanceTolerance: 0.001,
		HeightTolerance:   0.01,
	}
}

// Probe is one simulator evaluation made during a search.
type Probe struct {
	Evaluation int     `json:"evaluation"`
	Power      float64 `json:"power"`
	Loft       float64 `json:"loft"`
	Distance   float64 `json:"distance"`
	Height     float64 `json:"height"`
	Error      float64 `json:"error"`
	Accepted   bool    `json:"accepted"`
}

// CalibrationResult is the best point a search found. Converged is false when
// the budget ran out first; the club is still the best seen.
type CalibrationResult struct {
	Slot        int     `json:"slot"`
	Club        Club    `json:"club"`
	Height      float64 `json:"height"`
	Error       float64 `json:"error"`
	Evaluations int     `json:"evaluations"`
	Converged   bool    `json:"converged"`
	Trace       []Probe `json:"trace,omitempty"`
}

// Calibrate searches power and loft so that the simulated shot lands at the
// target distance with the target apex. It spends at most req.Budget
// simulator calls and never fails for lack of convergence.
func Calibrate(req ShotRequest, env Environment, opts CalibrateOptions) (CalibrationResult, error) {
	if err := req.validate(); err != nil {
		return CalibrationResult{}, err
	}
	s := search{req: req, env: env, opts: opts}
	return s.run()
}

func (r ShotRequest) validate() error {
	switch {
	case !(r.TargetDistance > 0):
		return fmt.Errorf("%w: target distance must be positive, got %v", ErrInvalidArgument, r.TargetDistance)
	case r.TargetHeight < 0:
		return fmt.Errorf("%w: target height must not be negative, got %v", ErrInvalidArgument, r.TargetHeight)
	case r.Budget <= 0:
		return fmt.Errorf("%w: iteration budget must be positive, got %d", ErrInvalidArgument, r.Budget)
	}
	return nil
}

type search struct {
	req   ShotRequest
	env   Environment
	opts  CalibrateOptions
	evals int
	trace []Probe
}

type point struct {
	power, loft      float64
	distance, height float64
	err              float64
}

func (s *search) run() (CalibrationResult, error) {
	best, err := s.evaluate(s.req.Club.Power, s.req.Club.Loft)
	if err != nil {
		return CalibrationResult{}, fmt.Errorf("calibrate slot %d: %w", s.req.Slot, err)
	}
	s.record(best, true)

	// Per-axis steps double after a successful move and halve after a
	// round with no improvement along that axis.
	steps := [2]float64{best.power * 0.25, math.Max(best.loft*0.25, 0.01)}
	floors := [2]float64{minPowerStep, minLoftStep}

	for s.evals < s.req.Budget && !s.converged(best) {
		for axis := range steps {
			moved := false
			for _, dir := range [2]float64{1, -1} {
				if s.evals >= s.req.Budget || s.converged(best) {
					break
				}
				power, loft := best.power, best.loft
				if axis == 0 {
					power += dir * steps[0]
				} else {
					loft = clamp(loft+dir*steps[1], MinLoft, MaxLoft)
				}
				if power <= 0 || (power == best.power && loft == best.loft) {
					continue
				}
				p, err := s.evaluate(power, loft)
				if errors.Is(err, ErrInvalidArgument) {
					// Probe left the simulated range.
					continue
				}
				if err != nil {
					return CalibrationResult{}, fmt.Errorf("calibrate slot %d: %w", s.req.Slot, err)
				}
				accepted := p.err < best.err
				s.record(p, accepted)
				if accepted {
					best = p
					moved = true
					break
				}
			}
			if moved {
				steps[axis] *= 2
			} else {
				steps[axis] /= 2
			}
		}
		if steps[0] < floors[0] && steps[1] < floors[1] {
			break
		}
	}

	club := s.req.Club
	club.Power = best.power
	club.Loft = best.loft
	club.Distance = best.distance
	return CalibrationResult{
		Slot:        s.req.Slot,
		Club:        club,
		Height:      best.height,
		Error:       best.err,
		Evaluations: s.evals,
		Converged:   s.converged(best),
		Trace:       s.trace,
	}, nil
}

func (s *search) evaluate(power, loft float64) (point, error) {
	tr, err := Simulate(power, loft, s.env)
	if err != nil {
		return point{}, err
	}
	s.evals++
	p := point{power: power, loft: loft, distance: tr.Distance, height: tr.Apex}
	p.err = s.errorOf(p)
	return p, nil
}

func (s *search) errorOf(p point) float64 {
	ed := (p.distance - s.req.TargetDistance) / s.req.TargetDistance
	eh := (p.height - s.req.TargetHeight) / math.Max(s.req.TargetHeight, 1)
	return ed*ed + s.opts.HeightWeight*eh*eh
}

func (s *search) converged(p point) bool {
	if math.Abs(p.distance-s.req.TargetDistance)/s.req.TargetDistance >= s.opts.DistanceTolerance {
		return false
	}
	if s.opts.HeightWeight == 0 {
		return true
	}
	return math.Abs(p.height-s.req.TargetHeight)/math.Max(s.req.TargetHeight, 1) < s.opts.HeightTolerance
}

func (s *search) record(p point, accepted bool) {
	if !s.opts.Trace {
		return
	}
	s.trace = append(s.trace, Probe{
		Evaluation: s.evals,
		Power:      p.power,
		Loft:       p.loft,
		Distance:   p.distance,
		Height:     p.height,
		Error:      p.err,
		Accepted:   accepted,
	})
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// ReportRow is one line of the calibration report.
type ReportRow struct {
	Slot        int      `json:"slot"`
	Type        ClubType `json:"type"`
	Name        string   `json:"name"`
	Power       float64  `json:"power"`
	Loft        float64  `json:"loft"`
	Distance    float64  `json:"distance"`
	Height      float64  `json:"height"`
	Evaluations int      `json:"evaluations"`
	Converged   bool     `json:"converged"`
	Trace       []Probe  `json:"-"`
}

// ReportSink receives calibration results, one row per club slot.
type ReportSink interface {
	WriteRow(ctx context.Context, row ReportRow) error
	Flush(ctx context.Context) error
}

func NewReportRow(r CalibrationResult) ReportRow {
	return ReportRow{
		Slot:        r.Slot,
		Type:        r.Club.Type,
		Name:        r.Club.Name,
		Power:       r.Club.Power,
		Loft:        r.Club.Loft,
		Distance:    r.Club.Distance,
		Height:      r.Height,
		Evaluations: r.Evaluations,
		Converged:   r.Converged,
		Trace:       r.Trace,
	}
}

// GenerateClubs calibrates every slot of clubs against its target and
// returns the tuned table. Each slot's row goes to sink when one is given.
func GenerateClubs(ctx context.Context, clubs []Club, targets []Target, budget int, env Environment, opts CalibrateOptions, sink ReportSink) ([]Club, []CalibrationResult, error) {
	if len(clubs) == 0 {
		return nil, nil, fmt.Errorf("%w: no clubs to calibrate", ErrInvalidArgument)
	}
	if len(clubs) != len(targets) {
		return nil, nil, fmt.Errorf("%w: %d clubs but %d targets", ErrInvalidArgument, len(clubs), len(targets))
	}

	tuned := make([]Club, len(clubs))
	results := make([]CalibrationResult, len(clubs))
	for i, c := range clubs {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		res, err := Calibrate(ShotRequest{
			Slot:           i,
			Club:           c,
			TargetDistance: targets[i].Distance,
			TargetHeight:   targets[i].Height,
			Budget:         budget,
		}, env, opts)
		if err != nil {
			return nil, nil, err
		}
		tuned[i] = res.Club
		results[i] = res
		if sink != nil {
			if err := sink.WriteRow(ctx, NewReportRow(res)); err != nil {
				return nil, nil, fmt.Errorf("report slot %d: %w", i, err)
			}
		}
	}
	if sink != nil {
		if err := sink.Flush(ctx); err != nil {
			return nil, nil, fmt.Errorf("flush report: %w", err)
		}
	}
	return tuned, results, nil
}

package calibration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/playmatatu/fairway/internal/golf"
	"github.com/playmatatu/fairway/internal/logger"
	"github.com/playmatatu/fairway/internal/models"
	cache "github.com/playmatatu/fairway/internal/redis"
	"github.com/playmatatu/fairway/internal/report"
	"github.com/playmatatu/fairway/internal/session"
	"github.com/playmatatu/fairway/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrRunInProgress is returned when a calibration run is already going.
var ErrRunInProgress = errors.New("calibration run already in progress")

// Service runs calibration passes over the default bag and publishes the
// tuned table. Store, Redis and Table are optional.
type Service struct {
	Store     *store.Store
	Redis     *redis.Client
	Table     *session.ClubTable
	Env       golf.Environment
	Options   golf.CalibrateOptions
	Budget    int
	ReportDir string

	running atomic.Bool
}

// Request tunes a single run. Zero values fall back to the service defaults.
type Request struct {
	CreatedBy    string   `json:"created_by"`
	Budget       int      `json:"budget"`
	HeightWeight *float64 `json:"height_weight,omitempty"`
	Trace        bool     `json:"trace"`
}

type Result struct {
	RunID    string                   `json:"run_id"`
	Clubs    []golf.Club              `json:"clubs"`
	Results  []golf.CalibrationResult `json:"results"`
	Duration time.Duration            `json:"duration"`
}

// Running reports whether a run is in progress.
func (s *Service) Running() bool {
	return s.running.Load()
}

// Run calibrates synchronously.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)
	return s.run(ctx, uuid.NewString(), req)
}

// Start launches a run in the background and returns its ID.
func (s *Service) Start(req Request) (string, error) {
	if !s.running.CompareAndSwap(false, true) {
		return "", ErrRunInProgress
	}
	runID := uuid.NewString()
	go func() {
		defer s.running.Store(false)
		if _, err := s.run(context.Background(), runID, req); err != nil {
			logger.WithCalibrationRun(runID).WithError(err).Error("calibration run failed")
		}
	}()
	return runID, nil
}

func (s *Service) run(ctx context.Context, runID string, req Request) (*Result, error) {
	log := logger.WithCalibrationRun(runID)
	started := time.Now()

	budget := s.Budget
	if req.Budget > 0 {
		budget = req.Budget
	}
	opts := s.Options
	if req.HeightWeight != nil {
		opts.HeightWeight = *req.HeightWeight
	}
	opts.Trace = opts.Trace || req.Trace

	envJSON, err := json.Marshal(s.Env)
	if err != nil {
		return nil, fmt.Errorf("encode environment: %w", err)
	}

	sinks := report.MultiSink{report.NewLogSink(log)}
	if s.ReportDir != "" {
		sinks = append(sinks, report.NewCSVSink(filepath.Join(s.ReportDir, runID)))
	}
	if s.Store != nil {
		sinks = append(sinks, s.Store.NewSink(models.CalibrationRun{
			ID:           runID,
			Budget:       budget,
			HeightWeight: opts.HeightWeight,
			Environment:  envJSON,
			CreatedBy:    req.CreatedBy,
		}))
	}

	s.publish(ctx, cache.CalibrationEvent{Type: cache.EventStarted, RunID: runID})
	log.WithFields(logrus.Fields{
		"budget":        budget,
		"height_weight": opts.HeightWeight,
		"created_by":    req.CreatedBy,
	}).Info("calibration run started")

	clubs, results, err := golf.GenerateClubs(ctx, golf.DefaultClubs(), golf.DefaultTargets(), budget, s.Env, opts, sinks)
	if err != nil {
		s.publish(ctx, cache.CalibrationEvent{Type: cache.EventFailed, RunID: runID, Error: err.Error()})
		return nil, err
	}

	if s.Table != nil {
		s.Table.Set(clubs, runID)
	}
	if err := cache.SaveCalibratedClubs(ctx, s.Redis, runID, clubs); err != nil {
		log.WithError(err).Warn("failed to cache calibrated clubs")
	}
	s.publish(ctx, cache.CalibrationEvent{Type: cache.EventCompleted, RunID: runID, Clubs: clubs})

	res := &Result{RunID: runID, Clubs: clubs, Results: results, Duration: time.Since(started)}
	log.WithField("duration", res.Duration.String()).Info("calibration run completed")
	return res, nil
}

func (s *Service) publish(ctx context.Context, ev cache.CalibrationEvent) {
	if err := cache.PublishCalibrationEvent(ctx, s.Redis, ev); err != nil {
		logger.WithCalibrationRun(ev.RunID).WithError(err).Warn("failed to publish calibration event")
	}
}

// Restore fills the table from the newest calibration, trying the Redis
// cache first and then Postgres. It returns the run ID found, or "" when the
// built-in table stays in place.
func (s *Service) Restore(ctx context.Context) (string, error) {
	if s.Table == nil {
		return "", nil
	}
	clubs, runID, err := cache.LoadCalibratedClubs(ctx, s.Redis)
	if err == nil {
		s.Table.Set(clubs, runID)
		return runID, nil
	}
	if !errors.Is(err, cache.ErrNoCalibration) {
		logger.WithComponent("calibrate").WithError(err).Warn("failed to read calibrated clubs from cache")
	}

	if s.Store == nil {
		return "", nil
	}
	clubs, runID, err = s.Store.LatestClubs(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	s.Table.Set(clubs, runID)
	if err := cache.SaveCalibratedClubs(ctx, s.Redis, runID, clubs); err != nil {
		logger.WithCalibrationRun(runID).WithError(err).Warn("failed to cache calibrated clubs")
	}
	return runID, nil
}

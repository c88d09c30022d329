package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/playmatatu/fairway/internal/calibration"
	"github.com/playmatatu/fairway/internal/config"
	"github.com/playmatatu/fairway/internal/database"
	"github.com/playmatatu/fairway/internal/golf"
	"github.com/playmatatu/fairway/internal/logger"
	"github.com/playmatatu/fairway/internal/redis"
	"github.com/playmatatu/fairway/internal/store"
)

func main() {
	cfg := config.Load()

	iterations := flag.Int("iterations", cfg.CalibrationIterations, "simulator budget per club")
	out := flag.String("out", cfg.CalibrationReportDir, "directory for the CSV report")
	trace := flag.Bool("trace", false, "write per-club search traces")
	heightWeight := flag.Float64("height-weight", cfg.CalibrationHeightWeight, "weight of the apex error; 0 calibrates distance only")
	persist := flag.Bool("persist", false, "save the run to Postgres and the Redis cache")
	flag.Parse()

	log := logger.InitLogger(cfg.LogLevel, cfg.LogFormat, cfg.IsDevelopment())

	if *iterations <= 0 || *heightWeight < 0 {
		log.Error("-iterations must be positive and -height-weight must not be negative")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := &calibration.Service{
		Env:       cfg.PhysicsEnvironment(),
		Options:   cfg.CalibrateOptions(),
		Budget:    *iterations,
		ReportDir: *out,
	}
	if err := svc.Env.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid physics configuration")
	}

	if *persist {
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()
		svc.Store = store.New(db)

		rdb, err := redis.Connect(cfg.RedisURL)
		if err != nil {
			log.WithError(err).Warn("Failed to connect to Redis; calibrated clubs will not be cached")
		} else {
			defer rdb.Close()
			svc.Redis = rdb
		}
	}

	res, err := svc.Run(ctx, calibration.Request{
		CreatedBy:    "cli",
		HeightWeight: heightWeight,
		Trace:        *trace,
	})
	if err != nil {
		log.WithError(err).Fatal("Calibration failed")
	}

	converged := 0
	for _, r := range res.Results {
		if r.Converged {
			converged++
		}
	}
	log.WithField("run_id", res.RunID).
		WithField("converged", converged).
		WithField("clubs", len(res.Clubs)).
		WithField("duration", res.Duration.String()).
		Info("Calibration finished")

	for i, c := range res.Clubs {
		log.Infof("%2d %-15s power=%7.2f loft=%.4f distance=%6.1f yd", i, c.Name, c.Power, c.Loft, golf.ToYards(c.Distance))
	}
}

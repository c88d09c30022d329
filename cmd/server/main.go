package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/fairway/internal/api"
	"github.com/playmatatu/fairway/internal/calibration"
	"github.com/playmatatu/fairway/internal/config"
	"github.com/playmatatu/fairway/internal/database"
	"github.com/playmatatu/fairway/internal/golf"
	"github.com/playmatatu/fairway/internal/logger"
	"github.com/playmatatu/fairway/internal/middleware"
	"github.com/playmatatu/fairway/internal/migrations"
	"github.com/playmatatu/fairway/internal/redis"
	"github.com/playmatatu/fairway/internal/session"
	"github.com/playmatatu/fairway/internal/store"
	"github.com/playmatatu/fairway/internal/ws"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	log := logger.InitLogger(cfg.LogLevel, cfg.LogFormat, cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env := cfg.PhysicsEnvironment()
	if err := env.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid physics configuration")
	}

	// Postgres is optional: without it calibration history and admin login are off.
	var db *sqlx.DB
	var st *store.Store
	if cfg.DatabaseURL != "" {
		conn, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Warn("Failed to connect to database; running without calibration history")
		} else {
			db = conn
			defer db.Close()
			st = store.New(db)

			if cfg.MigrateOnStart {
				log.Info("Running DB migrations on startup")
				if err := migrations.RunMigrations(cfg.DatabaseURL); err != nil {
					log.WithError(err).Fatal("Failed to run migrations")
				}
			}
		}
	}

	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		log.WithError(err).Warn("Failed to connect to Redis; bag sessions stay in memory")
		rdb = nil
	} else {
		defer rdb.Close()
	}

	clubs, err := golf.Measure(golf.DefaultClubs(), env)
	if err != nil {
		log.WithError(err).Fatal("Failed to measure default clubs")
	}
	table := session.NewClubTable(clubs, "")

	svc := &calibration.Service{
		Store:     st,
		Redis:     rdb,
		Table:     table,
		Env:       env,
		Options:   cfg.CalibrateOptions(),
		Budget:    cfg.CalibrationIterations,
		ReportDir: cfg.CalibrationReportDir,
	}
	if runID, err := svc.Restore(ctx); err != nil {
		log.WithError(err).Warn("Failed to restore calibrated clubs; using built-in table")
	} else if runID != "" {
		log.WithField("run_id", runID).Info("Restored calibrated clubs")
	}
	if cfg.CalibrateOnStart {
		if _, err := svc.Start(calibration.Request{CreatedBy: "startup"}); err != nil {
			log.WithError(err).Warn("Calibration on start not launched")
		}
	}

	if cfg.CalibrationSchedule != "" {
		scheduler, err := svc.Schedule(cfg.CalibrationSchedule)
		if err != nil {
			log.WithError(err).Fatal("Invalid CALIBRATION_SCHEDULE")
		}
		scheduler.Start()
		defer scheduler.Stop()
		log.WithField("schedule", cfg.CalibrationSchedule).Info("Calibration scheduled")
	}

	ttl := time.Duration(cfg.BagSessionTTLMinutes) * time.Minute
	sessions := session.NewManager(rdb, table, env, ttl)
	sessions.StartSweeper(ctx, time.Duration(cfg.SessionSweepSeconds)*time.Second, ttl)

	hub := ws.NewHub()
	go hub.Run(ctx)
	ws.StartCalibrationSubscriber(ctx, rdb, hub, table)

	limiter := middleware.NewClientLimiter(cfg.SimulateRatePerSec, cfg.SimulateBurst)
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Prune(30 * time.Minute)
			}
		}
	}()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	api.SetupRoutes(router, api.Dependencies{
		Config:      cfg,
		DB:          db,
		Store:       st,
		Table:       table,
		Sessions:    sessions,
		Calibration: svc,
		Hub:         hub,
		WS:          ws.NewHandler(hub, sessions, env, nil),
		Limiter:     limiter,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Starting Fairway server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
}

func requestLogger() gin.HandlerFunc {
	log := logger.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
		}).Debug("request")
	}
}

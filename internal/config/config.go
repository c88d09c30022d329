package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/playmatatu/fairway/internal/golf"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	MigrateOnStart bool

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Logging
	LogLevel  string
	LogFormat string

	// Physics
	Gravity        float64
	Drag           float64
	Lift           float64
	SpinDecay      float64
	TimeStep       float64
	PowerScale     float64
	MaxFlightTime  float64
	RollResistance float64

	// Calibration
	CalibrationIterations   int
	CalibrationHeightWeight float64
	CalibrationReportDir    string
	CalibrateOnStart        bool
	CalibrationSchedule     string

	// Bag sessions
	BagSessionTTLMinutes int
	SessionSweepSeconds  int

	// Rate limiting for simulation endpoints
	SimulateRatePerSec float64
	SimulateBurst      int

	// Security
	JWTSecret       string
	AdminTokenHours int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		Environment: getEnv("APP_ENV", "development"),

		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/fairway?sslmode=disable"),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", false),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		LogLevel:  getEnv("LOG_LEVEL", ""),
		LogFormat: getEnv("LOG_FORMAT", ""),

		Gravity:        getEnvFloat("PHYS_GRAVITY", golf.Gravity),
		Drag:           getEnvFloat("PHYS_DRAG", golf.DragCoeff),
		Lift:           getEnvFloat("PHYS_LIFT", golf.LiftCoeff),
		SpinDecay:      getEnvFloat("PHYS_SPIN_DECAY", golf.SpinDecay),
		TimeStep:       getEnvFloat("PHYS_TIME_STEP", golf.TimeStep),
		PowerScale:     getEnvFloat("PHYS_POWER_SCALE", golf.PowerScale),
		MaxFlightTime:  getEnvFloat("PHYS_MAX_FLIGHT_TIME", golf.MaxFlightTime),
		RollResistance: getEnvFloat("PHYS_ROLL_RESISTANCE", golf.RollResistance),

		CalibrationIterations:   getEnvInt("CALIBRATION_ITERATIONS", golf.DefaultIterations),
		CalibrationHeightWeight: getEnvFloat("CALIBRATION_HEIGHT_WEIGHT", golf.DefaultCalibrateOptions().HeightWeight),
		CalibrationReportDir:    getEnv("CALIBRATION_REPORT_DIR", "reports"),
		CalibrateOnStart:        getEnvBool("CALIBRATE_ON_START", false),
		CalibrationSchedule:     getEnv("CALIBRATION_SCHEDULE", ""),

		BagSessionTTLMinutes: getEnvInt("BAG_SESSION_TTL_MINUTES", 60),
		SessionSweepSeconds:  getEnvInt("SESSION_SWEEP_SECONDS", 60),

		SimulateRatePerSec: getEnvFloat("SIMULATE_RATE_PER_SEC", 20),
		SimulateBurst:      getEnvInt("SIMULATE_BURST", 40),

		JWTSecret:       getEnv("JWT_SECRET", "change-me-in-production"),
		AdminTokenHours: getEnvInt("ADMIN_TOKEN_HOURS", 4),
	}
}

// IsDevelopment reports whether the server runs outside production.
func (c *Config) IsDevelopment() bool {
	return c.Environment != "production"
}

// PhysicsEnvironment builds the flight environment from the physics settings.
// Roll-out happens on the simulated surface.
func (c *Config) PhysicsEnvironment() golf.Environment {
	env := golf.DefaultEnvironment()
	env.Gravity = c.Gravity
	env.Drag = c.Drag
	env.Lift = c.Lift
	env.SpinDecay = c.SpinDecay
	env.TimeStep = c.TimeStep
	env.PowerScale = c.PowerScale
	env.MaxFlightTime = c.MaxFlightTime
	env.RollResistance = c.RollResistance
	return env
}

// CalibrateOptions returns the search options for calibration runs.
func (c *Config) CalibrateOptions() golf.CalibrateOptions {
	opts := golf.DefaultCalibrateOptions()
	opts.HeightWeight = c.CalibrationHeightWeight
	return opts
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.EqualFold(value, "true") || value == "1"
	}
	return defaultValue
}

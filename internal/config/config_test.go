package config

import (
	"testing"

	"github.com/playmatatu/fairway/internal/golf"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("PHYS_GRAVITY", "")
	t.Setenv("CALIBRATION_ITERATIONS", "")
	t.Setenv("CALIBRATION_SCHEDULE", "")

	cfg := Load()
	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, golf.DefaultIterations, cfg.CalibrationIterations)
	assert.Equal(t, golf.DefaultEnvironment(), cfg.PhysicsEnvironment())
	assert.Equal(t, golf.DefaultCalibrateOptions(), cfg.CalibrateOptions())
	assert.Empty(t, cfg.CalibrationSchedule)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PHYS_GRAVITY", "9.7")
	t.Setenv("PHYS_DRAG", "not-a-number")
	t.Setenv("CALIBRATION_ITERATIONS", "250")
	t.Setenv("CALIBRATE_ON_START", "true")
	t.Setenv("CALIBRATION_SCHEDULE", "@daily")

	cfg := Load()
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 9.7, cfg.PhysicsEnvironment().Gravity)
	assert.Equal(t, golf.DragCoeff, cfg.Drag, "unparseable values fall back to the default")
	assert.Equal(t, 250, cfg.CalibrationIterations)
	assert.True(t, cfg.CalibrateOnStart)
	assert.Equal(t, "@daily", cfg.CalibrationSchedule)
}

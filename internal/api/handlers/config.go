package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/fairway/internal/calibration"
	"github.com/playmatatu/fairway/internal/config"
	"github.com/playmatatu/fairway/internal/golf"
)

// GetConfig returns the physics and calibration settings the server runs with
func GetConfig(cfg *config.Config, svc *calibration.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"physics":                   cfg.PhysicsEnvironment(),
			"calibration_iterations":    cfg.CalibrationIterations,
			"calibration_height_weight": cfg.CalibrationHeightWeight,
			"calibration_running":       svc != nil && svc.Running(),
			"default_targets":           golf.DefaultTargets(),
			"bag_session_ttl_minutes":   cfg.BagSessionTTLMinutes,
		})
	}
}

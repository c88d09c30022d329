package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/fairway/internal/admin"
	"github.com/playmatatu/fairway/internal/calibration"
	"github.com/playmatatu/fairway/internal/store"
)

// StartCalibration kicks off a background calibration run
func StartCalibration(db *sqlx.DB, svc *calibration.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req calibration.Request
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
				return
			}
		}
		if req.Budget < 0 || (req.HeightWeight != nil && *req.HeightWeight < 0) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "budget and height_weight must not be negative"})
			return
		}

		username := c.GetString(ctxAdminUsername)
		req.CreatedBy = username

		runID, err := svc.Start(req)
		details := map[string]interface{}{"budget": req.Budget, "trace": req.Trace, "run_id": runID}
		admin.LogAdminAction(c.Request.Context(), db, username, c.ClientIP(), c.FullPath(), "calibrate", details, err == nil)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"run_id": runID, "status": "running"})
	}
}

// ListCalibrations returns past calibration runs, newest first
func ListCalibrations(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if st == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "calibration history unavailable"})
			return
		}
		limit, offset := pagination(c)
		runs, err := st.ListRuns(c.Request.Context(), limit, offset)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"runs": runs, "limit": limit, "offset": offset})
	}
}

// GetCalibration returns one run with its per-club rows
func GetCalibration(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if st == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "calibration history unavailable"})
			return
		}
		run, clubs, err := st.GetRun(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"run": run, "clubs": clubs})
	}
}

// GetAuditLogs returns recent admin actions
func GetAuditLogs(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit log unavailable"})
			return
		}
		limit, offset := pagination(c)
		logs, err := admin.GetAdminAuditLogs(c.Request.Context(), db, limit, offset)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"logs": logs, "limit": limit, "offset": offset})
	}
}

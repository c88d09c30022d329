package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/fairway/internal/golf"
	"github.com/playmatatu/fairway/internal/session"
)

// GetClubs returns the club table new bags are filled from.
func GetClubs(table *session.ClubTable) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"clubs":      table.Clubs(),
			"run_id":     table.RunID(),
			"updated_at": table.UpdatedAt(),
		})
	}
}

// GetTerrain lists the landing surfaces.
func GetTerrain(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"terrain": golf.Terrains()})
}

type selectRequest struct {
	RemainingDistance *float64    `json:"remaining_distance"`
	OnGreen           bool        `json:"on_green"`
	Surface           string      `json:"surface"`
	Clubs             []golf.Club `json:"clubs"`
}

// SelectClub picks the club for a remaining distance against the current
// table or a roster supplied by the caller.
func SelectClub(table *session.ClubTable) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req selectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if req.RemainingDistance == nil || *req.RemainingDistance < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "remaining_distance must be a non-negative number"})
			return
		}

		clubs := req.Clubs
		if clubs == nil {
			clubs = table.Clubs()
		}
		onGreen := req.OnGreen || golf.OnGreen(req.Surface)

		i, err := golf.SelectClub(*req.RemainingDistance, onGreen, clubs)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"index": i, "club": clubs[i], "on_green": onGreen})
	}
}

type simulateRequest struct {
	Power     float64 `json:"power"`
	Loft      float64 `json:"loft"`
	Surface   string  `json:"surface"`
	Wind      float64 `json:"wind"`
	Seed      *int64  `json:"seed"`
	CarryOnly bool    `json:"carry_only"`
	Path      bool    `json:"path"`
}

// Simulate flies one shot. With a surface the ball rolls out on it, and a
// seed adds the surface's lie.
func Simulate(env golf.Environment) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req simulateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		shotEnv := env
		shotEnv.Wind = req.Wind
		sampleEvery := 0
		if req.Path {
			sampleEvery = session.PathSampleEvery
		}

		var tr golf.Trajectory
		var err error
		switch {
		case req.CarryOnly && req.Surface != "":
			err = fmt.Errorf("%w: carry_only and surface are exclusive", golf.ErrInvalidArgument)
		case req.CarryOnly:
			tr, err = golf.SimulatePath(req.Power, req.Loft, shotEnv.CarryOnly(), sampleEvery)
		case req.Surface != "":
			var terrain golf.TerrainType
			if terrain, err = golf.TerrainByName(req.Surface); err == nil {
				tr, err = golf.SimulateShot(req.Power, req.Loft, shotEnv, terrain, seededRand(req.Seed), sampleEvery)
			}
		default:
			tr, err = golf.SimulatePath(req.Power, req.Loft, shotEnv, sampleEvery)
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, tr)
	}
}

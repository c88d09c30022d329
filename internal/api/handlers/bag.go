package handlers

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/fairway/internal/golf"
	"github.com/playmatatu/fairway/internal/session"
	"github.com/playmatatu/fairway/internal/ws"
)

func seededRand(seed *int64) *rand.Rand {
	if seed == nil {
		return nil
	}
	return rand.New(rand.NewSource(*seed))
}

type createBagRequest struct {
	Clubs []golf.Club `json:"clubs"`
}

// CreateBag opens a bag session. Custom clubs without a distance are
// measured first.
func CreateBag(mgr *session.Manager, env golf.Environment) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createBagRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
				return
			}
		}

		clubs := req.Clubs
		if clubs != nil && needsMeasure(clubs) {
			measured, err := golf.Measure(clubs, env)
			if err != nil {
				respondError(c, err)
				return
			}
			clubs = measured
		}

		st, err := mgr.Create(c.Request.Context(), clubs)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, st)
	}
}

func needsMeasure(clubs []golf.Club) bool {
	for _, club := range clubs {
		if club.Distance <= 0 {
			return true
		}
	}
	return false
}

func GetBag(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := mgr.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, st)
	}
}

// NextClub moves the cursor forward, wrapping to the driver.
func NextClub(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := mgr.Next(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, st)
	}
}

// PrevClub moves the cursor back, wrapping to the putter.
func PrevClub(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := mgr.Prev(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, st)
	}
}

type bagSelectRequest struct {
	RemainingDistance *float64 `json:"remaining_distance"`
	Surface           string   `json:"surface"`
}

func SelectBagClub(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req bagSelectRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.RemainingDistance == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "remaining_distance is required"})
			return
		}
		st, err := mgr.SelectBest(c.Request.Context(), c.Param("id"), *req.RemainingDistance, req.Surface)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, st)
	}
}

type bagShotRequest struct {
	Surface string `json:"surface"`
	Seed    *int64 `json:"seed"`
}

// TakeBagShot plays the club in hand and pushes the result to websocket
// clients following the bag.
func TakeBagShot(mgr *session.Manager, hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req bagShotRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
				return
			}
		}
		seed := time.Now().UnixNano()
		if req.Seed != nil {
			seed = *req.Seed
		}

		id := c.Param("id")
		res, err := mgr.TakeShot(c.Request.Context(), id, req.Surface, seed)
		if err != nil {
			respondError(c, err)
			return
		}
		if hub != nil {
			summary := res.Trajectory
			summary.Path = nil
			hub.BroadcastToBag(id, gin.H{"type": "shot_result", "trajectory": summary, "club": res.Club, "state": res.State, "seed": res.Seed})
		}
		c.JSON(http.StatusOK, res)
	}
}

func DeleteBag(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := mgr.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

package api

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/fairway/internal/admin"
	"github.com/playmatatu/fairway/internal/api/handlers"
	"github.com/playmatatu/fairway/internal/calibration"
	"github.com/playmatatu/fairway/internal/config"
	"github.com/playmatatu/fairway/internal/logger"
	"github.com/playmatatu/fairway/internal/middleware"
	"github.com/playmatatu/fairway/internal/session"
	"github.com/playmatatu/fairway/internal/store"
	"github.com/playmatatu/fairway/internal/ws"
)

// Dependencies are the services the HTTP surface is built on. DB and Store
// may be nil when the server runs without Postgres.
type Dependencies struct {
	Config      *config.Config
	DB          *sqlx.DB
	Store       *store.Store
	Table       *session.ClubTable
	Sessions    *session.Manager
	Calibration *calibration.Service
	Hub         *ws.Hub
	WS          *ws.Handler
	Limiter     *middleware.ClientLimiter
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	cfg := deps.Config
	env := cfg.PhysicsEnvironment()

	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.IsDevelopment() {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		logger.WithComponent("api").Debug("no-cache headers enabled for all routes")
	}

	limited := middleware.RateLimit(deps.Limiter)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)
		v1.GET("/config", handlers.GetConfig(cfg, deps.Calibration))
		v1.GET("/terrain", handlers.GetTerrain)

		v1.GET("/clubs", handlers.GetClubs(deps.Table))
		v1.POST("/clubs/select", limited, handlers.SelectClub(deps.Table))
		v1.POST("/simulate", limited, handlers.Simulate(env))

		bag := v1.Group("/bag")
		{
			bag.POST("", handlers.CreateBag(deps.Sessions, env))
			bag.GET("/:id", handlers.GetBag(deps.Sessions))
			bag.POST("/:id/next", handlers.NextClub(deps.Sessions))
			bag.POST("/:id/prev", handlers.PrevClub(deps.Sessions))
			bag.POST("/:id/select", handlers.SelectBagClub(deps.Sessions))
			bag.POST("/:id/shot", limited, handlers.TakeBagShot(deps.Sessions, deps.Hub))
			bag.DELETE("/:id", handlers.DeleteBag(deps.Sessions))
		}

		v1.POST("/admin/login", handlers.AdminLogin(deps.DB, cfg))
		adm := v1.Group("/admin", handlers.AdminAuthMiddleware(cfg))
		{
			adm.POST("/calibrate", handlers.RequireRole(admin.RoleCalibrate), handlers.StartCalibration(deps.DB, deps.Calibration))
			adm.GET("/calibrations", handlers.ListCalibrations(deps.Store))
			adm.GET("/calibrations/:id", handlers.GetCalibration(deps.Store))
			adm.GET("/audit", handlers.GetAuditLogs(deps.DB))
		}

		if deps.WS != nil {
			v1.GET("/ws", middleware.WebSocketOriginCheck(cfg), handlers.HandleWebSocket(deps.WS))
		}
	}
}

package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/seatrack/api/handler"
	"github.com/use-agent/seatrack/api/middleware"
	"github.com/use-agent/seatrack/config"
	"github.com/use-agent/seatrack/gateway"
	"github.com/use-agent/seatrack/session"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(g *gateway.Gateway, pool *session.Pool, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(pool, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Single lookup
	protected.POST("/track", handler.Track(g))

	// Batch lookup
	protected.POST("/track/batch", handler.TrackBatch(g))

	// Streaming transport
	protected.GET("/ws", handler.WS(g))

	return r
}

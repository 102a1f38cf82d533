package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/seatrack/session"
)

// Health returns a handler for GET /api/v1/health.
func Health(pool *session.Pool, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "healthy",
			"openTabs":       pool.Size(),
			"rotationActive": pool.RotationActive(),
			"uptime":         time.Since(startTime).Round(time.Second).String(),
			"version":        "0.1.0",
		})
	}
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/seatrack/gateway"
	"github.com/use-agent/seatrack/models"
)

// Track returns a handler for POST /api/v1/track.
//
// The request body is one LookupTask. The lookup runs synchronously on the
// request; clients size their own timeouts to the carrier portals' latency.
// Task-level failures (bad input, unknown carrier, portal timeouts) are
// reported inside a 200 envelope, not as HTTP errors: the API call itself
// succeeded, the lookup did not.
func Track(g *gateway.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		var task models.LookupTask
		if err := c.ShouldBindJSON(&task); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		c.JSON(http.StatusOK, g.Handle(c.Request.Context(), task))
	}
}

// TrackBatch returns a handler for POST /api/v1/track/batch.
//
// Tasks fan out concurrently; the response carries every envelope plus the
// aggregate summary once all tasks have completed. Clients wanting results
// as they finish should use the WebSocket endpoint instead.
func TrackBatch(g *gateway.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		results := make([]*models.ResultEnvelope, 0, len(req.Tasks))
		summary := g.HandleBatch(c.Request.Context(), req.Tasks, func(e *models.ResultEnvelope) {
			results = append(results, e)
		})

		c.JSON(http.StatusOK, models.BatchResponse{
			Results: results,
			Summary: summary,
		})
	}
}

package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter builds the gin engine serving the schedule endpoints
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(h.Logger), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/weeks/:weekStart/schedule", h.ScheduleWeek)
		api.GET("/weeks/:weekStart/schedule", h.GetSchedule)
	}

	return r
}

// requestLogger logs each request through zap instead of gin's default writer
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

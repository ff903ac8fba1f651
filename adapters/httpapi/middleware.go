package httpapi

import (
	"context"
	"time"

	"gophi/internal"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs each request with its status and latency
func RequestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}

// RequestTimeout bounds the analysis a request may trigger. The engine
// checks the context between cuts, so long searches stop early.
func RequestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

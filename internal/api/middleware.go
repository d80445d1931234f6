package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kurihiro0119/github-repo-sync/internal/log"
)

// Logger returns a middleware that logs requests. Server errors are logged
// as errors, everything else as info.
func Logger(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}
		status := c.Writer.Status()
		line := "%s %s | %s | %v | %d"
		args := []interface{}{c.Request.Method, path, c.ClientIP(), time.Since(start), status}

		if status >= http.StatusInternalServerError {
			logger.Error(line, args...)
			return
		}
		logger.Info(line, args...)
	}
}

// CORS returns a middleware that handles CORS. The API is read-only.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Recovery returns a middleware that recovers from panics
func Recovery() gin.HandlerFunc {
	return gin.Recovery()
}

package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kurihiro0119/github-repo-sync/internal/log"
)

// SetupRoutes sets up the API routes
func SetupRoutes(handler *Handler, logger *log.Logger) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(Recovery())
	router.Use(CORS())
	router.Use(Logger(logger))

	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1
	v1 := router.Group("/api/v1")
	{
		runs := v1.Group("/runs")
		{
			runs.GET("", handler.GetRuns)
			runs.GET("/:id", handler.GetRun)
		}

		v1.GET("/repos/:repo/history", handler.GetRepoHistory)
	}

	return router
}

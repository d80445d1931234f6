package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kurihiro0119/github-repo-sync/internal/domain"
	apperrors "github.com/kurihiro0119/github-repo-sync/internal/errors"
	"github.com/kurihiro0119/github-repo-sync/internal/storage"
)

// maxLimit caps the rows a single request may ask for
const maxLimit = 500

// Handler handles API requests
type Handler struct {
	storage storage.Storage
}

// NewHandler creates a new API handler
func NewHandler(store storage.Storage) *Handler {
	return &Handler{
		storage: store,
	}
}

// GetRuns returns the most recent runs
// GET /api/v1/runs?limit=N
func (h *Handler) GetRuns(c *gin.Context) {
	limit := parseIntQuery(c, "limit", storage.DefaultLimit)

	runs, err := h.storage.GetRuns(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if runs == nil {
		runs = []*domain.RunReport{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data": runs,
	})
}

// GetRun returns a single run
// GET /api/v1/runs/:id
func (h *Handler) GetRun(c *gin.Context) {
	run, err := h.storage.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": run,
	})
}

// GetRepoHistory returns the recorded outcomes of one repository
// GET /api/v1/repos/:repo/history?limit=N
func (h *Handler) GetRepoHistory(c *gin.Context) {
	repo := c.Param("repo")
	if repo == "" {
		respondError(c, apperrors.NewBadRequestError("repository name is required"))
		return
	}
	limit := parseIntQuery(c, "limit", storage.DefaultLimit)

	entries, err := h.storage.GetRepoHistory(c.Request.Context(), repo, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if entries == nil {
		entries = []*domain.RepoHistoryEntry{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data": entries,
	})
}

// parseIntQuery parses an integer query parameter with a default value
func parseIntQuery(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil || value <= 0 {
		return defaultValue
	}
	if value > maxLimit {
		return maxLimit
	}
	return value
}

// HealthCheck returns the health status of the API
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// respondError sends an error response
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch appErr.Code {
		case apperrors.ErrCodeNotFound:
			status = http.StatusNotFound
		case apperrors.ErrCodeUnauthenticated:
			status = http.StatusUnauthorized
		case apperrors.ErrCodeBadRequest:
			status = http.StatusBadRequest
		case apperrors.ErrCodeListingFailed, apperrors.ErrCodeToolMissing:
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrCodeInternal,
			"message": err.Error(),
		},
	})
}

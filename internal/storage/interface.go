package storage

import (
	"context"

	"github.com/kurihiro0119/github-repo-sync/internal/domain"
)

// DefaultLimit is used when a caller asks for zero or fewer rows
const DefaultLimit = 20

// Storage is the abstract interface for the run-history persistence layer
type Storage interface {
	// SaveRun stores a finished run and one history row per repository outcome
	SaveRun(ctx context.Context, report *domain.RunReport) error

	// GetRuns returns the most recent runs, newest first
	GetRuns(ctx context.Context, limit int) ([]*domain.RunReport, error)

	// GetRun returns one run; a missing id is a NOT_FOUND AppError
	GetRun(ctx context.Context, id string) (*domain.RunReport, error)

	// GetRepoHistory returns the recorded outcomes of one repository, newest first
	GetRepoHistory(ctx context.Context, repo string, limit int) ([]*domain.RepoHistoryEntry, error)

	// Migration
	Migrate(ctx context.Context) error

	// Connection management
	Close() error
}

// Limit normalises a caller-supplied row limit
func Limit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

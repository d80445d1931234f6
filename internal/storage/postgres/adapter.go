package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	_ "github.com/lib/pq"

	"github.com/kurihiro0119/github-repo-sync/internal/aggregator"
	"github.com/kurihiro0119/github-repo-sync/internal/domain"
	apperrors "github.com/kurihiro0119/github-repo-sync/internal/errors"
	"github.com/kurihiro0119/github-repo-sync/internal/storage"
)

// postgresStorage implements the Storage interface for PostgreSQL
type postgresStorage struct {
	db *sql.DB
}

// NewPostgresStorage creates a new PostgreSQL storage instance
func NewPostgresStorage(connStr string) (storage.Storage, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &postgresStorage{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Migrate runs database migrations
func (s *postgresStorage) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		device TEXT NOT NULL,
		output_dir TEXT NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL,
		cloned INTEGER NOT NULL DEFAULT 0,
		pulled INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		committed INTEGER NOT NULL DEFAULT 0,
		review_requests INTEGER NOT NULL DEFAULT 0,
		failures INTEGER NOT NULL DEFAULT 0,
		summary JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);

	CREATE TABLE IF NOT EXISTS run_repos (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		repo TEXT NOT NULL,
		mode TEXT NOT NULL,
		outcome TEXT NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_run_repos_repo ON run_repos(repo, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_run_repos_run_id ON run_repos(run_id);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveRun stores a run and its per-repository rows in one transaction
func (s *postgresStorage) SaveRun(ctx context.Context, report *domain.RunReport) error {
	summaryJSON, err := json.Marshal(report.Summary)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	c := report.Summary.Counts
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, mode, device, output_dir, started_at, finished_at,
			cloned, pulled, skipped, committed, review_requests, failures, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			mode = EXCLUDED.mode,
			device = EXCLUDED.device,
			output_dir = EXCLUDED.output_dir,
			started_at = EXCLUDED.started_at,
			finished_at = EXCLUDED.finished_at,
			cloned = EXCLUDED.cloned,
			pulled = EXCLUDED.pulled,
			skipped = EXCLUDED.skipped,
			committed = EXCLUDED.committed,
			review_requests = EXCLUDED.review_requests,
			failures = EXCLUDED.failures,
			summary = EXCLUDED.summary
	`,
		report.ID, string(report.Mode), report.Device, report.OutputDir,
		report.StartedAt, report.FinishedAt,
		c.Cloned, c.Pulled, c.Skipped, c.Committed, c.ReviewRequests, c.Failures,
		string(summaryJSON),
	)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_repos WHERE run_id = $1`, report.ID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_repos (run_id, repo, mode, outcome, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range aggregator.History(report) {
		if _, err := stmt.ExecContext(ctx, e.RunID, e.Repo, string(e.Mode), e.Outcome, e.Detail, e.CreatedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

const runColumns = `id, mode, device, output_dir, started_at, finished_at, summary`

// GetRuns returns the newest runs first
func (s *postgresStorage) GetRuns(ctx context.Context, limit int) ([]*domain.RunReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY started_at DESC, id
		LIMIT $1
	`, storage.Limit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.RunReport
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// GetRun returns a single run
func (s *postgresStorage) GetRun(ctx context.Context, id string) (*domain.RunReport, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = $1`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("run " + id)
	}
	return r, err
}

// GetRepoHistory returns the recorded outcomes of repo, newest first
func (s *postgresStorage) GetRepoHistory(ctx context.Context, repo string, limit int) ([]*domain.RepoHistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, mode, repo, outcome, detail, created_at
		FROM run_repos
		WHERE repo = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, repo, storage.Limit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.RepoHistoryEntry
	for rows.Next() {
		var e domain.RepoHistoryEntry
		var mode string
		if err := rows.Scan(&e.RunID, &mode, &e.Repo, &e.Outcome, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Mode = domain.RunMode(mode)
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

func scanRun(row interface{ Scan(dest ...interface{}) error }) (*domain.RunReport, error) {
	var r domain.RunReport
	var mode string
	var summaryJSON []byte
	if err := row.Scan(&r.ID, &mode, &r.Device, &r.OutputDir, &r.StartedAt, &r.FinishedAt, &summaryJSON); err != nil {
		return nil, err
	}
	r.Mode = domain.RunMode(mode)
	if err := json.Unmarshal(summaryJSON, &r.Summary); err != nil {
		return nil, err
	}
	return &r, nil
}

// Close closes the database connection
func (s *postgresStorage) Close() error {
	return s.db.Close()
}

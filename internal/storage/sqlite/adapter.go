package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kurihiro0119/github-repo-sync/internal/aggregator"
	"github.com/kurihiro0119/github-repo-sync/internal/domain"
	apperrors "github.com/kurihiro0119/github-repo-sync/internal/errors"
	"github.com/kurihiro0119/github-repo-sync/internal/storage"
)

// sqliteStorage implements the Storage interface for SQLite
type sqliteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (storage.Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	s := &sqliteStorage{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Migrate runs database migrations
func (s *sqliteStorage) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		device TEXT NOT NULL,
		output_dir TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		cloned INTEGER NOT NULL DEFAULT 0,
		pulled INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		committed INTEGER NOT NULL DEFAULT 0,
		review_requests INTEGER NOT NULL DEFAULT 0,
		failures INTEGER NOT NULL DEFAULT 0,
		summary TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

	CREATE TABLE IF NOT EXISTS run_repos (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		repo TEXT NOT NULL,
		mode TEXT NOT NULL,
		outcome TEXT NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_run_repos_repo ON run_repos(repo, created_at);
	CREATE INDEX IF NOT EXISTS idx_run_repos_run_id ON run_repos(run_id);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveRun stores a run and its per-repository rows in one transaction
func (s *sqliteStorage) SaveRun(ctx context.Context, report *domain.RunReport) error {
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
		INSERT OR REPLACE INTO runs (id, mode, device, output_dir, started_at, finished_at,
			cloned, pulled, skipped, committed, review_requests, failures, summary)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.ID, string(report.Mode), report.Device, report.OutputDir,
		report.StartedAt.UTC(), report.FinishedAt.UTC(),
		c.Cloned, c.Pulled, c.Skipped, c.Committed, c.ReviewRequests, c.Failures,
		string(summaryJSON),
	)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_repos WHERE run_id = ?`, report.ID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_repos (run_id, repo, mode, outcome, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range aggregator.History(report) {
		_, err = stmt.ExecContext(ctx, e.RunID, e.Repo, string(e.Mode), e.Outcome, e.Detail, e.CreatedAt.UTC())
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

const runColumns = `id, mode, device, output_dir, started_at, finished_at, summary`

// GetRuns returns the newest runs first
func (s *sqliteStorage) GetRuns(ctx context.Context, limit int) ([]*domain.RunReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY started_at DESC, id
		LIMIT ?
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
func (s *sqliteStorage) GetRun(ctx context.Context, id string) (*domain.RunReport, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("run " + id)
	}
	return r, err
}

// GetRepoHistory returns the recorded outcomes of repo, newest first
func (s *sqliteStorage) GetRepoHistory(ctx context.Context, repo string, limit int) ([]*domain.RepoHistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, mode, repo, outcome, detail, created_at
		FROM run_repos
		WHERE repo = ?
		ORDER BY created_at DESC
		LIMIT ?
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

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*domain.RunReport, error) {
	var r domain.RunReport
	var mode, summaryJSON string
	if err := row.Scan(&r.ID, &mode, &r.Device, &r.OutputDir, &r.StartedAt, &r.FinishedAt, &summaryJSON); err != nil {
		return nil, err
	}
	r.Mode = domain.RunMode(mode)
	if err := json.Unmarshal([]byte(summaryJSON), &r.Summary); err != nil {
		return nil, err
	}
	return &r, nil
}

// Close closes the database connection
func (s *sqliteStorage) Close() error {
	return s.db.Close()
}

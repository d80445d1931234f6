package domain

import "time"

// RunMode identifies which workflow produced a run
type RunMode string

const (
	RunModeClone RunMode = "clone"
	RunModeSync  RunMode = "sync"
	RunModePull  RunMode = "pull"
)

// RunReport is handed to notifiers once a run has finished
type RunReport struct {
	ID         string     `json:"id"`
	Mode       RunMode    `json:"mode"`
	Device     string     `json:"device"`
	OutputDir  string     `json:"output_dir"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
	Summary    RunSummary `json:"summary"`
}

// RepoHistoryEntry is one repository outcome recorded for a past run
type RepoHistoryEntry struct {
	RunID     string    `json:"run_id"`
	Mode      RunMode   `json:"mode"`
	Repo      string    `json:"repo"`
	Outcome   string    `json:"outcome"` // cloned, pulled, skipped, failed, committed, review_requested, publish_failed
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

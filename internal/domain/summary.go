package domain

// RepoFailure pairs a repository short name with the captured error text
type RepoFailure struct {
	Name    string        `json:"name"`
	Op      OperationKind `json:"op,omitempty"`
	Message string        `json:"message"`
}

// RepoSkip pairs a repository short name with the reason it was skipped
type RepoSkip struct {
	Name   string        `json:"name"`
	Op     OperationKind `json:"op"`
	Reason string        `json:"reason"`
}

// ReviewRequest pairs a repository short name with a newly opened review URL
type ReviewRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// PublishFailure is a failed publish. DidCommit distinguishes "committed
// but the review request failed" from "nothing was committed".
type PublishFailure struct {
	Name      string       `json:"name"`
	Stage     PublishStage `json:"stage"`
	DidCommit bool         `json:"did_commit"`
	Message   string       `json:"message"`
}

// SummaryCounts holds the headline numbers of a run
type SummaryCounts struct {
	Cloned         int `json:"cloned"`
	Pulled         int `json:"pulled"`
	Skipped        int `json:"skipped"`
	Committed      int `json:"committed"`
	ReviewRequests int `json:"review_requests"`
	Failures       int `json:"failures"`
}

// RunSummary aggregates the outcomes of one run. Every list is sorted by
// repository short name.
type RunSummary struct {
	Counts          SummaryCounts    `json:"counts"`
	Cloned          []string         `json:"cloned"`
	Pulled          []string         `json:"pulled"`
	Skipped         []RepoSkip       `json:"skipped"`
	Failed          []RepoFailure    `json:"failed"`
	Committed       []string         `json:"committed"`
	ReviewRequests  []ReviewRequest  `json:"review_requests"`
	PublishFailures []PublishFailure `json:"publish_failures"`
}

// OperationsSucceeded reports whether every clone and pull succeeded or was
// skipped. Publish failures do not count against it.
func (s *RunSummary) OperationsSucceeded() bool {
	return len(s.Failed) == 0
}

package domain

// UnknownBranch is reported when the current branch cannot be determined
const UnknownBranch = "?"

// RepoStatus is a display snapshot of one working copy
type RepoStatus struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Branch      string `json:"branch"`
	Ahead       int    `json:"ahead"`
	Behind      int    `json:"behind"`
	Dirty       bool   `json:"dirty"`
	WrongBranch bool   `json:"wrong_branch"` // not on the required branch
	Error       string `json:"error,omitempty"`
}

package domain

import "fmt"

// OperationKind names the per-repository operation an outcome belongs to
type OperationKind string

const (
	OperationClone OperationKind = "clone"
	OperationPull  OperationKind = "pull"
)

// OperationOutcome is the result of one clone or pull. The concrete types
// are Cloned, Pulled, Skipped and Failed; no other type implements it.
type OperationOutcome interface {
	RepoName() string
	String() string
	isOperationOutcome()
}

// Cloned reports a fresh clone
type Cloned struct {
	Repo string
}

// Pulled reports a successful pull
type Pulled struct {
	Repo string
}

// Skipped reports an operation that was not needed or not attempted
type Skipped struct {
	Repo   string
	Op     OperationKind
	Reason string
}

// Failed reports an operation whose external tool exited non-zero
type Failed struct {
	Repo    string
	Op      OperationKind
	Message string
}

func (o Cloned) RepoName() string  { return o.Repo }
func (o Pulled) RepoName() string  { return o.Repo }
func (o Skipped) RepoName() string { return o.Repo }
func (o Failed) RepoName() string  { return o.Repo }

func (o Cloned) String() string { return "cloned: " + o.Repo }
func (o Pulled) String() string { return "pulled: " + o.Repo }
func (o Skipped) String() string {
	return fmt.Sprintf("skipped %s: %s (%s)", o.Op, o.Repo, o.Reason)
}
func (o Failed) String() string {
	return fmt.Sprintf("%s failed: %s (%s)", o.Op, o.Repo, o.Message)
}

func (Cloned) isOperationOutcome()  {}
func (Pulled) isOperationOutcome()  {}
func (Skipped) isOperationOutcome() {}
func (Failed) isOperationOutcome()  {}

// PublishStage identifies the step of the publish sequence that failed
type PublishStage string

const (
	StageStatus PublishStage = "status"
	StageBranch PublishStage = "branch"
	StageStage  PublishStage = "stage"
	StageCommit PublishStage = "commit"
	StagePush   PublishStage = "push"
	StageReview PublishStage = "review"
)

// PublishOutcome is the result of publishing one working copy's local
// changes. The concrete types are NoChanges, Committed, CommittedAndRequested
// and PublishFailed.
type PublishOutcome interface {
	RepoName() string
	String() string
	isPublishOutcome()
}

// NoChanges reports a clean working tree, or one whose changes were all ignored
type NoChanges struct {
	Repo string
}

// Committed reports a commit pushed to Branch. No new review URL was
// produced, usually because a review request for the branch already exists.
type Committed struct {
	Repo   string
	Branch string
}

// CommittedAndRequested reports a commit pushed to Branch and a new review request
type CommittedAndRequested struct {
	Repo      string
	Branch    string
	ReviewURL string
}

// PublishFailed reports a failure at Stage. DidCommit is true when the
// commit (and push) landed before the failure, which only happens at
// StageReview; the working copy is left in that advanced state.
type PublishFailed struct {
	Repo      string
	Branch    string
	Stage     PublishStage
	DidCommit bool
	Message   string
}

func (o NoChanges) RepoName() string             { return o.Repo }
func (o Committed) RepoName() string             { return o.Repo }
func (o CommittedAndRequested) RepoName() string { return o.Repo }
func (o PublishFailed) RepoName() string         { return o.Repo }

func (o NoChanges) String() string { return "no changes: " + o.Repo }
func (o Committed) String() string {
	return fmt.Sprintf("committed: %s -> %s", o.Repo, o.Branch)
}
func (o CommittedAndRequested) String() string {
	return fmt.Sprintf("committed: %s -> %s (%s)", o.Repo, o.Branch, o.ReviewURL)
}
func (o PublishFailed) String() string {
	if o.DidCommit {
		return fmt.Sprintf("committed but %s failed: %s (%s)", o.Stage, o.Repo, o.Message)
	}
	return fmt.Sprintf("%s failed: %s (%s)", o.Stage, o.Repo, o.Message)
}

func (NoChanges) isPublishOutcome()             {}
func (Committed) isPublishOutcome()             {}
func (CommittedAndRequested) isPublishOutcome() {}
func (PublishFailed) isPublishOutcome()         {}

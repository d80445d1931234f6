// Package aggregator builds the run summary from per-repository outcomes.
package aggregator

import (
	"sort"
	"time"

	"github.com/kurihiro0119/github-repo-sync/internal/domain"
)

// Build aggregates clone/pull and publish outcomes into a RunSummary. Every
// list is sorted by repository short name; the input order does not matter.
func Build(ops []domain.OperationOutcome, pubs []domain.PublishOutcome) domain.RunSummary {
	var s domain.RunSummary

	for _, o := range ops {
		switch o := o.(type) {
		case domain.Cloned:
			s.Cloned = append(s.Cloned, o.Repo)
		case domain.Pulled:
			s.Pulled = append(s.Pulled, o.Repo)
		case domain.Skipped:
			s.Skipped = append(s.Skipped, domain.RepoSkip{Name: o.Repo, Op: o.Op, Reason: o.Reason})
		case domain.Failed:
			s.Failed = append(s.Failed, domain.RepoFailure{Name: o.Repo, Op: o.Op, Message: o.Message})
		}
	}

	for _, p := range pubs {
		switch p := p.(type) {
		case domain.NoChanges:
		case domain.Committed:
			s.Committed = append(s.Committed, p.Repo)
		case domain.CommittedAndRequested:
			s.Committed = append(s.Committed, p.Repo)
			s.ReviewRequests = append(s.ReviewRequests, domain.ReviewRequest{Name: p.Repo, URL: p.ReviewURL})
		case domain.PublishFailed:
			if p.DidCommit {
				s.Committed = append(s.Committed, p.Repo)
			}
			s.PublishFailures = append(s.PublishFailures, domain.PublishFailure{
				Name:      p.Repo,
				Stage:     p.Stage,
				DidCommit: p.DidCommit,
				Message:   p.Message,
			})
		}
	}

	sort.Strings(s.Cloned)
	sort.Strings(s.Pulled)
	sort.Strings(s.Committed)
	sort.SliceStable(s.Skipped, func(i, j int) bool { return s.Skipped[i].Name < s.Skipped[j].Name })
	sort.SliceStable(s.Failed, func(i, j int) bool { return s.Failed[i].Name < s.Failed[j].Name })
	sort.SliceStable(s.ReviewRequests, func(i, j int) bool { return s.ReviewRequests[i].Name < s.ReviewRequests[j].Name })
	sort.SliceStable(s.PublishFailures, func(i, j int) bool { return s.PublishFailures[i].Name < s.PublishFailures[j].Name })

	s.Counts = domain.SummaryCounts{
		Cloned:         len(s.Cloned),
		Pulled:         len(s.Pulled),
		Skipped:        len(s.Skipped),
		Committed:      len(s.Committed),
		ReviewRequests: len(s.ReviewRequests),
		Failures:       len(s.Failed) + len(s.PublishFailures),
	}
	return s
}

// History flattens a report into one entry per repository outcome, in the
// order the summary lists them
func History(report *domain.RunReport) []domain.RepoHistoryEntry {
	s := report.Summary
	at := report.FinishedAt
	if at.IsZero() {
		at = time.Now()
	}

	var out []domain.RepoHistoryEntry
	add := func(repo, outcome, detail string) {
		out = append(out, domain.RepoHistoryEntry{
			RunID:     report.ID,
			Mode:      report.Mode,
			Repo:      repo,
			Outcome:   outcome,
			Detail:    detail,
			CreatedAt: at,
		})
	}

	for _, name := range s.Cloned {
		add(name, "cloned", "")
	}
	for _, name := range s.Pulled {
		add(name, "pulled", "")
	}
	for _, sk := range s.Skipped {
		add(sk.Name, "skipped", string(sk.Op)+": "+sk.Reason)
	}
	for _, f := range s.Failed {
		add(f.Name, "failed", string(f.Op)+": "+f.Message)
	}

	requested := make(map[string]string, len(s.ReviewRequests))
	for _, rr := range s.ReviewRequests {
		requested[rr.Name] = rr.URL
	}
	failedPublish := make(map[string]bool, len(s.PublishFailures))
	for _, pf := range s.PublishFailures {
		failedPublish[pf.Name] = true
	}
	for _, name := range s.Committed {
		switch {
		case requested[name] != "":
			add(name, "review_requested", requested[name])
		case !failedPublish[name]:
			add(name, "committed", "")
		}
	}
	for _, pf := range s.PublishFailures {
		add(pf.Name, "publish_failed", string(pf.Stage)+": "+pf.Message)
	}
	return out
}

// Package notify hands finished run reports to their consumers: the
// terminal, the run-history store, or both.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/kurihiro0119/github-repo-sync/internal/domain"
	"github.com/kurihiro0119/github-repo-sync/internal/storage"
)

// Notifier receives the report of a finished run
type Notifier interface {
	Notify(ctx context.Context, report *domain.RunReport) error
}

// Console renders reports as tables, or as JSON
type Console struct {
	out    io.Writer
	asJSON bool
}

// NewConsole creates a console notifier writing to out
func NewConsole(out io.Writer, asJSON bool) *Console {
	return &Console{out: out, asJSON: asJSON}
}

// Notify writes the report
func (c *Console) Notify(_ context.Context, report *domain.RunReport) error {
	if c.asJSON {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	s := report.Summary
	fmt.Fprintf(c.out, "\nRun %s (%s) in %s\n\n", report.ID, report.Mode, report.OutputDir)

	table := tablewriter.NewWriter(c.out)
	table.SetHeader([]string{"Outcome", "Count"})
	table.Append([]string{"Cloned", strconv.Itoa(s.Counts.Cloned)})
	table.Append([]string{"Pulled", strconv.Itoa(s.Counts.Pulled)})
	table.Append([]string{"Skipped", strconv.Itoa(s.Counts.Skipped)})
	if report.Mode == domain.RunModeSync {
		table.Append([]string{"Committed", strconv.Itoa(s.Counts.Committed)})
		table.Append([]string{"Review requests", strconv.Itoa(s.Counts.ReviewRequests)})
	}
	table.Append([]string{"Failures", strconv.Itoa(s.Counts.Failures)})
	table.Render()

	if len(s.Failed) > 0 {
		fmt.Fprintln(c.out, "\nFailed:")
		table := tablewriter.NewWriter(c.out)
		table.SetHeader([]string{"Repository", "Operation", "Error"})
		for _, f := range s.Failed {
			table.Append([]string{f.Name, string(f.Op), f.Message})
		}
		table.Render()
	}

	if len(s.ReviewRequests) > 0 {
		fmt.Fprintln(c.out, "\nReview requests:")
		table := tablewriter.NewWriter(c.out)
		table.SetHeader([]string{"Repository", "URL"})
		for _, r := range s.ReviewRequests {
			table.Append([]string{r.Name, r.URL})
		}
		table.Render()
	}

	if len(s.PublishFailures) > 0 {
		fmt.Fprintln(c.out, "\nPublish failures:")
		table := tablewriter.NewWriter(c.out)
		table.SetHeader([]string{"Repository", "Stage", "Committed", "Error"})
		for _, f := range s.PublishFailures {
			table.Append([]string{f.Name, string(f.Stage), strconv.FormatBool(f.DidCommit), f.Message})
		}
		table.Render()
	}

	return nil
}

// Store persists reports to the run history
type Store struct {
	storage storage.Storage
}

// NewStore creates a notifier that saves every report
func NewStore(s storage.Storage) *Store {
	return &Store{storage: s}
}

// Notify saves the report
func (s *Store) Notify(ctx context.Context, report *domain.RunReport) error {
	if err := s.storage.SaveRun(ctx, report); err != nil {
		return fmt.Errorf("failed to save run %s: %w", report.ID, err)
	}
	return nil
}

// Multi fans a report out to every notifier. All notifiers run even when
// one fails; the errors are joined.
type Multi []Notifier

// Notify calls each notifier in order
func (m Multi) Notify(ctx context.Context, report *domain.RunReport) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

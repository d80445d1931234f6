package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kurihiro0119/github-repo-sync/internal/domain"
	"github.com/kurihiro0119/github-repo-sync/pkg/client"
)

var (
	historyLimit  int
	historyRepo   string
	historyRemote bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded runs",
	Long: `Show the most recent recorded runs, or the outcomes recorded for one
repository with --repo. With --remote the history is read from the API server
at API_ENDPOINT instead of the local store.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of entries to show")
	historyCmd.Flags().StringVar(&historyRepo, "repo", "", "show the history of one repository")
	historyCmd.Flags().BoolVar(&historyRemote, "remote", false, "read from the API server")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()

	var (
		runs    []*domain.RunReport
		entries []*domain.RepoHistoryEntry
	)
	if historyRemote {
		apiClient := client.NewClient(cfg.APIEndpoint)
		if historyRepo != "" {
			entries, err = apiClient.GetRepoHistory(historyRepo, historyLimit)
		} else {
			runs, err = apiClient.GetRuns(historyLimit)
		}
	} else {
		store, serr := getStorage(cfg)
		if serr != nil {
			return fmt.Errorf("failed to open storage: %w", serr)
		}
		defer store.Close()
		if historyRepo != "" {
			entries, err = store.GetRepoHistory(ctx, historyRepo, historyLimit)
		} else {
			runs, err = store.GetRuns(ctx, historyLimit)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if historyRepo != "" {
		if outputJSON {
			return writeJSON(entries)
		}
		printRepoHistory(entries)
		return nil
	}
	if outputJSON {
		return writeJSON(runs)
	}
	printRuns(runs)
	return nil
}

func printRuns(runs []*domain.RunReport) {
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Run", "Mode", "Device", "Finished", "Cloned", "Pulled", "Skipped", "Failures", "Committed"})
	for _, run := range runs {
		c := run.Summary.Counts
		table.Append([]string{
			run.ID,
			string(run.Mode),
			run.Device,
			run.FinishedAt.Local().Format("2006-01-02 15:04"),
			strconv.Itoa(c.Cloned),
			strconv.Itoa(c.Pulled),
			strconv.Itoa(c.Skipped),
			strconv.Itoa(c.Failures),
			strconv.Itoa(c.Committed),
		})
	}
	table.Render()
}

func printRepoHistory(entries []*domain.RepoHistoryEntry) {
	if len(entries) == 0 {
		fmt.Println("No history recorded for this repository.")
		return
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Run", "Mode", "When", "Outcome", "Detail"})
	for _, e := range entries {
		table.Append([]string{
			e.RunID,
			string(e.Mode),
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			e.Outcome,
			e.Detail,
		})
	}
	table.Render()
}

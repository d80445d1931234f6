package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kurihiro0119/github-repo-sync/internal/domain"
	"github.com/kurihiro0119/github-repo-sync/internal/git"
	"github.com/kurihiro0119/github-repo-sync/internal/lister"
	"github.com/kurihiro0119/github-repo-sync/internal/runner"
	"github.com/kurihiro0119/github-repo-sync/internal/scanner"
	"github.com/kurihiro0119/github-repo-sync/internal/status"
	"github.com/kurihiro0119/github-repo-sync/internal/syncer"
)

var requireBranch string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show branch, ahead/behind and dirty state of each working copy",
	Long: `Show the current branch, the commits ahead of and behind the upstream, and
whether the working tree is dirty, for every working copy in the output
directory that belongs to a listed repository.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the repositories that would be synced",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	statusCmd.Flags().StringVar(&requireBranch, "require-branch", "", "flag working copies that are not on this branch")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger()
	ctx := context.Background()

	r := runner.NewExecRunner()
	g := git.New(r)
	svc := syncer.NewService(newLister(cfg, r, logger), g, nil, nil, logger)

	repos, err := svc.List(ctx, syncOptions(cfg))
	if err != nil {
		return err
	}
	copies := scanner.Filter(scanner.Scan(cfg.OutputDir), lister.ShortNames(repos))

	statuses := status.NewReporter(g, cfg.Jobs).Report(ctx, copies, cfg.RequireBranch)

	if outputJSON {
		return writeJSON(statuses)
	}
	if len(statuses) == 0 {
		fmt.Println("No working copies found.")
		return nil
	}
	printStatusTable(statuses, cfg.RequireBranch)
	return nil
}

func printStatusTable(statuses []domain.RepoStatus, required string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Repository", "Branch", "Ahead", "Behind", "Dirty", "Note"})
	for _, s := range statuses {
		dirty := ""
		if s.Dirty {
			dirty = "yes"
		}
		note := s.Error
		if note == "" && s.WrongBranch {
			note = "not on " + required
		}
		table.Append([]string{
			s.Name,
			s.Branch,
			strconv.Itoa(s.Ahead),
			strconv.Itoa(s.Behind),
			dirty,
			note,
		})
	}
	table.Render()
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger()

	r := runner.NewExecRunner()
	svc := syncer.NewService(newLister(cfg, r, logger), git.New(r), nil, nil, logger)
	repos, err := svc.List(context.Background(), syncOptions(cfg))
	if err != nil {
		return err
	}

	if outputJSON {
		return writeJSON(repos)
	}
	for _, repo := range repos {
		fmt.Println(repo.FullName)
	}
	return nil
}

func writeJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

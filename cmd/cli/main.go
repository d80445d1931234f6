package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kurihiro0119/github-repo-sync/internal/config"
	"github.com/kurihiro0119/github-repo-sync/internal/git"
	"github.com/kurihiro0119/github-repo-sync/internal/hosting"
	"github.com/kurihiro0119/github-repo-sync/internal/lister"
	"github.com/kurihiro0119/github-repo-sync/internal/log"
	"github.com/kurihiro0119/github-repo-sync/internal/runner"
	"github.com/kurihiro0119/github-repo-sync/internal/storage"
	"github.com/kurihiro0119/github-repo-sync/internal/storage/postgres"
	"github.com/kurihiro0119/github-repo-sync/internal/storage/sqlite"
)

var (
	cfgFile    string
	outputDir  string
	owner      string
	limit      int
	noArchived bool
	exclude    string
	only       string
	shallow    bool
	jobs       int
	useSSH     bool
	dryRun     bool
	outputJSON bool
	quiet      bool
	debug      bool
)

// errOperationsFailed makes main exit non-zero without printing an error;
// the summary already listed the failures
var errOperationsFailed = errors.New("one or more repositories failed")

var rootCmd = &cobra.Command{
	Use:   "repo-sync",
	Short: "Keep a local mirror of your GitHub repositories in sync",
	Long: `A CLI tool that clones every repository you can access on GitHub into one
directory, pulls the ones already there, and publishes local edits back as
pull requests on a dated branch.

Run without a subcommand to clone missing repositories only.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runClone,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./config.json)")
	pf.StringVarP(&outputDir, "output-dir", "o", "", "directory to clone into (default is the parent of the working directory)")
	pf.StringVar(&owner, "owner", "", "user or organization to list (default is the authenticated user)")
	pf.IntVarP(&limit, "limit", "n", lister.DefaultLimit, "maximum repositories to list")
	pf.BoolVar(&noArchived, "no-archived", false, "skip archived repositories")
	pf.StringVar(&exclude, "exclude", "", "comma-separated glob patterns of repository names to skip")
	pf.StringVar(&only, "only", "", "comma-separated glob patterns; only matching repositories are used")
	pf.BoolVar(&shallow, "shallow", false, "clone with --depth 1")
	pf.IntVar(&jobs, "jobs", 1, "repositories processed in parallel")
	pf.BoolVar(&useSSH, "ssh", false, "clone with SSH URLs")
	pf.BoolVar(&dryRun, "dry-run", false, "show what would be done without changing anything")
	pf.BoolVar(&outputJSON, "json", false, "output in JSON format")
	pf.BoolVarP(&quiet, "quiet", "q", false, "only print the summary")
	pf.BoolVar(&debug, "debug", false, "print debug output")

	rootCmd.AddCommand(cloneCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errOperationsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// loadConfig layers changed command-line flags over the file and
// environment configuration
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		cfg.OutputDir = outputDir
	}
	if flags.Changed("owner") {
		cfg.Owner = owner
	}
	if flags.Changed("limit") {
		cfg.Limit = limit
	}
	if flags.Changed("no-archived") {
		cfg.NoArchived = noArchived
	}
	if flags.Changed("exclude") {
		cfg.Exclude = lister.SplitPatterns(exclude)
	}
	if flags.Changed("only") {
		cfg.Only = lister.SplitPatterns(only)
	}
	if flags.Changed("shallow") {
		cfg.Shallow = shallow
	}
	if flags.Changed("jobs") {
		cfg.Jobs = jobs
	}
	if flags.Changed("ssh") {
		cfg.SSH = useSSH
	}
	if flags.Lookup("require-branch") != nil && flags.Changed("require-branch") {
		cfg.RequireBranch = requireBranch
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger() *log.Logger {
	if quiet || outputJSON {
		return log.Discard()
	}
	return log.New(debug)
}

func listOptions(cfg *config.Config) lister.Options {
	return lister.Options{
		Owner:      cfg.Owner,
		Limit:      cfg.Limit,
		NoArchived: cfg.NoArchived,
		Exclude:    cfg.Exclude,
		Only:       cfg.Only,
	}
}

func newLister(cfg *config.Config, r runner.Runner, logger *log.Logger) lister.Lister {
	if cfg.Lister == "api" {
		return lister.NewGitHubLister(cfg.GitHubToken, logger)
	}
	return lister.NewGHLister(r)
}

func newReviewer(cfg *config.Config, r runner.Runner, g *git.Client) hosting.Reviewer {
	if cfg.Lister == "api" {
		return hosting.NewGitHubReviewer(cfg.GitHubToken, g)
	}
	return hosting.NewGHReviewer(r)
}

func getStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageType {
	case "postgres":
		return postgres.NewPostgresStorage(cfg.PostgresURL)
	default:
		return sqlite.NewSQLiteStorage(cfg.SQLitePath)
	}
}

func deviceName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "unknown"
	}
	return host
}

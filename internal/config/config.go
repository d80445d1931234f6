package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/kurihiro0119/github-repo-sync/internal/lister"
)

// DefaultConfigFile is read when no config path is given and it exists
const DefaultConfigFile = "config.json"

// Config holds the application configuration
type Config struct {
	// GitHub
	GitHubToken string
	Lister      string // "gh" or "api"

	// Sync
	OutputDir     string
	Owner         string
	Limit         int
	NoArchived    bool
	Exclude       []string
	Only          []string
	Shallow       bool
	Jobs          int
	RequireBranch string
	SSH           bool
	BaseBranch    string
	BranchSuffix  string // empty means hostname, "none" disables

	// Storage
	StorageType string // "sqlite" or "postgres"
	SQLitePath  string
	PostgresURL string

	// API Server
	APIPort string
	APIHost string

	// CLI
	APIEndpoint string
}

// patterns accepts either a comma-separated string or a list of strings
type patterns []string

func (p *patterns) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = lister.SplitPatterns(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("expected a string or a list of strings")
	}
	*p = nil
	for _, item := range list {
		*p = append(*p, lister.SplitPatterns(item)...)
	}
	return nil
}

// fileConfig mirrors config.json; nil fields were not set
type fileConfig struct {
	OutputDir     *string   `json:"output_dir"`
	Owner         *string   `json:"owner"`
	Limit         *int      `json:"limit"`
	NoArchived    *bool     `json:"no_archived"`
	Exclude       *patterns `json:"exclude"`
	Only          *patterns `json:"only"`
	Shallow       *bool     `json:"shallow"`
	Jobs          *int      `json:"jobs"`
	RequireBranch *string   `json:"require_branch"`
	SSH           *bool     `json:"ssh"`
	BaseBranch    *string   `json:"base_branch"`
	BranchSuffix  *string   `json:"branch_suffix"`
}

// Load builds the configuration from defaults, the JSON config file at path
// (or config.json in the working directory when path is empty), then
// environment variables. A .env file is loaded into the environment first.
func Load(path string) (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Lister:      "gh",
		OutputDir:   defaultOutputDir(),
		Limit:       lister.DefaultLimit,
		Jobs:        1,
		BaseBranch:  "main",
		StorageType: "sqlite",
		SQLitePath:  "./repo-sync.db",
		APIPort:     "8080",
		APIHost:     "localhost",
		APIEndpoint: "http://localhost:8080",
	}

	if err := cfg.applyFile(path); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return &ConfigError{Field: "config", Message: err.Error()}
	}

	var f fileConfig
	if err := json.Unmarshal(data, &f); err != nil {
		return &ConfigError{Field: "config", Message: fmt.Sprintf("%s: %v", path, err)}
	}

	setString(&c.OutputDir, f.OutputDir)
	setString(&c.Owner, f.Owner)
	setString(&c.RequireBranch, f.RequireBranch)
	setString(&c.BaseBranch, f.BaseBranch)
	setString(&c.BranchSuffix, f.BranchSuffix)
	if f.Limit != nil {
		c.Limit = *f.Limit
	}
	if f.Jobs != nil {
		c.Jobs = *f.Jobs
	}
	if f.NoArchived != nil {
		c.NoArchived = *f.NoArchived
	}
	if f.Shallow != nil {
		c.Shallow = *f.Shallow
	}
	if f.SSH != nil {
		c.SSH = *f.SSH
	}
	if f.Exclude != nil {
		c.Exclude = *f.Exclude
	}
	if f.Only != nil {
		c.Only = *f.Only
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}

func (c *Config) applyEnv() error {
	c.GitHubToken = getEnv("GITHUB_TOKEN", c.GitHubToken)
	c.Lister = getEnv("REPO_SYNC_LISTER", c.Lister)
	c.OutputDir = getEnv("REPO_SYNC_OUTPUT_DIR", c.OutputDir)
	c.Owner = getEnv("REPO_SYNC_OWNER", c.Owner)
	c.RequireBranch = getEnv("REPO_SYNC_REQUIRE_BRANCH", c.RequireBranch)
	c.BaseBranch = getEnv("REPO_SYNC_BASE_BRANCH", c.BaseBranch)
	c.BranchSuffix = getEnv("REPO_SYNC_BRANCH_SUFFIX", c.BranchSuffix)
	if v := os.Getenv("REPO_SYNC_EXCLUDE"); v != "" {
		c.Exclude = lister.SplitPatterns(v)
	}
	if v := os.Getenv("REPO_SYNC_ONLY"); v != "" {
		c.Only = lister.SplitPatterns(v)
	}

	var err error
	if c.Limit, err = getEnvInt("REPO_SYNC_LIMIT", c.Limit); err != nil {
		return err
	}
	if c.Jobs, err = getEnvInt("REPO_SYNC_JOBS", c.Jobs); err != nil {
		return err
	}
	if c.NoArchived, err = getEnvBool("REPO_SYNC_NO_ARCHIVED", c.NoArchived); err != nil {
		return err
	}
	if c.Shallow, err = getEnvBool("REPO_SYNC_SHALLOW", c.Shallow); err != nil {
		return err
	}
	if c.SSH, err = getEnvBool("REPO_SYNC_SSH", c.SSH); err != nil {
		return err
	}

	c.StorageType = getEnv("STORAGE_TYPE", c.StorageType)
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)
	c.PostgresURL = getEnv("POSTGRES_URL", c.PostgresURL)
	c.APIPort = getEnv("API_PORT", c.APIPort)
	c.APIHost = getEnv("API_HOST", c.APIHost)
	c.APIEndpoint = getEnv("API_ENDPOINT", c.APIEndpoint)
	return nil
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &ConfigError{Field: key, Message: "must be an integer"}
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, &ConfigError{Field: key, Message: "must be true or false"}
	}
	return b, nil
}

// defaultOutputDir is the parent of the working directory
func defaultOutputDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return filepath.Dir(wd)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Jobs < 1 {
		return &ConfigError{Field: "jobs", Message: "must be at least 1"}
	}
	if c.Limit < 1 {
		return &ConfigError{Field: "limit", Message: "must be at least 1"}
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return &ConfigError{Field: "output_dir", Message: "must not be empty"}
	}
	if err := lister.ValidatePatterns(c.Exclude); err != nil {
		return &ConfigError{Field: "exclude", Message: err.Error()}
	}
	if err := lister.ValidatePatterns(c.Only); err != nil {
		return &ConfigError{Field: "only", Message: err.Error()}
	}
	if c.Lister != "gh" && c.Lister != "api" {
		return &ConfigError{Field: "REPO_SYNC_LISTER", Message: "must be 'gh' or 'api'"}
	}
	if c.Lister == "api" && c.GitHubToken == "" {
		return &ConfigError{Field: "GITHUB_TOKEN", Message: "GitHub token is required when REPO_SYNC_LISTER is 'api'"}
	}
	return c.ValidateStorage()
}

// ValidateStorage checks only the storage settings, for commands that do
// not sync
func (c *Config) ValidateStorage() error {
	if c.StorageType != "sqlite" && c.StorageType != "postgres" {
		return &ConfigError{Field: "STORAGE_TYPE", Message: "must be 'sqlite' or 'postgres'"}
	}
	if c.StorageType == "postgres" && c.PostgresURL == "" {
		return &ConfigError{Field: "POSTGRES_URL", Message: "PostgreSQL URL is required when STORAGE_TYPE is 'postgres'"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

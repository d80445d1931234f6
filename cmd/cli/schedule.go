package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/kurihiro0119/github-repo-sync/internal/runner"
	"github.com/kurihiro0119/github-repo-sync/internal/schedule"
)

var (
	scheduleHour   int
	scheduleMinute int
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage the daily sync job",
}

var scheduleInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Run sync every day (cron, or Task Scheduler on Windows)",
	Args:  cobra.NoArgs,
	RunE:  runScheduleInstall,
}

var scheduleRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the daily sync job",
	Args:  cobra.NoArgs,
	RunE:  runScheduleRemove,
}

func init() {
	scheduleInstallCmd.Flags().IntVar(&scheduleHour, "hour", 2, "hour of day to run (0-23)")
	scheduleInstallCmd.Flags().IntVar(&scheduleMinute, "minute", 0, "minute of hour to run (0-59)")

	scheduleCmd.AddCommand(scheduleInstallCmd)
	scheduleCmd.AddCommand(scheduleRemoveCmd)
}

func runScheduleInstall(cmd *cobra.Command, args []string) error {
	if scheduleHour < 0 || scheduleHour > 23 || scheduleMinute < 0 || scheduleMinute > 59 {
		return fmt.Errorf("invalid time %02d:%02d", scheduleHour, scheduleMinute)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger()

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}
	dest, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return err
	}

	scheduler, err := schedule.New(runtime.GOOS, runner.NewExecRunner())
	if err != nil {
		return err
	}

	job := schedule.Job{
		Command: []string{exe, "sync", "--output-dir", dest},
		Hour:    scheduleHour,
		Minute:  scheduleMinute,
		LogFile: filepath.Join(dest, "repo-sync.log"),
	}
	if cfgFile != "" {
		abs, err := filepath.Abs(cfgFile)
		if err != nil {
			return err
		}
		job.Command = append(job.Command, "--config", abs)
	}

	if err := scheduler.Install(context.Background(), job); err != nil {
		return fmt.Errorf("failed to install schedule: %w", err)
	}
	logger.Success("Daily sync scheduled at %02d:%02d for %s", scheduleHour, scheduleMinute, dest)
	return nil
}

func runScheduleRemove(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	scheduler, err := schedule.New(runtime.GOOS, runner.NewExecRunner())
	if err != nil {
		return err
	}
	if err := scheduler.Remove(context.Background()); err != nil {
		return fmt.Errorf("failed to remove schedule: %w", err)
	}
	logger.Success("Daily sync removed")
	return nil
}

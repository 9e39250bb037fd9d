package main

import (
	"context"
	"fmt"

	"github.com/goodtune/screentime/internal/clock"
	"github.com/goodtune/screentime/internal/config"
	"github.com/goodtune/screentime/internal/usage"
	"github.com/spf13/cobra"
)

var pruneDays int

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete activity older than the retention period",
	Long:  `Run one retention sweep now. Defaults to retention.days from the configuration.`,
	Example: `  screentime prune
  screentime prune --days 30`,
	RunE: runPrune,
}

func init() {
	pruneCmd.Flags().IntVar(&pruneDays, "days", 0, "Days of activity to keep (default retention.days)")
	rootCmd.AddCommand(pruneCmd)
}

func runPrune(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	days := cfg.Retention.Days
	if pruneDays > 0 {
		days = pruneDays
	}

	store, err := openStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	retention, err := usage.NewRetentionScheduler(store.Activity(), days, cfg.Retention.Schedule, clock.RealClock{}, quietLogger())
	if err != nil {
		return err
	}

	deleted, err := retention.Sweep(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Deleted %d records older than %d days\n", deleted, days)
	return nil
}

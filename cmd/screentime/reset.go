package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/goodtune/screentime/internal/clock"
	"github.com/goodtune/screentime/internal/config"
	"github.com/goodtune/screentime/internal/usage"
	"github.com/spf13/cobra"
)

var resetConfirm bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all activity data",
	Long:  `Delete every recorded session, focus session and nudge. The profile, settings and subscription are kept.`,
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetConfirm, "yes", false, "Confirm deletion of all activity data")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetConfirm {
		return fmt.Errorf("refusing to delete activity data without --yes")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := openStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	recorder := usage.NewRecorder(store.Activity(), clock.RealClock{}, quietLogger())
	if err := recorder.ResetActivity(context.Background()); err != nil {
		return err
	}

	_, _ = color.New(color.FgGreen).Fprintln(os.Stdout, "Activity data deleted")
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/goodtune/screentime/internal/analytics"
	"github.com/goodtune/screentime/internal/clock"
	"github.com/goodtune/screentime/internal/config"
	"github.com/spf13/cobra"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Print the behavior analysis, dashboard and weekly insights",
	Long:  `Compute the behavior analysis, today's dashboard and the weekly insights from the configured store and print them.`,
	Example: `  screentime -c config.yaml analyze
  screentime analyze --json`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the reports as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

// report is the combined output of analyze.
type report struct {
	Behavior  *analytics.BehaviorAnalysis `json:"behavior"`
	Dashboard *analytics.DashboardSummary `json:"dashboard"`
	Insights  *analytics.WeeklyInsights   `json:"insights"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := quietLogger()

	store, err := openStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	engine := analytics.NewEngine(store.Activity(), store.Account(), analytics.Config{
		Clock: clock.RealClock{},
		Policy: &analytics.ScorePolicy{
			ScrollWeight: cfg.Analytics.ScrollWeight,
			FocusWeight:  cfg.Analytics.FocusWeight,
		},
	}, logger)

	ctx := context.Background()

	var r report
	if r.Behavior, err = engine.Behavior(ctx); err != nil {
		return fmt.Errorf("behavior analysis failed: %w", err)
	}
	if r.Dashboard, err = engine.Dashboard(ctx); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	if r.Insights, err = engine.Insights(ctx); err != nil {
		return fmt.Errorf("insights failed: %w", err)
	}

	if analyzeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	printReport(r)
	return nil
}

func printReport(r report) {
	cyan := color.New(color.FgCyan, color.Bold)
	bold := color.New(color.Bold)

	_, _ = cyan.Println("=== Behavior ===")
	fmt.Print("Risk Level:         ")
	_, _ = riskColor(r.Behavior.RiskLevel).Println(strings.ToUpper(string(r.Behavior.RiskLevel)))
	fmt.Printf("Scroll Ratio:       %s%%\n", r.Behavior.ScrollRatioPct)
	fmt.Printf("Productive Ratio:   %s%%\n", r.Behavior.ProductiveRatioPct)
	fmt.Printf("Avg Scroll Session: %s min\n", r.Behavior.AvgScrollSessionMin)
	fmt.Printf("Late-Night Scrolls: %d\n", r.Behavior.LateNightScrollSessions)
	fmt.Printf("Nudge Accept Rate:  %s%%\n", r.Behavior.NudgeAcceptRate)
	_, _ = bold.Println("Recommendations:")
	for _, rec := range r.Behavior.Recommendations {
		fmt.Printf("  - %s\n", rec)
	}

	_, _ = cyan.Println("\n=== Today ===")
	fmt.Printf("Name:               %s\n", r.Dashboard.Name)
	fmt.Printf("Used / Goal:        %d / %d min\n", r.Dashboard.UsedMinutes, r.Dashboard.GoalMinutes)
	fmt.Printf("Focus Saved:        %d min\n", r.Dashboard.FocusSavedMinutes)
	fmt.Printf("Focus Score:        %d\n", r.Dashboard.FocusScore)
	fmt.Printf("Streak:             %d days\n", r.Dashboard.StreakDays)

	_, _ = cyan.Println("\n=== This Week ===")
	days := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	for i, minutes := range r.Insights.WeeklyMinutes {
		fmt.Printf("  %s %4d min\n", days[i], minutes)
	}
	fmt.Printf("Top Scroll Hour:    %s:00\n", r.Insights.TopHour)
	fmt.Print("Behavior Risk:      ")
	_, _ = riskColor(r.Insights.BehaviorRisk).Println(string(r.Insights.BehaviorRisk))
	fmt.Println(r.Insights.AISentence)
}

func riskColor(level analytics.RiskLevel) *color.Color {
	switch level {
	case analytics.RiskHigh:
		return color.New(color.FgRed, color.Bold)
	case analytics.RiskMedium:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgGreen, color.Bold)
	}
}

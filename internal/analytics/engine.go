package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/goodtune/screentime/internal/clock"
	"github.com/goodtune/screentime/internal/metrics"
	"github.com/goodtune/screentime/internal/storage"
	"github.com/rs/zerolog"
)

// Report names used in metrics and logs.
const (
	ReportBehavior  = "behavior"
	ReportDashboard = "dashboard"
	ReportInsights  = "insights"
)

// Config holds engine configuration.
type Config struct {
	Clock clock.Clock
	// Policy weights the focus score. Nil selects DefaultScorePolicy; a
	// non-nil policy is used as given, zero weights included.
	Policy *ScorePolicy
}

// Engine computes reports from one snapshot of the store per call. It
// holds no mutable state and is safe for concurrent use.
type Engine struct {
	activity storage.ActivityStore
	account  storage.AccountStore
	clock    clock.Clock
	policy   ScorePolicy
	logger   zerolog.Logger
}

// NewEngine creates a new analytics engine.
func NewEngine(activity storage.ActivityStore, account storage.AccountStore, cfg Config, logger zerolog.Logger) *Engine {
	if cfg.Clock == nil {
		cfg.Clock = clock.RealClock{}
	}
	policy := DefaultScorePolicy
	if cfg.Policy != nil {
		policy = *cfg.Policy
	}

	return &Engine{
		activity: activity,
		account:  account,
		clock:    cfg.Clock,
		policy:   policy,
		logger:   logger.With().Str("component", "analytics").Logger(),
	}
}

// Behavior analyzes the whole activity log.
func (e *Engine) Behavior(ctx context.Context) (*BehaviorAnalysis, error) {
	start := time.Now()

	snap, err := e.snapshot(ctx, ReportBehavior)
	if err != nil {
		return nil, err
	}

	analysis := AnalyzeBehavior(snap.Sessions, snap.Nudges)
	metrics.SetRiskLevel(string(analysis.RiskLevel))
	e.observe(ReportBehavior, start)

	e.logger.Debug().
		Str("risk_level", string(analysis.RiskLevel)).
		Int("sessions", len(snap.Sessions)).
		Int("nudges", len(snap.Nudges)).
		Msg("Behavior analyzed")

	return &analysis, nil
}

// Dashboard computes today's summary for the profile.
func (e *Engine) Dashboard(ctx context.Context) (*DashboardSummary, error) {
	start := time.Now()

	profile, err := e.account.GetProfile(ctx)
	if err != nil {
		return nil, e.fail(ReportDashboard, fmt.Errorf("read profile: %w", err))
	}

	snap, err := e.snapshot(ctx, ReportDashboard)
	if err != nil {
		return nil, err
	}

	summary := BuildDashboard(*profile, snap, e.policy, e.clock.Now())
	e.observe(ReportDashboard, start)

	return &summary, nil
}

// Insights computes the weekly insights.
func (e *Engine) Insights(ctx context.Context) (*WeeklyInsights, error) {
	start := time.Now()

	snap, err := e.snapshot(ctx, ReportInsights)
	if err != nil {
		return nil, err
	}

	insights := BuildWeeklyInsights(snap, e.clock.Now())
	metrics.SetRiskLevel(string(insights.BehaviorRisk))
	e.observe(ReportInsights, start)

	return &insights, nil
}

func (e *Engine) snapshot(ctx context.Context, report string) (*storage.ActivitySnapshot, error) {
	snap, err := e.activity.Snapshot(ctx)
	if err != nil {
		return nil, e.fail(report, fmt.Errorf("read activity: %w", err))
	}
	return snap, nil
}

func (e *Engine) fail(report string, err error) error {
	metrics.AnalysisFailures.WithLabelValues(report).Inc()
	e.logger.Error().Err(err).Str("report", report).Msg("Analysis failed")
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

func (e *Engine) observe(report string, start time.Time) {
	metrics.AnalysisDuration.WithLabelValues(report).Observe(time.Since(start).Seconds())
}

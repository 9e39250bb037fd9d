package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/goodtune/screentime/internal/clock"
	"github.com/goodtune/screentime/internal/metrics"
	"github.com/goodtune/screentime/internal/storage"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultRetentionSchedule runs the sweep daily at 03:00.
const DefaultRetentionSchedule = "0 3 * * *"

// RetentionScheduler periodically deletes activity older than the
// retention period.
type RetentionScheduler struct {
	activity storage.ActivityStore
	keep     time.Duration
	schedule string
	clock    clock.Clock
	cron     *cron.Cron
	logger   zerolog.Logger
}

// NewRetentionScheduler creates a new retention scheduler keeping days of
// activity. The schedule is a standard five-field cron expression.
func NewRetentionScheduler(activity storage.ActivityStore, days int, schedule string, clk clock.Clock, logger zerolog.Logger) (*RetentionScheduler, error) {
	if days <= 0 {
		return nil, fmt.Errorf("retention days must be positive, got %d", days)
	}
	if schedule == "" {
		schedule = DefaultRetentionSchedule
	}
	if clk == nil {
		clk = clock.RealClock{}
	}

	rs := &RetentionScheduler{
		activity: activity,
		keep:     time.Duration(days) * 24 * time.Hour,
		schedule: schedule,
		clock:    clk,
		cron:     cron.New(cron.WithLocation(time.UTC)),
		logger:   logger.With().Str("component", "retention-scheduler").Logger(),
	}

	if _, err := rs.cron.AddFunc(schedule, func() {
		if _, err := rs.Sweep(context.Background()); err != nil {
			rs.logger.Error().Err(err).Msg("Retention sweep failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid retention schedule %q: %w", schedule, err)
	}

	return rs, nil
}

// Start begins the retention scheduler
func (rs *RetentionScheduler) Start() {
	rs.cron.Start()
	rs.logger.Info().
		Str("schedule", rs.schedule).
		Dur("keep", rs.keep).
		Msg("Retention scheduler started")
}

// Stop stops the retention scheduler and waits for a running sweep.
func (rs *RetentionScheduler) Stop() {
	<-rs.cron.Stop().Done()
	rs.logger.Info().Msg("Retention scheduler stopped")
}

// Sweep deletes activity filed before now minus the retention period and
// returns the number of records removed.
func (rs *RetentionScheduler) Sweep(ctx context.Context) (int, error) {
	cutoff := rs.clock.Now().Add(-rs.keep)

	deleted, err := rs.activity.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete activity before %s: %w", storage.FormatTimestamp(cutoff), err)
	}

	metrics.RetentionDeleted.Add(float64(deleted))
	rs.logger.Info().
		Int("records_deleted", deleted).
		Str("cutoff", storage.FormatTimestamp(cutoff)).
		Msg("Retention sweep complete")

	return deleted, nil
}

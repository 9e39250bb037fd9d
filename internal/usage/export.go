package usage

import (
	"context"
	"fmt"

	"github.com/goodtune/screentime/internal/storage"
)

// ExportLimit is the number of records of each activity kind included in an
// export.
const ExportLimit = 100

// Export is a dump of the account and the most recent activity.
type Export struct {
	Profile       *storage.Profile       `json:"profile"`
	Settings      *storage.Settings      `json:"settings"`
	Subscription  *storage.Subscription  `json:"subscription"`
	Sessions      []storage.Session      `json:"sessions"`
	FocusSessions []storage.FocusSession `json:"focus_sessions"`
	Nudges        []storage.Nudge        `json:"nudges"`
}

// BuildExport collects the account singletons and the latest ExportLimit
// sessions, focus sessions and nudges.
func BuildExport(ctx context.Context, activity storage.ActivityStore, account storage.AccountStore) (*Export, error) {
	var (
		export Export
		err    error
	)

	if export.Profile, err = account.GetProfile(ctx); err != nil {
		return nil, fmt.Errorf("export profile: %w", err)
	}
	if export.Settings, err = account.GetSettings(ctx); err != nil {
		return nil, fmt.Errorf("export settings: %w", err)
	}
	if export.Subscription, err = account.GetSubscription(ctx); err != nil {
		return nil, fmt.Errorf("export subscription: %w", err)
	}
	if export.Sessions, err = activity.RecentSessions(ctx, ExportLimit); err != nil {
		return nil, fmt.Errorf("export sessions: %w", err)
	}
	if export.FocusSessions, err = activity.RecentFocusSessions(ctx, ExportLimit); err != nil {
		return nil, fmt.Errorf("export focus sessions: %w", err)
	}
	if export.Nudges, err = activity.RecentNudges(ctx, ExportLimit); err != nil {
		return nil, fmt.Errorf("export nudges: %w", err)
	}

	return &export, nil
}

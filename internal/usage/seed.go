package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/goodtune/screentime/internal/storage"
)

var demoSessions = []storage.Session{
	{AppName: "Instagram", SessionType: storage.SessionTypeScroll, DurationMin: 28},
	{AppName: "YouTube", SessionType: storage.SessionTypeWatch, DurationMin: 20},
	{AppName: "Docs", SessionType: storage.SessionTypeWork, DurationMin: 50, Productive: true},
	{AppName: "TikTok", SessionType: storage.SessionTypeScroll, DurationMin: 32},
	{AppName: "Chrome", SessionType: storage.SessionTypeResearch, DurationMin: 25, Productive: true},
	{AppName: "Instagram", SessionType: storage.SessionTypeScroll, DurationMin: 18},
}

// Seed inserts the demo sessions when the session log is empty, one per day
// starting six days before now, each three hours into its day offset. It
// returns the number of sessions inserted.
func Seed(ctx context.Context, activity storage.ActivityStore, now time.Time) (int, error) {
	count, err := activity.CountSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	created := storage.FormatTimestamp(now)
	start := now.Add(-6 * 24 * time.Hour)
	for i, demo := range demoSessions {
		session := demo
		session.StartedAt = storage.FormatTimestamp(start.Add(time.Duration(i)*24*time.Hour + 3*time.Hour))
		session.CreatedAt = created
		if err := activity.AddSession(ctx, &session); err != nil {
			return i, fmt.Errorf("seed session: %w", err)
		}
	}
	return len(demoSessions), nil
}

package analytics

import (
	"math"
	"time"

	"github.com/goodtune/screentime/internal/storage"
)

// StreakCap bounds streak_days.
const StreakCap = 7

// Window is the trailing period used for streaks and weekly insights.
// Streaks count [now-6 days, now]; weekly minutes only apply the lower
// bound, so sessions dated later today still land on today.
const Window = 6 * 24 * time.Hour

// ScorePolicy weights today's scrolling against today's completed focus
// time. It is a heuristic: scrolling is penalized slightly more than focus
// is rewarded. Swap it out freely.
type ScorePolicy struct {
	ScrollWeight float64
	FocusWeight  float64
}

// DefaultScorePolicy is the policy used when none is configured.
var DefaultScorePolicy = ScorePolicy{ScrollWeight: 0.8, FocusWeight: 0.6}

// FocusScore returns round(100 - ScrollWeight*scrolling + FocusWeight*focusDone)
// clamped to [0, 100].
func (p ScorePolicy) FocusScore(scrolling, focusDone int) int {
	score := math.Round(100 - p.ScrollWeight*float64(scrolling) + p.FocusWeight*float64(focusDone))
	return int(math.Max(0, math.Min(100, score)))
}

// TodayTotals are the minute totals for the current UTC day.
type TodayTotals struct {
	Total     int
	Scrolling int
	FocusDone int
}

// Today sums session and focus minutes dated on now's UTC day. Sessions are
// dated by started_at and focus sessions by created_at; records whose
// timestamp does not parse are skipped.
func Today(snap *storage.ActivitySnapshot, now time.Time) TodayTotals {
	var totals TodayTotals
	for _, s := range snap.Sessions {
		start, err := s.StartTime()
		if err != nil || !sameDay(start, now) {
			continue
		}
		totals.Total += s.DurationMin
		if s.IsScroll() {
			totals.Scrolling += s.DurationMin
		}
	}
	for _, f := range snap.FocusSessions {
		created, err := storage.ParseTimestamp(f.CreatedAt)
		if err != nil || !sameDay(created, now) {
			continue
		}
		totals.FocusDone += f.CompletedMin
	}
	return totals
}

// StreakDays counts focus sessions created within the trailing window,
// capped at StreakCap.
func StreakDays(focus []storage.FocusSession, now time.Time) int {
	count := 0
	for _, f := range focus {
		created, err := storage.ParseTimestamp(f.CreatedAt)
		if err != nil || !inWindow(created, now) {
			continue
		}
		count++
	}
	return min(count, StreakCap)
}

// BuildDashboard assembles the dashboard summary for profile at now.
func BuildDashboard(profile storage.Profile, snap *storage.ActivitySnapshot, policy ScorePolicy, now time.Time) DashboardSummary {
	today := Today(snap, now)
	return DashboardSummary{
		Name:              profile.Name,
		GoalMinutes:       profile.GoalMinutes,
		UsedMinutes:       today.Total,
		FocusSavedMinutes: today.FocusDone,
		FocusScore:        policy.FocusScore(today.Scrolling, today.FocusDone),
		StreakDays:        StreakDays(snap.FocusSessions, now),
	}
}

func sameDay(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func inWindow(t, now time.Time) bool {
	return sinceWindowStart(t, now) && !t.After(now)
}

func sinceWindowStart(t, now time.Time) bool {
	return !t.Before(now.Add(-Window))
}

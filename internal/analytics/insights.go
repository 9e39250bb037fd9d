package analytics

import (
	"fmt"
	"time"

	"github.com/goodtune/screentime/internal/storage"
)

// DefaultTopHour is reported when there is no scroll data at all.
const DefaultTopHour = "22"

// WeekdayMinutes sums duration_min per weekday (time.Sunday = 0) over
// sessions started at or after the start of the trailing window.
func WeekdayMinutes(sessions []storage.Session, now time.Time) [7]int {
	var byDay [7]int
	for _, s := range sessions {
		start, err := s.StartTime()
		if err != nil || !sinceWindowStart(start, now) {
			continue
		}
		byDay[start.Weekday()] += s.DurationMin
	}
	return byDay
}

// MondayFirst reorders Sunday-first weekday totals so that index 0 is
// Monday and index 6 is Sunday.
func MondayFirst(byDay [7]int) [7]int {
	var ordered [7]int
	for i := range ordered {
		ordered[i] = byDay[(i+1)%7]
	}
	return ordered
}

// TopScrollHour returns the two-digit UTC hour with the most scroll
// sessions. Ties go to the later hour. ok is false when no scroll session
// has a parseable start time.
func TopScrollHour(sessions []storage.Session) (hour string, ok bool) {
	var counts [24]int
	for _, s := range sessions {
		if !s.IsScroll() {
			continue
		}
		start, err := s.StartTime()
		if err != nil {
			continue
		}
		counts[start.Hour()]++
	}

	best := -1
	for h := 23; h >= 0; h-- {
		if counts[h] > 0 && (best < 0 || counts[h] > counts[best]) {
			best = h
		}
	}
	if best < 0 {
		return "", false
	}
	return fmt.Sprintf("%02d", best), true
}

// BuildWeeklyInsights assembles the weekly insights at now. Weekly minutes
// cover the trailing window; the top hour looks at every scroll session.
func BuildWeeklyInsights(snap *storage.ActivitySnapshot, now time.Time) WeeklyInsights {
	behavior := AnalyzeBehavior(snap.Sessions, snap.Nudges)

	hour, ok := TopScrollHour(snap.Sessions)
	if !ok {
		hour = DefaultTopHour
	}

	return WeeklyInsights{
		WeeklyMinutes:   MondayFirst(WeekdayMinutes(snap.Sessions, now)),
		TimeSavedWeekly: append([]int(nil), PlaceholderTimeSaved...),
		NudgeAcceptRate: NudgeAcceptRate(snap.Nudges),
		AISentence:      fmt.Sprintf("Most scrolling happens after %s:00.", hour),
		TopHour:         hour,
		BehaviorRisk:    behavior.RiskLevel,
		ScrollRatioPct:  behavior.ScrollRatioPct,
	}
}

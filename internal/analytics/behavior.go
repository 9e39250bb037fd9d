package analytics

import (
	"github.com/goodtune/screentime/internal/storage"
)

// LateNightHour is the first UTC hour counted as late night.
const LateNightHour = 22

// Risk thresholds on the scroll ratio (percent) and the average scroll
// session length (minutes). A value must exceed the threshold.
const (
	highScrollRatio = 55
	highAvgScroll   = 24
	medScrollRatio  = 35
	medAvgScroll    = 16
)

// AnalyzeBehavior computes the behavior analysis over every session and
// nudge. Empty inputs yield zero metrics and a low risk level.
//
// Sessions whose started_at cannot be parsed still count toward the ratios
// and the average but are never counted as late night.
func AnalyzeBehavior(sessions []storage.Session, nudges []storage.Nudge) BehaviorAnalysis {
	var scroll, productive, scrollMinutes, lateNight int
	for _, s := range sessions {
		if s.Productive {
			productive++
		}
		if !s.IsScroll() {
			continue
		}
		scroll++
		scrollMinutes += s.DurationMin
		if start, err := s.StartTime(); err == nil && start.Hour() >= LateNightHour {
			lateNight++
		}
	}

	var avgScroll float64
	if scroll > 0 {
		avgScroll = float64(scrollMinutes) / float64(scroll)
	}

	scrollRatio := percent(scroll, len(sessions))

	first := RecommendGentleNightMode
	if lateNight > 0 {
		first = RecommendStricterNightMode
	}

	return BehaviorAnalysis{
		RiskLevel:               classifyRisk(float64(scrollRatio), avgScroll),
		ScrollRatioPct:          scrollRatio,
		ProductiveRatioPct:      percent(productive, len(sessions)),
		AvgScrollSessionMin:     NewMetric(avgScroll),
		LateNightScrollSessions: lateNight,
		NudgeAcceptRate:         NudgeAcceptRate(nudges),
		Recommendations:         []string{first, RecommendFocusBlocks, RecommendWeekdayModes},
	}
}

// classifyRisk compares the rounded scroll ratio and the unrounded average
// scroll length against the thresholds, high first.
func classifyRisk(scrollRatio, avgScroll float64) RiskLevel {
	switch {
	case scrollRatio > highScrollRatio || avgScroll > highAvgScroll:
		return RiskHigh
	case scrollRatio > medScrollRatio || avgScroll > medAvgScroll:
		return RiskMedium
	default:
		return RiskLow
	}
}

// NudgeAcceptRate is the percentage of nudges answered with start_focus.
func NudgeAcceptRate(nudges []storage.Nudge) Metric {
	accepted := 0
	for _, n := range nudges {
		if n.Response == storage.NudgeStartFocus {
			accepted++
		}
	}
	return percent(accepted, len(nudges))
}

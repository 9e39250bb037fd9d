package analytics

import (
	"encoding/json"
	"errors"
	"strconv"
)

// ErrStoreUnavailable is returned when a report cannot be computed because
// the store could not be read. No partial report accompanies it.
var ErrStoreUnavailable = errors.New("analytics: store unavailable")

// Metric is a ratio or average rounded to one decimal place. It always
// encodes with exactly one fractional digit.
type Metric float64

// NewMetric rounds v to one decimal place.
func NewMetric(v float64) Metric {
	return Metric(round1(v))
}

// MarshalJSON implements json.Marshaler.
func (m Metric) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(m), 'f', 1, 64)), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Metric) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = NewMetric(v)
	return nil
}

// String formats the metric like MarshalJSON does.
func (m Metric) String() string {
	return strconv.FormatFloat(float64(m), 'f', 1, 64)
}

// RiskLevel classifies how severe the scrolling behavior is.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Recommendation texts. The first recommendation depends on late-night
// scrolling; the other two are always given.
const (
	RecommendStricterNightMode = "Set a stricter night mode threshold after 10 PM."
	RecommendGentleNightMode   = "Keep night mode gentle reminders enabled."
	RecommendFocusBlocks       = "Use 10-15 minute focus blocks after each nudge."
	RecommendWeekdayModes      = "Prioritize study/work modes on weekdays."
)

// BehaviorAnalysis summarizes scrolling behavior over the whole activity log.
type BehaviorAnalysis struct {
	RiskLevel               RiskLevel `json:"risk_level"`
	ScrollRatioPct          Metric    `json:"scroll_ratio_pct"`
	ProductiveRatioPct      Metric    `json:"productive_ratio_pct"`
	AvgScrollSessionMin     Metric    `json:"avg_scroll_session_min"`
	LateNightScrollSessions int       `json:"late_night_scroll_sessions"`
	NudgeAcceptRate         Metric    `json:"nudge_accept_rate"`
	Recommendations         []string  `json:"recommendations"`
}

// DashboardSummary is today's headline numbers.
type DashboardSummary struct {
	Name              string `json:"name"`
	GoalMinutes       int    `json:"goal_minutes"`
	UsedMinutes       int    `json:"used_minutes"`
	FocusSavedMinutes int    `json:"focus_saved_minutes"`
	FocusScore        int    `json:"focus_score"`
	StreakDays        int    `json:"streak_days"`
}

// WeeklyInsights aggregates the trailing week. WeeklyMinutes is indexed
// Monday (0) to Sunday (6). TimeSavedWeekly is a fixed placeholder series
// and is not derived from data.
type WeeklyInsights struct {
	WeeklyMinutes   [7]int    `json:"weekly_minutes"`
	TimeSavedWeekly []int     `json:"time_saved_weekly"`
	NudgeAcceptRate Metric    `json:"nudge_accept_rate"`
	AISentence      string    `json:"ai_sentence"`
	TopHour         string    `json:"top_hour"`
	BehaviorRisk    RiskLevel `json:"behavior_risk"`
	ScrollRatioPct  Metric    `json:"scroll_ratio_pct"`
}

// PlaceholderTimeSaved is returned as time_saved_weekly.
var PlaceholderTimeSaved = []int{18, 24, 31, 36}

// round1 rounds the exact binary value of v to one decimal place. Exact
// ties go to the even digit.
func round1(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	return r
}

// percent returns 100*n/total rounded to one decimal, or 0 when total is 0.
func percent(n, total int) Metric {
	if total == 0 {
		return 0
	}
	return NewMetric(float64(n) / float64(total) * 100)
}

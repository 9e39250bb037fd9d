package analytics

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/goodtune/screentime/internal/storage"
)

func scroll(minutes int, startedAt string) storage.Session {
	return storage.Session{AppName: "Instagram", SessionType: storage.SessionTypeScroll, DurationMin: minutes, StartedAt: startedAt}
}

func work(minutes int, startedAt string) storage.Session {
	return storage.Session{AppName: "Docs", SessionType: storage.SessionTypeWork, DurationMin: minutes, Productive: true, StartedAt: startedAt}
}

func TestAnalyzeBehaviorEmpty(t *testing.T) {
	analysis := AnalyzeBehavior(nil, nil)

	if analysis.RiskLevel != RiskLow {
		t.Errorf("expected low risk, got %s", analysis.RiskLevel)
	}
	if analysis.ScrollRatioPct != 0 || analysis.ProductiveRatioPct != 0 || analysis.AvgScrollSessionMin != 0 || analysis.NudgeAcceptRate != 0 {
		t.Errorf("expected zero metrics, got %+v", analysis)
	}
	if analysis.LateNightScrollSessions != 0 {
		t.Errorf("expected no late night sessions, got %d", analysis.LateNightScrollSessions)
	}
	if len(analysis.Recommendations) != 3 || analysis.Recommendations[0] != RecommendGentleNightMode {
		t.Errorf("unexpected recommendations: %v", analysis.Recommendations)
	}
}

func TestAnalyzeBehaviorExample(t *testing.T) {
	sessions := []storage.Session{scroll(30, "2026-10-14T09:00:00Z")}
	for i := 0; i < 5; i++ {
		sessions = append(sessions, scroll(10, "2026-10-14T10:00:00Z"))
	}
	for i := 0; i < 4; i++ {
		sessions = append(sessions, work(40, "2026-10-14T11:00:00Z"))
	}

	analysis := AnalyzeBehavior(sessions, nil)

	if analysis.ScrollRatioPct != 60.0 {
		t.Errorf("expected scroll ratio 60.0, got %v", analysis.ScrollRatioPct)
	}
	if analysis.AvgScrollSessionMin != 13.3 {
		t.Errorf("expected avg scroll 13.3, got %v", analysis.AvgScrollSessionMin)
	}
	if analysis.ProductiveRatioPct != 40.0 {
		t.Errorf("expected productive ratio 40.0, got %v", analysis.ProductiveRatioPct)
	}
	if analysis.RiskLevel != RiskHigh {
		t.Errorf("expected high risk, got %s", analysis.RiskLevel)
	}
}

func TestClassifyRisk(t *testing.T) {
	tests := []struct {
		name        string
		scrollRatio float64
		avgScroll   float64
		want        RiskLevel
	}{
		{"low", 20, 10, RiskLow},
		{"ratio at medium threshold", 35, 10, RiskLow},
		{"ratio above medium threshold", 35.1, 10, RiskMedium},
		{"avg above medium threshold", 10, 16.1, RiskMedium},
		{"ratio at high threshold", 55, 10, RiskMedium},
		{"ratio above high threshold", 55.1, 0, RiskHigh},
		{"avg above high threshold", 0, 24.01, RiskHigh},
		{"avg at high threshold", 0, 24, RiskMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyRisk(tt.scrollRatio, tt.avgScroll); got != tt.want {
				t.Errorf("classifyRisk(%v, %v) = %s, want %s", tt.scrollRatio, tt.avgScroll, got, tt.want)
			}
		})
	}
}

func TestAnalyzeBehaviorLateNight(t *testing.T) {
	sessions := []storage.Session{
		scroll(10, "2026-10-13T22:00:00Z"),
		scroll(10, "2026-10-13T23:59:59Z"),
		scroll(10, "2026-10-13T21:59:59Z"),
		// 22:30 in UTC+02:00 is 20:30 UTC.
		scroll(10, "2026-10-13T22:30:00+02:00"),
		work(10, "2026-10-13T23:00:00Z"),
	}

	analysis := AnalyzeBehavior(sessions, nil)
	if analysis.LateNightScrollSessions != 2 {
		t.Errorf("expected 2 late night sessions, got %d", analysis.LateNightScrollSessions)
	}
	if analysis.Recommendations[0] != RecommendStricterNightMode {
		t.Errorf("expected stricter night mode recommendation, got %q", analysis.Recommendations[0])
	}
	if analysis.Recommendations[1] != RecommendFocusBlocks || analysis.Recommendations[2] != RecommendWeekdayModes {
		t.Errorf("unexpected fixed recommendations: %v", analysis.Recommendations[1:])
	}
}

func TestAnalyzeBehaviorMalformedTimestamp(t *testing.T) {
	sessions := []storage.Session{
		scroll(20, "not a time"),
		work(20, "2026-10-13T23:00:00Z"),
	}

	analysis := AnalyzeBehavior(sessions, nil)
	if analysis.ScrollRatioPct != 50.0 {
		t.Errorf("expected malformed session in ratio, got %v", analysis.ScrollRatioPct)
	}
	if analysis.AvgScrollSessionMin != 20.0 {
		t.Errorf("expected malformed session in average, got %v", analysis.AvgScrollSessionMin)
	}
	if analysis.LateNightScrollSessions != 0 {
		t.Errorf("expected malformed session excluded from late night, got %d", analysis.LateNightScrollSessions)
	}
}

func TestAnalyzeBehaviorRatiosBounded(t *testing.T) {
	for total := 1; total <= 12; total++ {
		for scrolls := 0; scrolls <= total; scrolls++ {
			sessions := make([]storage.Session, 0, total)
			for i := 0; i < total; i++ {
				if i < scrolls {
					sessions = append(sessions, scroll(i+1, "2026-10-14T10:00:00Z"))
				} else {
					sessions = append(sessions, work(i+1, "2026-10-14T10:00:00Z"))
				}
			}
			nudges := make([]storage.Nudge, 0, total)
			for i := 0; i < total; i++ {
				response := storage.NudgeDismiss
				if i < scrolls {
					response = storage.NudgeStartFocus
				}
				nudges = append(nudges, storage.Nudge{Response: response})
			}

			analysis := AnalyzeBehavior(sessions, nudges)
			for name, m := range map[string]Metric{
				"scroll_ratio_pct":     analysis.ScrollRatioPct,
				"productive_ratio_pct": analysis.ProductiveRatioPct,
				"nudge_accept_rate":    analysis.NudgeAcceptRate,
			} {
				if m < 0 || m > 100 {
					t.Fatalf("%s out of range: %v (%d/%d)", name, m, scrolls, total)
				}
				if NewMetric(float64(m)) != m {
					t.Fatalf("%s not rounded to one decimal: %v", name, float64(m))
				}
			}
		}
	}
}

func TestNudgeAcceptRate(t *testing.T) {
	nudges := []storage.Nudge{
		{Response: storage.NudgeStartFocus},
		{Response: storage.NudgeSnooze},
		{Response: storage.NudgeDismiss},
	}
	if got := NudgeAcceptRate(nudges); got != 33.3 {
		t.Errorf("expected 33.3, got %v", got)
	}
	if got := NudgeAcceptRate(nil); got != 0 {
		t.Errorf("expected 0 for no nudges, got %v", got)
	}
}

func TestMetricFormatting(t *testing.T) {
	data, err := json.Marshal(AnalyzeBehavior(nil, nil))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"scroll_ratio_pct":0.0`) {
		t.Errorf("expected one decimal place in %s", data)
	}

	data, err = json.Marshal(NewMetric(100.0 / 3))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "33.3" {
		t.Errorf("expected 33.3, got %s", data)
	}
}

func TestMetricRoundTripIdempotent(t *testing.T) {
	for _, v := range []float64{0, 1, 13.333333, 33.35, 60, 66.66666, 99.95, 100} {
		m := NewMetric(v)
		if NewMetric(float64(m)) != m {
			t.Errorf("rounding %v is not idempotent", v)
		}

		data, err := json.Marshal(m)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var back Metric
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if back != m {
			t.Errorf("round trip of %v gave %v", m, back)
		}

		again, _ := json.Marshal(back)
		if string(again) != string(data) {
			t.Errorf("formatting %s is not stable: %s", data, again)
		}
		if fmt.Sprint(m) != string(data) {
			t.Errorf("String() = %s, want %s", fmt.Sprint(m), data)
		}
	}
}

func TestMetricRoundingTies(t *testing.T) {
	tests := []struct {
		in   float64
		want Metric
	}{
		{10.25, 10.2},
		{10.75, 10.8},
		{0.05, 0.1},
		{35.05, 35.0},
		{100.0 / 3, 33.3},
		{66.66666, 66.7},
	}

	for _, tt := range tests {
		if got := NewMetric(tt.in); got != tt.want {
			t.Errorf("NewMetric(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAnalyzeBehaviorAverageTie(t *testing.T) {
	sessions := []storage.Session{
		scroll(10, "2026-10-14T10:00:00Z"),
		scroll(10, "2026-10-14T10:00:00Z"),
		scroll(10, "2026-10-14T10:00:00Z"),
		scroll(11, "2026-10-14T10:00:00Z"),
	}

	analysis := AnalyzeBehavior(sessions, nil)
	if analysis.AvgScrollSessionMin != 10.2 {
		t.Errorf("expected average 10.2 for mean 10.25, got %v", analysis.AvgScrollSessionMin)
	}
}

func TestAnalyzeBehaviorRatioAtMediumThreshold(t *testing.T) {
	sessions := make([]storage.Session, 0, 2000)
	for i := 0; i < 2000; i++ {
		if i < 701 {
			sessions = append(sessions, scroll(1, "2026-10-14T10:00:00Z"))
		} else {
			sessions = append(sessions, work(1, "2026-10-14T10:00:00Z"))
		}
	}

	analysis := AnalyzeBehavior(sessions, nil)
	if analysis.ScrollRatioPct != 35.0 {
		t.Errorf("expected scroll ratio 35.0, got %v", analysis.ScrollRatioPct)
	}
	if analysis.RiskLevel != RiskLow {
		t.Errorf("expected low risk at a 35.0 ratio, got %s", analysis.RiskLevel)
	}
}

package analytics

import (
	"reflect"
	"testing"

	"github.com/goodtune/screentime/internal/storage"
)

func TestMondayFirst(t *testing.T) {
	byDay := [7]int{5, 10, 0, 7, 0, 0, 3}
	got := MondayFirst(byDay)
	want := [7]int{10, 0, 7, 0, 0, 3, 5}
	if got != want {
		t.Errorf("MondayFirst(%v) = %v, want %v", byDay, got, want)
	}
}

func TestWeekdayMinutes(t *testing.T) {
	sessions := []storage.Session{
		work(10, "2026-10-12T09:00:00Z"),   // Monday
		scroll(5, "2026-10-11T09:00:00Z"),  // Sunday
		scroll(7, "2026-10-11T20:00:00Z"),  // Sunday
		work(100, "2026-10-01T09:00:00Z"),  // outside the window
		work(100, "2026-10-15T09:00:00Z"),  // Thursday, later than now
		scroll(100, "2026/10/12 09:00:00"), // malformed
	}

	got := MondayFirst(WeekdayMinutes(sessions, testNow))
	want := [7]int{10, 0, 0, 100, 0, 0, 12}
	if got != want {
		t.Errorf("weekly minutes = %v, want %v", got, want)
	}
}

func TestTopScrollHourTieBreak(t *testing.T) {
	var sessions []storage.Session
	for i := 0; i < 3; i++ {
		sessions = append(sessions, scroll(10, "2026-10-13T14:05:00Z"))
		sessions = append(sessions, scroll(10, "2026-10-13T20:10:00Z"))
	}
	sessions = append(sessions, scroll(10, "2026-10-13T09:00:00Z"))
	sessions = append(sessions, work(10, "2026-10-13T21:00:00Z"))
	sessions = append(sessions, work(10, "2026-10-13T21:00:00Z"))
	sessions = append(sessions, work(10, "2026-10-13T21:00:00Z"))
	sessions = append(sessions, work(10, "2026-10-13T21:00:00Z"))

	hour, ok := TopScrollHour(sessions)
	if !ok || hour != "20" {
		t.Errorf("TopScrollHour = %q, %v; want \"20\", true", hour, ok)
	}
}

func TestTopScrollHourPadded(t *testing.T) {
	hour, ok := TopScrollHour([]storage.Session{scroll(10, "2026-10-13T07:00:00Z")})
	if !ok || hour != "07" {
		t.Errorf("TopScrollHour = %q, %v; want \"07\", true", hour, ok)
	}
}

func TestTopScrollHourNoData(t *testing.T) {
	if _, ok := TopScrollHour([]storage.Session{work(10, "2026-10-13T07:00:00Z"), scroll(5, "bad")}); ok {
		t.Error("expected no top hour without parseable scroll sessions")
	}
}

func TestBuildWeeklyInsights(t *testing.T) {
	snap := &storage.ActivitySnapshot{
		Sessions: []storage.Session{
			scroll(30, "2026-10-14T21:00:00Z"),
			scroll(30, "2026-10-13T21:00:00Z"),
			work(60, "2026-10-12T10:00:00Z"),
			// Outside the weekly window but still counted for the top hour.
			scroll(30, "2026-09-01T21:00:00Z"),
		},
		Nudges: []storage.Nudge{
			{Response: storage.NudgeStartFocus},
			{Response: storage.NudgeSnooze},
		},
	}

	got := BuildWeeklyInsights(snap, testNow)

	if want := [7]int{60, 30, 30, 0, 0, 0, 0}; got.WeeklyMinutes != want {
		t.Errorf("weekly minutes = %v, want %v", got.WeeklyMinutes, want)
	}
	if !reflect.DeepEqual(got.TimeSavedWeekly, []int{18, 24, 31, 36}) {
		t.Errorf("unexpected time saved placeholder: %v", got.TimeSavedWeekly)
	}
	if got.NudgeAcceptRate != 50.0 {
		t.Errorf("expected accept rate 50.0, got %v", got.NudgeAcceptRate)
	}
	if got.TopHour != "21" || got.AISentence != "Most scrolling happens after 21:00." {
		t.Errorf("unexpected top hour: %q / %q", got.TopHour, got.AISentence)
	}
	if got.ScrollRatioPct != 75.0 || got.BehaviorRisk != RiskHigh {
		t.Errorf("unexpected embedded behavior: %v %s", got.ScrollRatioPct, got.BehaviorRisk)
	}
}

func TestBuildWeeklyInsightsEmpty(t *testing.T) {
	got := BuildWeeklyInsights(&storage.ActivitySnapshot{}, testNow)

	if got.WeeklyMinutes != [7]int{} {
		t.Errorf("expected zero weekly minutes, got %v", got.WeeklyMinutes)
	}
	if got.TopHour != DefaultTopHour || got.AISentence != "Most scrolling happens after 22:00." {
		t.Errorf("unexpected default sentence: %q", got.AISentence)
	}
	if got.BehaviorRisk != RiskLow || got.ScrollRatioPct != 0 || got.NudgeAcceptRate != 0 {
		t.Errorf("unexpected empty insights: %+v", got)
	}
}

func TestPlaceholderNotShared(t *testing.T) {
	first := BuildWeeklyInsights(&storage.ActivitySnapshot{}, testNow)
	first.TimeSavedWeekly[0] = 999

	second := BuildWeeklyInsights(&storage.ActivitySnapshot{}, testNow)
	if second.TimeSavedWeekly[0] != 18 {
		t.Errorf("placeholder was mutated through a previous result: %v", second.TimeSavedWeekly)
	}
}

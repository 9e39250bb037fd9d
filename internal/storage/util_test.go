package storage

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{"utc", "2026-10-14T09:30:00Z", want},
		{"offset", "2026-10-14T11:30:00+02:00", want},
		{"fractional", "2026-10-14T09:30:00.000Z", want},
		{"naive", "2026-10-14T09:30:00", want},
		{"space separated", "2026-10-14 09:30:00", want},
		{"minutes only", "2026-10-14T09:30", want},
		{"date only", "2026-10-14", time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)},
		{"padded", "  2026-10-14T09:30:00Z ", want},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.value)
			if err != nil {
				t.Fatalf("ParseTimestamp(%q) error: %v", tt.value, err)
			}
			if !got.Equal(tt.want) || got.Location() != time.UTC {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseTimestampMalformed(t *testing.T) {
	for _, value := range []string{"", "yesterday", "14/10/2026", "2026-13-01"} {
		if _, err := ParseTimestamp(value); err == nil {
			t.Errorf("expected error for %q", value)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2026, 10, 14, 11, 30, 15, 999, time.FixedZone("CEST", 2*3600))
	if got := FormatTimestamp(ts); got != "2026-10-14T09:30:15Z" {
		t.Errorf("FormatTimestamp = %s", got)
	}
}

func TestRecordTime(t *testing.T) {
	if got, ok := RecordTime("2026-10-14T00:00:00Z", "2020-01-01T00:00:00Z"); !ok || got.Year() != 2026 {
		t.Errorf("expected primary timestamp, got %v %v", got, ok)
	}
	if got, ok := RecordTime("garbage", "2020-01-01T00:00:00Z"); !ok || got.Year() != 2020 {
		t.Errorf("expected fallback timestamp, got %v %v", got, ok)
	}
	if _, ok := RecordTime("garbage", ""); ok {
		t.Error("expected no record time")
	}
}

func TestSortSessionsRecent(t *testing.T) {
	sessions := []Session{
		{ID: 1, StartedAt: "2026-10-12T00:00:00Z"},
		{ID: 2, StartedAt: "2026-10-14T00:00:00Z"},
		{ID: 3, StartedAt: "2026-10-12T00:00:00Z"},
	}
	SortSessionsRecent(sessions)

	want := []int64{2, 3, 1}
	for i, id := range want {
		if sessions[i].ID != id {
			t.Fatalf("position %d: expected id %d, got %d", i, id, sessions[i].ID)
		}
	}
}

func TestLimit(t *testing.T) {
	items := []int{1, 2, 3}
	if got := Limit(items, 2); len(got) != 2 {
		t.Errorf("expected 2 items, got %d", len(got))
	}
	if got := Limit(items, 0); len(got) != 3 {
		t.Errorf("expected all items, got %d", len(got))
	}
	if got := Limit(items, 10); len(got) != 3 {
		t.Errorf("expected all items, got %d", len(got))
	}
}

func TestNudgeResponseUnmarshal(t *testing.T) {
	var n Nudge
	if err := json.Unmarshal([]byte(`{"response":"snooze"}`), &n); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if n.Response != NudgeSnooze {
		t.Errorf("expected snooze, got %s", n.Response)
	}

	for _, response := range []string{"SNOOZE", "Start_Focus", "maybe", ""} {
		var rejected Nudge
		data := []byte(`{"response":"` + response + `"}`)
		if err := json.Unmarshal(data, &rejected); err == nil {
			t.Errorf("expected error for response %q", response)
		}
	}
}

func TestDefaults(t *testing.T) {
	now := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	sub := DefaultSubscription(now)
	if sub.TrialEndsAt != "2026-10-28T00:00:00Z" {
		t.Errorf("unexpected trial end: %s", sub.TrialEndsAt)
	}
	if p := DefaultProfile(now); p.GoalMinutes != 120 || p.CreatedAt != "2026-10-14T00:00:00Z" {
		t.Errorf("unexpected profile: %+v", p)
	}
}

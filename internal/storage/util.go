package storage

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// TimestampLayout is the wire and storage format of all timestamps:
// UTC, second precision, Z suffix.
const TimestampLayout = "2006-01-02T15:04:05Z"

// Layouts accepted for client-supplied timestamps, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// EnsureDir ensures a directory exists with default permissions.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(TimestampLayout)
}

// ParseTimestamp parses a stored or client-supplied timestamp and returns it
// in UTC. Values without a zone are taken to be UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("malformed timestamp %q", value)
}

// RecordTime returns the time a record is filed under for retention. The
// primary timestamp wins when it parses, otherwise the fallback is used.
func RecordTime(primary, fallback string) (time.Time, bool) {
	if t, err := ParseTimestamp(primary); err == nil {
		return t, true
	}
	if t, err := ParseTimestamp(fallback); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// SortSessionsRecent orders sessions by started_at descending, the order
// the export uses. Ties keep their insertion order reversed.
func SortSessionsRecent(sessions []Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].StartedAt == sessions[j].StartedAt {
			return sessions[i].ID > sessions[j].ID
		}
		return sessions[i].StartedAt > sessions[j].StartedAt
	})
}

// SortFocusSessionsRecent orders focus sessions by created_at descending.
func SortFocusSessionsRecent(focus []FocusSession) {
	sort.SliceStable(focus, func(i, j int) bool {
		if focus[i].CreatedAt == focus[j].CreatedAt {
			return focus[i].ID > focus[j].ID
		}
		return focus[i].CreatedAt > focus[j].CreatedAt
	})
}

// SortNudgesRecent orders nudges by created_at descending.
func SortNudgesRecent(nudges []Nudge) {
	sort.SliceStable(nudges, func(i, j int) bool {
		if nudges[i].CreatedAt == nudges[j].CreatedAt {
			return nudges[i].ID > nudges[j].ID
		}
		return nudges[i].CreatedAt > nudges[j].CreatedAt
	})
}

// Limit truncates items to at most n entries. A non-positive n keeps all.
func Limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

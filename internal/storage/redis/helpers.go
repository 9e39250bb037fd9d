package redis

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/goodtune/screentime/internal/storage"
)

// decodeRecords converts an activity hash into records ordered by ID. The
// ID lives in the hash field, not in the encoded value.
func decodeRecords[T any](data map[string]string, setID func(*T, int64)) ([]T, error) {
	ids := make([]int64, 0, len(data))
	byID := make(map[int64]string, len(data))
	for field, value := range data {
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse record id %q: %w", field, err)
		}
		ids = append(ids, id)
		byID[id] = value
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	items := make([]T, 0, len(ids))
	for _, id := range ids {
		var item T
		if err := json.Unmarshal([]byte(byID[id]), &item); err != nil {
			return nil, fmt.Errorf("failed to decode record %d: %w", id, err)
		}
		setID(&item, id)
		items = append(items, item)
	}
	return items, nil
}

func setSessionID(s *storage.Session, id int64)           { s.ID = id }
func setFocusSessionID(f *storage.FocusSession, id int64) { f.ID = id }
func setNudgeID(n *storage.Nudge, id int64)               { n.ID = id }

// decodeSingleton parses an account value stored with GET/SET.
func decodeSingleton[T any](value string) (*T, error) {
	if value == "" {
		return nil, storage.ErrNotFound
	}
	var item T
	if err := json.Unmarshal([]byte(value), &item); err != nil {
		return nil, fmt.Errorf("failed to decode account value: %w", err)
	}
	return &item, nil
}

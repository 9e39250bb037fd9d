package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/goodtune/screentime/internal/storage"
	"github.com/redis/go-redis/v9"
)

var appendRecord = redis.NewScript(appendRecordScript)

type activityStore struct {
	client *redis.Client
}

func (s *activityStore) insert(ctx context.Context, hash string, record any) (int64, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return 0, fmt.Errorf("failed to encode record: %w", err)
	}
	id, err := appendRecord.Run(ctx, s.client, []string{sequenceKey(hash), hash}, string(payload)).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to append to %s: %w", hash, err)
	}
	return id, nil
}

func (s *activityStore) AddSession(ctx context.Context, session *storage.Session) error {
	id, err := s.insert(ctx, keySessions, session)
	if err != nil {
		return err
	}
	session.ID = id
	return nil
}

func (s *activityStore) AddFocusSession(ctx context.Context, focus *storage.FocusSession) error {
	id, err := s.insert(ctx, keyFocusSessions, focus)
	if err != nil {
		return err
	}
	focus.ID = id
	return nil
}

func (s *activityStore) AddNudge(ctx context.Context, nudge *storage.Nudge) error {
	id, err := s.insert(ctx, keyNudges, nudge)
	if err != nil {
		return err
	}
	nudge.ID = id
	return nil
}

func (s *activityStore) CountSessions(ctx context.Context) (int, error) {
	n, err := s.client.HLen(ctx, keySessions).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return int(n), nil
}

func (s *activityStore) RecentSessions(ctx context.Context, limit int) ([]storage.Session, error) {
	data, err := s.client.HGetAll(ctx, keySessions).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}
	sessions, err := decodeRecords(data, setSessionID)
	if err != nil {
		return nil, err
	}
	storage.SortSessionsRecent(sessions)
	return storage.Limit(sessions, limit), nil
}

func (s *activityStore) RecentFocusSessions(ctx context.Context, limit int) ([]storage.FocusSession, error) {
	data, err := s.client.HGetAll(ctx, keyFocusSessions).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read focus sessions: %w", err)
	}
	focus, err := decodeRecords(data, setFocusSessionID)
	if err != nil {
		return nil, err
	}
	storage.SortFocusSessionsRecent(focus)
	return storage.Limit(focus, limit), nil
}

func (s *activityStore) RecentNudges(ctx context.Context, limit int) ([]storage.Nudge, error) {
	data, err := s.client.HGetAll(ctx, keyNudges).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read nudges: %w", err)
	}
	nudges, err := decodeRecords(data, setNudgeID)
	if err != nil {
		return nil, err
	}
	storage.SortNudgesRecent(nudges)
	return storage.Limit(nudges, limit), nil
}

// Snapshot reads the three activity hashes in a single MULTI/EXEC block.
func (s *activityStore) Snapshot(ctx context.Context) (*storage.ActivitySnapshot, error) {
	var sessionsCmd, focusCmd, nudgesCmd *redis.MapStringStringCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		sessionsCmd = pipe.HGetAll(ctx, keySessions)
		focusCmd = pipe.HGetAll(ctx, keyFocusSessions)
		nudgesCmd = pipe.HGetAll(ctx, keyNudges)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read activity: %w", err)
	}

	sessions, err := decodeRecords(sessionsCmd.Val(), setSessionID)
	if err != nil {
		return nil, err
	}
	focus, err := decodeRecords(focusCmd.Val(), setFocusSessionID)
	if err != nil {
		return nil, err
	}
	nudges, err := decodeRecords(nudgesCmd.Val(), setNudgeID)
	if err != nil {
		return nil, err
	}

	return &storage.ActivitySnapshot{
		Sessions:      sessions,
		FocusSessions: focus,
		Nudges:        nudges,
	}, nil
}

func (s *activityStore) DeleteAll(ctx context.Context) error {
	if err := s.client.Del(ctx, keySessions, keyFocusSessions, keyNudges).Err(); err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	return nil
}

func (s *activityStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return 0, err
	}

	before := func(primary, fallback string) bool {
		t, ok := storage.RecordTime(primary, fallback)
		return ok && t.Before(cutoff)
	}

	expired := map[string][]string{}
	for _, session := range snap.Sessions {
		if before(session.StartedAt, session.CreatedAt) {
			expired[keySessions] = append(expired[keySessions], strconv.FormatInt(session.ID, 10))
		}
	}
	for _, focus := range snap.FocusSessions {
		if before(focus.CreatedAt, "") {
			expired[keyFocusSessions] = append(expired[keyFocusSessions], strconv.FormatInt(focus.ID, 10))
		}
	}
	for _, nudge := range snap.Nudges {
		if before(nudge.CreatedAt, "") {
			expired[keyNudges] = append(expired[keyNudges], strconv.FormatInt(nudge.ID, 10))
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}

	var cmds []*redis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for hash, ids := range expired {
			cmds = append(cmds, pipe.HDel(ctx, hash, ids...))
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired activity: %w", err)
	}

	deleted := 0
	for _, cmd := range cmds {
		deleted += int(cmd.Val())
	}
	return deleted, nil
}

package bolt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodtune/screentime/internal/storage"
	"go.etcd.io/bbolt"
)

type activityStore struct {
	db *bbolt.DB
}

func (s *activityStore) AddSession(ctx context.Context, session *storage.Session) error {
	return appendBucketValue(ctx, s.db, bucketSessions, session, func(id int64) { session.ID = id })
}

func (s *activityStore) AddFocusSession(ctx context.Context, focus *storage.FocusSession) error {
	return appendBucketValue(ctx, s.db, bucketFocusSessions, focus, func(id int64) { focus.ID = id })
}

func (s *activityStore) AddNudge(ctx context.Context, nudge *storage.Nudge) error {
	return appendBucketValue(ctx, s.db, bucketNudges, nudge, func(id int64) { nudge.ID = id })
}

func (s *activityStore) CountSessions(ctx context.Context) (int, error) {
	count := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if b := tx.Bucket([]byte(bucketSessions)); b != nil {
			count = b.Stats().KeyN
		}
		return nil
	})
	return count, err
}

func (s *activityStore) RecentSessions(ctx context.Context, limit int) ([]storage.Session, error) {
	sessions, err := listBucket[storage.Session](ctx, s.db, bucketSessions)
	if err != nil {
		return nil, err
	}
	storage.SortSessionsRecent(sessions)
	return storage.Limit(sessions, limit), nil
}

func (s *activityStore) RecentFocusSessions(ctx context.Context, limit int) ([]storage.FocusSession, error) {
	focus, err := listBucket[storage.FocusSession](ctx, s.db, bucketFocusSessions)
	if err != nil {
		return nil, err
	}
	storage.SortFocusSessionsRecent(focus)
	return storage.Limit(focus, limit), nil
}

func (s *activityStore) RecentNudges(ctx context.Context, limit int) ([]storage.Nudge, error) {
	nudges, err := listBucket[storage.Nudge](ctx, s.db, bucketNudges)
	if err != nil {
		return nil, err
	}
	storage.SortNudgesRecent(nudges)
	return storage.Limit(nudges, limit), nil
}

// Snapshot reads all three buckets inside one read transaction.
func (s *activityStore) Snapshot(ctx context.Context) (*storage.ActivitySnapshot, error) {
	snap := &storage.ActivitySnapshot{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		if snap.Sessions, err = decodeBucket[storage.Session](ctx, tx, bucketSessions); err != nil {
			return fmt.Errorf("read sessions: %w", err)
		}
		if snap.FocusSessions, err = decodeBucket[storage.FocusSession](ctx, tx, bucketFocusSessions); err != nil {
			return fmt.Errorf("read focus sessions: %w", err)
		}
		if snap.Nudges, err = decodeBucket[storage.Nudge](ctx, tx, bucketNudges); err != nil {
			return fmt.Errorf("read nudges: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *activityStore) DeleteAll(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		for _, name := range activityBuckets {
			if err := tx.DeleteBucket([]byte(name)); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
				return fmt.Errorf("drop bucket %s: %w", name, err)
			}
			if _, err := tx.CreateBucket([]byte(name)); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
}

func (s *activityStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	before := func(primary, fallback string) bool {
		t, ok := storage.RecordTime(primary, fallback)
		return ok && t.Before(cutoff)
	}

	deleted := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		n, err := deleteMatching(ctx, tx, bucketSessions, func(session storage.Session) bool {
			return before(session.StartedAt, session.CreatedAt)
		})
		if err != nil {
			return err
		}
		deleted += n

		n, err = deleteMatching(ctx, tx, bucketFocusSessions, func(focus storage.FocusSession) bool {
			return before(focus.CreatedAt, "")
		})
		if err != nil {
			return err
		}
		deleted += n

		n, err = deleteMatching(ctx, tx, bucketNudges, func(nudge storage.Nudge) bool {
			return before(nudge.CreatedAt, "")
		})
		if err != nil {
			return err
		}
		deleted += n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

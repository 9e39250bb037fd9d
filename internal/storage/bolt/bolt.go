package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/goodtune/screentime/internal/storage"
	"go.etcd.io/bbolt"
)

const (
	bucketSessions      = "sessions"
	bucketFocusSessions = "focus_sessions"
	bucketNudges        = "nudges"
	bucketAccount       = "account"
)

var activityBuckets = []string{bucketSessions, bucketFocusSessions, bucketNudges}

// Store implements the storage.Store interface using bbolt.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store.
func Open(path string) (*Store, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.ensureAccount(time.Now()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return storage.EnsureDir(dir)
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range append(activityBuckets, bucketAccount) {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
}

// ensureAccount writes the default singletons that are not present yet.
func (s *Store) ensureAccount(now time.Time) error {
	defaults := map[string]any{
		keyProfile:      storage.DefaultProfile(now),
		keySettings:     storage.DefaultSettings(now),
		keySubscription: storage.DefaultSubscription(now),
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketAccount))
		for key, value := range defaults {
			if b.Get([]byte(key)) != nil {
				continue
			}
			data, err := marshal(value)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(key), data); err != nil {
				return fmt.Errorf("init %s: %w", key, err)
			}
		}
		return nil
	})
}

// Close closes the underlying store database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Activity returns the activity store.
func (s *Store) Activity() storage.ActivityStore { return &activityStore{db: s.db} }

// Account returns the account store.
func (s *Store) Account() storage.AccountStore { return &accountStore{db: s.db} }

func marshal(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}
	return data, nil
}

func unmarshal(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal value: %w", err)
	}
	return nil
}

// itob encodes a sequence number so that keys sort in insertion order.
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// decodeBucket reads every value of bucket inside an open transaction.
func decodeBucket[T any](ctx context.Context, tx *bbolt.Tx, bucket string) ([]T, error) {
	items := make([]T, 0)
	b := tx.Bucket([]byte(bucket))
	if b == nil {
		return items, nil
	}
	err := b.ForEach(func(_, v []byte) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var item T
		if err := unmarshal(v, &item); err != nil {
			return err
		}
		items = append(items, item)
		return nil
	})
	return items, err
}

func listBucket[T any](ctx context.Context, db *bbolt.DB, bucket string) ([]T, error) {
	var items []T
	err := db.View(func(tx *bbolt.Tx) error {
		var err error
		items, err = decodeBucket[T](ctx, tx, bucket)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// appendBucketValue stores value under the bucket's next sequence number,
// calling assign with the new ID before the value is marshalled.
func appendBucketValue(ctx context.Context, db *bbolt.DB, bucket string, value any, assign func(id int64)) error {
	return db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("bucket missing: %s", bucket)
		}
		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}
		assign(int64(seq))
		data, err := marshal(value)
		if err != nil {
			return err
		}
		return b.Put(itob(seq), data)
	})
}

func getBucketValue[T any](ctx context.Context, db *bbolt.DB, bucket string, key string) (*T, error) {
	var item *T
	err := db.View(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return storage.ErrNotFound
		}
		value := b.Get([]byte(key))
		if value == nil {
			return storage.ErrNotFound
		}
		var result T
		if err := unmarshal(value, &result); err != nil {
			return err
		}
		item = &result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func putBucketValue(ctx context.Context, db *bbolt.DB, bucket string, key string, value any) error {
	data, err := marshal(value)
	if err != nil {
		return err
	}
	return db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("bucket missing: %s", bucket)
		}
		return b.Put([]byte(key), data)
	})
}

// deleteMatching removes every value in bucket for which match returns true.
func deleteMatching[T any](ctx context.Context, tx *bbolt.Tx, bucket string, match func(T) bool) (int, error) {
	b := tx.Bucket([]byte(bucket))
	if b == nil {
		return 0, nil
	}

	var toDelete [][]byte
	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		var item T
		if err := unmarshal(v, &item); err != nil {
			return 0, err
		}
		if match(item) {
			toDelete = append(toDelete, append([]byte(nil), k...))
		}
	}

	for _, key := range toDelete {
		if err := b.Delete(key); err != nil {
			return 0, fmt.Errorf("delete from %s: %w", bucket, err)
		}
	}
	return len(toDelete), nil
}

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/goodtune/screentime/internal/config"
	"github.com/goodtune/screentime/internal/storage"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "screentime:"

// Keys of the activity hashes. Each hash maps record ID to the JSON
// encoded record.
const (
	keySessions      = keyPrefix + "sessions"
	keyFocusSessions = keyPrefix + "focus_sessions"
	keyNudges        = keyPrefix + "nudges"
)

var (
	keyProfile      = fmt.Sprintf("%sprofile:%d", keyPrefix, storage.AccountID)
	keySettings     = fmt.Sprintf("%ssettings:%d", keyPrefix, storage.AccountID)
	keySubscription = fmt.Sprintf("%ssubscription:%d", keyPrefix, storage.AccountID)
)

func sequenceKey(hash string) string {
	return keyPrefix + "seq:" + hash[len(keyPrefix):]
}

// Store implements the storage.Store interface using Redis
type Store struct {
	client        *redis.Client
	activityStore *activityStore
	accountStore  *accountStore
}

// Open creates a new Redis-backed storage instance
func Open(cfg config.RedisConfig) (*Store, error) {
	// Parse timeouts
	dialTimeout, err := time.ParseDuration(cfg.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid dial_timeout: %w", err)
	}

	readTimeout, err := time.ParseDuration(cfg.ReadTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid read_timeout: %w", err)
	}

	writeTimeout, err := time.ParseDuration(cfg.WriteTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid write_timeout: %w", err)
	}

	// Determine address
	addr := cfg.Host
	if cfg.Port > 0 {
		addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  dialTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	store := &Store{
		client:        client,
		activityStore: &activityStore{client: client},
		accountStore:  &accountStore{client: client},
	}

	if err := store.accountStore.ensureDefaults(ctx, time.Now()); err != nil {
		_ = client.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// Activity returns the ActivityStore implementation
func (s *Store) Activity() storage.ActivityStore {
	return s.activityStore
}

// Account returns the AccountStore implementation
func (s *Store) Account() storage.AccountStore {
	return s.accountStore
}

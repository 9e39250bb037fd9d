package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/goodtune/screentime/internal/storage"
	"github.com/redis/go-redis/v9"
)

var initAccount = redis.NewScript(initAccountScript)

type accountStore struct {
	client *redis.Client
}

func (s *accountStore) ensureDefaults(ctx context.Context, now time.Time) error {
	keys := []string{keyProfile, keySettings, keySubscription}
	values := []any{storage.DefaultProfile(now), storage.DefaultSettings(now), storage.DefaultSubscription(now)}

	args := make([]any, 0, len(values))
	for _, value := range values {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode account defaults: %w", err)
		}
		args = append(args, string(data))
	}

	if err := initAccount.Run(ctx, s.client, keys, args...).Err(); err != nil {
		return fmt.Errorf("failed to initialize account: %w", err)
	}
	return nil
}

func (s *accountStore) get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

func (s *accountStore) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *accountStore) GetProfile(ctx context.Context) (*storage.Profile, error) {
	value, err := s.get(ctx, keyProfile)
	if err != nil {
		return nil, err
	}
	return decodeSingleton[storage.Profile](value)
}

func (s *accountStore) UpdateProfile(ctx context.Context, profile storage.Profile) error {
	return s.set(ctx, keyProfile, profile)
}

func (s *accountStore) GetSettings(ctx context.Context) (*storage.Settings, error) {
	value, err := s.get(ctx, keySettings)
	if err != nil {
		return nil, err
	}
	return decodeSingleton[storage.Settings](value)
}

func (s *accountStore) UpdateSettings(ctx context.Context, settings storage.Settings) error {
	return s.set(ctx, keySettings, settings)
}

func (s *accountStore) GetSubscription(ctx context.Context) (*storage.Subscription, error) {
	value, err := s.get(ctx, keySubscription)
	if err != nil {
		return nil, err
	}
	return decodeSingleton[storage.Subscription](value)
}

func (s *accountStore) UpdateSubscription(ctx context.Context, subscription storage.Subscription) error {
	return s.set(ctx, keySubscription, subscription)
}

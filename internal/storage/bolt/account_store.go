package bolt

import (
	"context"
	"fmt"

	"github.com/goodtune/screentime/internal/storage"
	"go.etcd.io/bbolt"
)

var (
	keyProfile      = fmt.Sprintf("profile:%d", storage.AccountID)
	keySettings     = fmt.Sprintf("settings:%d", storage.AccountID)
	keySubscription = fmt.Sprintf("subscription:%d", storage.AccountID)
)

type accountStore struct {
	db *bbolt.DB
}

func (s *accountStore) GetProfile(ctx context.Context) (*storage.Profile, error) {
	return getBucketValue[storage.Profile](ctx, s.db, bucketAccount, keyProfile)
}

func (s *accountStore) UpdateProfile(ctx context.Context, profile storage.Profile) error {
	return putBucketValue(ctx, s.db, bucketAccount, keyProfile, profile)
}

func (s *accountStore) GetSettings(ctx context.Context) (*storage.Settings, error) {
	return getBucketValue[storage.Settings](ctx, s.db, bucketAccount, keySettings)
}

func (s *accountStore) UpdateSettings(ctx context.Context, settings storage.Settings) error {
	return putBucketValue(ctx, s.db, bucketAccount, keySettings, settings)
}

func (s *accountStore) GetSubscription(ctx context.Context) (*storage.Subscription, error) {
	return getBucketValue[storage.Subscription](ctx, s.db, bucketAccount, keySubscription)
}

func (s *accountStore) UpdateSubscription(ctx context.Context, subscription storage.Subscription) error {
	return putBucketValue(ctx, s.db, bucketAccount, keySubscription, subscription)
}

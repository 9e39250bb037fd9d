package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a record is missing from storage.
var ErrNotFound = errors.New("storage: record not found")

// AccountID is the well-known key of the single implicit profile. Profile,
// settings and subscription are stored once under this key.
const AccountID = 1

// Store represents the root storage interface.
type Store interface {
	Close() error
	Activity() ActivityStore
	Account() AccountStore
}

// ActivityStore manages the append-only activity log: app-usage sessions,
// focus sessions and nudges.
type ActivityStore interface {
	// AddSession inserts a session and sets its ID.
	AddSession(ctx context.Context, session *Session) error
	// AddFocusSession inserts a focus session and sets its ID.
	AddFocusSession(ctx context.Context, focus *FocusSession) error
	// AddNudge inserts a nudge and sets its ID.
	AddNudge(ctx context.Context, nudge *Nudge) error

	CountSessions(ctx context.Context) (int, error)

	// RecentSessions returns up to limit sessions ordered by started_at descending.
	RecentSessions(ctx context.Context, limit int) ([]Session, error)
	// RecentFocusSessions returns up to limit focus sessions ordered by created_at descending.
	RecentFocusSessions(ctx context.Context, limit int) ([]FocusSession, error)
	// RecentNudges returns up to limit nudges ordered by created_at descending.
	RecentNudges(ctx context.Context, limit int) ([]Nudge, error)

	// Snapshot reads every session, focus session and nudge in one
	// consistent read.
	Snapshot(ctx context.Context) (*ActivitySnapshot, error)

	// DeleteAll removes all activity records.
	DeleteAll(ctx context.Context) error
	// DeleteBefore removes activity records older than cutoff and returns
	// the number of records deleted.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// AccountStore manages the always-present singletons of the implicit
// profile. They are created when the store is opened and are only ever
// updated in place.
type AccountStore interface {
	GetProfile(ctx context.Context) (*Profile, error)
	UpdateProfile(ctx context.Context, profile Profile) error
	GetSettings(ctx context.Context) (*Settings, error)
	UpdateSettings(ctx context.Context, settings Settings) error
	GetSubscription(ctx context.Context) (*Subscription, error)
	UpdateSubscription(ctx context.Context, subscription Subscription) error
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goodtune/screentime/internal/storage"
)

type accountStore struct {
	db *sql.DB
}

func (s *accountStore) GetProfile(ctx context.Context) (*storage.Profile, error) {
	var p storage.Profile
	err := s.db.QueryRowContext(ctx,
		`SELECT name, goal_minutes, timezone, created_at, updated_at FROM profile WHERE id = ?`,
		storage.AccountID,
	).Scan(&p.Name, &p.GoalMinutes, &p.Timezone, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "profile")
	}
	return &p, nil
}

func (s *accountStore) UpdateProfile(ctx context.Context, p storage.Profile) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE profile SET name = ?, goal_minutes = ?, timezone = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.GoalMinutes, p.Timezone, p.UpdatedAt, storage.AccountID,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func (s *accountStore) GetSettings(ctx context.Context) (*storage.Settings, error) {
	var st storage.Settings
	err := s.db.QueryRowContext(ctx,
		`SELECT study_mode, work_mode, sleep_mode, nudge_enabled, nudge_threshold_min, theme, onboarding_done, updated_at
		FROM settings WHERE id = ?`,
		storage.AccountID,
	).Scan(&st.StudyMode, &st.WorkMode, &st.SleepMode, &st.NudgeEnabled, &st.NudgeThresholdMin, &st.Theme, &st.OnboardingDone, &st.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "settings")
	}
	return &st, nil
}

func (s *accountStore) UpdateSettings(ctx context.Context, st storage.Settings) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE settings
		SET study_mode = ?, work_mode = ?, sleep_mode = ?, nudge_enabled = ?, nudge_threshold_min = ?, theme = ?, onboarding_done = ?, updated_at = ?
		WHERE id = ?`,
		boolToInt(st.StudyMode), boolToInt(st.WorkMode), boolToInt(st.SleepMode), boolToInt(st.NudgeEnabled),
		st.NudgeThresholdMin, st.Theme, boolToInt(st.OnboardingDone), st.UpdatedAt, storage.AccountID,
	)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

func (s *accountStore) GetSubscription(ctx context.Context) (*storage.Subscription, error) {
	var sub storage.Subscription
	var trialEndsAt sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT plan, trial_ends_at, updated_at FROM subscription WHERE id = ?`,
		storage.AccountID,
	).Scan(&sub.Plan, &trialEndsAt, &sub.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "subscription")
	}
	sub.TrialEndsAt = trialEndsAt.String
	return &sub, nil
}

func (s *accountStore) UpdateSubscription(ctx context.Context, sub storage.Subscription) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE subscription SET plan = ?, trial_ends_at = ?, updated_at = ? WHERE id = ?`,
		sub.Plan, sub.TrialEndsAt, sub.UpdatedAt, storage.AccountID,
	)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	return nil
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	return fmt.Errorf("get %s: %w", what, err)
}

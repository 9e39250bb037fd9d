package usage

import (
	"context"
	"fmt"

	"github.com/goodtune/screentime/internal/clock"
	"github.com/goodtune/screentime/internal/storage"
	"github.com/rs/zerolog"
)

// Profile bounds.
const (
	DefaultProfileName = "User"
	DefaultGoalMinutes = 120
	MinGoalMinutes     = 30
	MaxGoalMinutes     = 360
	DefaultTimezone    = "UTC"
	MaxProfileNameLen  = 60
	MaxTimezoneLen     = 60
)

// Settings bounds.
const (
	DefaultNudgeThreshold = 18
	MinNudgeThreshold     = 5
	MaxNudgeThreshold     = 60
	DefaultTheme          = "light"
)

// Subscription plans.
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

var allowedThemes = map[string]bool{
	"light":        true,
	"dark":         true,
	"amoled":       true,
	"calm_blue":    true,
	"forest_green": true,
}

// ProfileInput replaces the editable profile fields.
type ProfileInput struct {
	Name        string
	GoalMinutes int
	Timezone    string
}

// ProfileFromPayload extracts a profile update. Missing fields reset to
// their defaults.
func ProfileFromPayload(p Payload) ProfileInput {
	return ProfileInput{
		Name:        p.String("name", DefaultProfileName, MaxProfileNameLen),
		GoalMinutes: p.Int("goal_minutes", DefaultGoalMinutes, MinGoalMinutes, MaxGoalMinutes),
		Timezone:    p.String("timezone", DefaultTimezone, MaxTimezoneLen),
	}
}

// SettingsInput replaces every editable setting.
type SettingsInput struct {
	StudyMode         bool
	WorkMode          bool
	SleepMode         bool
	NudgeEnabled      bool
	NudgeThresholdMin int
	Theme             string
	OnboardingDone    bool
}

// SettingsFromPayload extracts a settings update. Missing toggles default
// to on, which also marks onboarding as done.
func SettingsFromPayload(p Payload) SettingsInput {
	return SettingsInput{
		StudyMode:         p.Flag("study_mode", true),
		WorkMode:          p.Flag("work_mode", true),
		SleepMode:         p.Flag("sleep_mode", true),
		NudgeEnabled:      p.Flag("nudge_enabled", true),
		NudgeThresholdMin: p.Int("nudge_threshold_min", DefaultNudgeThreshold, MinNudgeThreshold, MaxNudgeThreshold),
		Theme:             p.String("theme", DefaultTheme, 0),
		OnboardingDone:    p.Flag("onboarding_done", true),
	}
}

// PlanFromPayload extracts the requested plan.
func PlanFromPayload(p Payload) string {
	return p.String("plan", PlanFree, 0)
}

// Account manages the profile, settings and subscription singletons.
type Account struct {
	store  storage.AccountStore
	clock  clock.Clock
	logger zerolog.Logger
}

// NewAccount creates a new account service.
func NewAccount(store storage.AccountStore, clk clock.Clock, logger zerolog.Logger) *Account {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Account{
		store:  store,
		clock:  clk,
		logger: logger.With().Str("component", "account").Logger(),
	}
}

// Profile returns the stored profile.
func (a *Account) Profile(ctx context.Context) (*storage.Profile, error) {
	return a.store.GetProfile(ctx)
}

// Settings returns the stored settings.
func (a *Account) Settings(ctx context.Context) (*storage.Settings, error) {
	return a.store.GetSettings(ctx)
}

// Subscription returns the current subscription.
func (a *Account) Subscription(ctx context.Context) (*storage.Subscription, error) {
	return a.store.GetSubscription(ctx)
}

// UpdateProfile replaces the editable profile fields in place.
func (a *Account) UpdateProfile(ctx context.Context, in ProfileInput) (*storage.Profile, error) {
	profile, err := a.store.GetProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	profile.Name = truncate(in.Name, MaxProfileNameLen)
	profile.GoalMinutes = clamp(in.GoalMinutes, MinGoalMinutes, MaxGoalMinutes)
	profile.Timezone = truncate(in.Timezone, MaxTimezoneLen)
	profile.UpdatedAt = storage.FormatTimestamp(a.clock.Now())

	if err := a.store.UpdateProfile(ctx, *profile); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	a.logger.Info().Int("goal_minutes", profile.GoalMinutes).Msg("Profile updated")
	return profile, nil
}

// UpdateSettings replaces every setting in place. The theme must be one of
// the known themes.
func (a *Account) UpdateSettings(ctx context.Context, in SettingsInput) (*storage.Settings, error) {
	if !allowedThemes[in.Theme] {
		return nil, invalid(MsgInvalidTheme)
	}

	settings := storage.Settings{
		StudyMode:         in.StudyMode,
		WorkMode:          in.WorkMode,
		SleepMode:         in.SleepMode,
		NudgeEnabled:      in.NudgeEnabled,
		NudgeThresholdMin: clamp(in.NudgeThresholdMin, MinNudgeThreshold, MaxNudgeThreshold),
		Theme:             in.Theme,
		OnboardingDone:    in.OnboardingDone,
		UpdatedAt:         storage.FormatTimestamp(a.clock.Now()),
	}

	if err := a.store.UpdateSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}

	a.logger.Info().Str("theme", settings.Theme).Msg("Settings updated")
	return &settings, nil
}

// UpdatePlan switches the subscription plan. The trial end date is kept.
func (a *Account) UpdatePlan(ctx context.Context, plan string) (*storage.Subscription, error) {
	if plan != PlanFree && plan != PlanPro {
		return nil, invalid(MsgInvalidPlan)
	}

	sub, err := a.store.GetSubscription(ctx)
	if err != nil {
		return nil, fmt.Errorf("load subscription: %w", err)
	}
	sub.Plan = plan
	sub.UpdatedAt = storage.FormatTimestamp(a.clock.Now())

	if err := a.store.UpdateSubscription(ctx, *sub); err != nil {
		return nil, fmt.Errorf("update subscription: %w", err)
	}

	a.logger.Info().Str("plan", plan).Msg("Subscription updated")
	return sub, nil
}

package storage

import (
	"encoding/json"
	"fmt"
	"time"
)

// Session types with special meaning to the analytics engine. Any other
// value is accepted and stored as-is.
const (
	SessionTypeScroll   = "scroll"
	SessionTypeWatch    = "watch"
	SessionTypeWork     = "work"
	SessionTypeResearch = "research"
)

// NudgeResponse is the user's answer to a nudge.
type NudgeResponse string

const (
	NudgeStartFocus NudgeResponse = "start_focus"
	NudgeSnooze     NudgeResponse = "snooze"
	NudgeDismiss    NudgeResponse = "dismiss"
)

// Valid reports whether r is one of the known responses.
func (r NudgeResponse) Valid() bool {
	switch r {
	case NudgeStartFocus, NudgeSnooze, NudgeDismiss:
		return true
	}
	return false
}

// UnmarshalJSON implements json.Unmarshaler and rejects unknown responses.
func (r *NudgeResponse) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	response := NudgeResponse(s)
	if !response.Valid() {
		return fmt.Errorf("invalid nudge response: %s (must be start_focus, snooze, or dismiss)", s)
	}
	*r = response
	return nil
}

// Session is a logged interval of app usage.
type Session struct {
	ID          int64  `json:"id"`
	AppName     string `json:"app_name"`
	SessionType string `json:"session_type"`
	DurationMin int    `json:"duration_min"`
	Productive  bool   `json:"productive"`
	// StartedAt is kept exactly as reported by the client, so it may not parse.
	StartedAt string `json:"started_at"`
	CreatedAt string `json:"created_at"`
}

// IsScroll reports whether the session is a scrolling session.
func (s Session) IsScroll() bool {
	return s.SessionType == SessionTypeScroll
}

// StartTime parses StartedAt.
func (s Session) StartTime() (time.Time, error) {
	return ParseTimestamp(s.StartedAt)
}

// FocusSession is a completed, deliberately timed work block.
type FocusSession struct {
	ID                int64  `json:"id"`
	PlannedMin        int    `json:"planned_min"`
	CompletedMin      int    `json:"completed_min"`
	AcceptedFromNudge bool   `json:"accepted_from_nudge"`
	CreatedAt         string `json:"created_at"`
}

// Nudge is a prompt shown to the user together with the recorded response.
type Nudge struct {
	ID            int64         `json:"id"`
	TriggerReason string        `json:"trigger_reason"`
	Response      NudgeResponse `json:"response"`
	CreatedAt     string        `json:"created_at"`
}

// ActivitySnapshot is a consistent view of the whole activity log.
type ActivitySnapshot struct {
	Sessions      []Session      `json:"sessions"`
	FocusSessions []FocusSession `json:"focus_sessions"`
	Nudges        []Nudge        `json:"nudges"`
}

// Profile is the single user profile.
type Profile struct {
	Name        string `json:"name"`
	GoalMinutes int    `json:"goal_minutes"`
	Timezone    string `json:"timezone"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Settings holds the client's mode toggles and nudge configuration.
type Settings struct {
	StudyMode         bool   `json:"study_mode"`
	WorkMode          bool   `json:"work_mode"`
	SleepMode         bool   `json:"sleep_mode"`
	NudgeEnabled      bool   `json:"nudge_enabled"`
	NudgeThresholdMin int    `json:"nudge_threshold_min"`
	Theme             string `json:"theme"`
	OnboardingDone    bool   `json:"onboarding_done"`
	UpdatedAt         string `json:"updated_at"`
}

// Subscription is the current plan of the profile.
type Subscription struct {
	Plan        string `json:"plan"`
	TrialEndsAt string `json:"trial_ends_at"`
	UpdatedAt   string `json:"updated_at"`
}

// TrialPeriod is the length of the free trial granted on first start.
const TrialPeriod = 14 * 24 * time.Hour

// DefaultProfile returns the profile written when a store is first opened.
func DefaultProfile(now time.Time) Profile {
	ts := FormatTimestamp(now)
	return Profile{
		Name:        "User",
		GoalMinutes: 120,
		Timezone:    "UTC",
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

// DefaultSettings returns the settings written when a store is first opened.
func DefaultSettings(now time.Time) Settings {
	return Settings{
		StudyMode:         true,
		WorkMode:          true,
		SleepMode:         true,
		NudgeEnabled:      true,
		NudgeThresholdMin: 18,
		Theme:             "light",
		OnboardingDone:    false,
		UpdatedAt:         FormatTimestamp(now),
	}
}

// DefaultSubscription returns the free plan with a trial starting at now.
func DefaultSubscription(now time.Time) Subscription {
	return Subscription{
		Plan:        "free",
		TrialEndsAt: FormatTimestamp(now.Add(TrialPeriod)),
		UpdatedAt:   FormatTimestamp(now),
	}
}

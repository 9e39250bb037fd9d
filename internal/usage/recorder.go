package usage

import (
	"context"
	"fmt"

	"github.com/goodtune/screentime/internal/clock"
	"github.com/goodtune/screentime/internal/metrics"
	"github.com/goodtune/screentime/internal/storage"
	"github.com/rs/zerolog"
)

// Bounds applied to recorded activity.
const (
	MinSessionMinutes = 1
	MaxSessionMinutes = 600
	MaxAppNameLen     = 100
	MaxSessionTypeLen = 50

	DefaultPlannedMinutes = 15
	MinPlannedMinutes     = 5
	MaxPlannedMinutes     = 180

	DefaultTriggerReason = "scroll_threshold"
	MaxTriggerReasonLen  = 100
)

// SessionInput describes an app-usage session reported by a client.
type SessionInput struct {
	AppName     string
	SessionType string
	DurationMin int
	Productive  bool
	// StartedAt is stored verbatim. Empty means now.
	StartedAt string
}

// SessionFromPayload extracts a session from a request body. app_name,
// session_type and duration_min must be present.
func SessionFromPayload(p Payload) (SessionInput, error) {
	for _, key := range []string{"app_name", "session_type", "duration_min"} {
		if !p.Has(key) {
			return SessionInput{}, invalid(MsgMissingFields)
		}
	}

	in := SessionInput{
		AppName:     p.String("app_name", "", MaxAppNameLen),
		SessionType: p.String("session_type", "", MaxSessionTypeLen),
		DurationMin: p.Int("duration_min", MinSessionMinutes, MinSessionMinutes, MaxSessionMinutes),
		Productive:  p.Flag("productive", false),
	}
	if value, ok := p["started_at"]; ok && value != nil {
		in.StartedAt = toString(value)
	}
	return in, nil
}

// FocusInput describes a completed focus block.
type FocusInput struct {
	PlannedMin int
	// CompletedMin of zero means the whole planned block was completed.
	CompletedMin      int
	AcceptedFromNudge bool
}

// FocusFromPayload extracts a focus session from a request body. Every
// field is optional.
func FocusFromPayload(p Payload) FocusInput {
	planned := p.Int("planned_min", DefaultPlannedMinutes, MinPlannedMinutes, MaxPlannedMinutes)
	return FocusInput{
		PlannedMin:        planned,
		CompletedMin:      p.Int("completed_min", planned, 1, planned),
		AcceptedFromNudge: p.Flag("accepted_from_nudge", false),
	}
}

// NudgeInput describes a nudge and the user's response to it.
type NudgeInput struct {
	TriggerReason string
	Response      string
}

// NudgeFromPayload extracts a nudge from a request body.
func NudgeFromPayload(p Payload) NudgeInput {
	return NudgeInput{
		TriggerReason: p.String("trigger_reason", DefaultTriggerReason, MaxTriggerReasonLen),
		Response:      p.String("response", string(storage.NudgeDismiss), 0),
	}
}

// sessionTypeLabel maps a client-supplied session type onto the bounded
// label set of the session metrics.
func sessionTypeLabel(sessionType string) string {
	switch sessionType {
	case storage.SessionTypeScroll, storage.SessionTypeWatch, storage.SessionTypeWork, storage.SessionTypeResearch:
		return sessionType
	}
	return "other"
}

// Recorder appends activity to the log.
type Recorder struct {
	activity storage.ActivityStore
	clock    clock.Clock
	logger   zerolog.Logger
}

// NewRecorder creates a new activity recorder
func NewRecorder(activity storage.ActivityStore, clk clock.Clock, logger zerolog.Logger) *Recorder {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Recorder{
		activity: activity,
		clock:    clk,
		logger:   logger.With().Str("component", "recorder").Logger(),
	}
}

// RecordSession stores an app-usage session. Duration is clamped to
// [MinSessionMinutes, MaxSessionMinutes] and names are truncated.
func (r *Recorder) RecordSession(ctx context.Context, in SessionInput) (*storage.Session, error) {
	now := storage.FormatTimestamp(r.clock.Now())

	session := &storage.Session{
		AppName:     truncate(in.AppName, MaxAppNameLen),
		SessionType: truncate(in.SessionType, MaxSessionTypeLen),
		DurationMin: clamp(in.DurationMin, MinSessionMinutes, MaxSessionMinutes),
		Productive:  in.Productive,
		StartedAt:   in.StartedAt,
		CreatedAt:   now,
	}
	if session.StartedAt == "" {
		session.StartedAt = now
	}

	if err := r.activity.AddSession(ctx, session); err != nil {
		return nil, fmt.Errorf("record session: %w", err)
	}

	label := sessionTypeLabel(session.SessionType)
	metrics.SessionsRecorded.WithLabelValues(label).Inc()
	metrics.SessionMinutesRecorded.WithLabelValues(label).Add(float64(session.DurationMin))

	r.logger.Debug().
		Int64("id", session.ID).
		Str("app", session.AppName).
		Str("type", session.SessionType).
		Int("duration_min", session.DurationMin).
		Msg("Session recorded")

	return session, nil
}

// RecordFocusSession stores a completed focus block. Planned minutes are
// clamped to [MinPlannedMinutes, MaxPlannedMinutes] and completed minutes
// to [1, planned].
func (r *Recorder) RecordFocusSession(ctx context.Context, in FocusInput) (*storage.FocusSession, error) {
	planned := clamp(in.PlannedMin, MinPlannedMinutes, MaxPlannedMinutes)
	completed := in.CompletedMin
	if completed == 0 {
		completed = planned
	}

	focus := &storage.FocusSession{
		PlannedMin:        planned,
		CompletedMin:      clamp(completed, 1, planned),
		AcceptedFromNudge: in.AcceptedFromNudge,
		CreatedAt:         storage.FormatTimestamp(r.clock.Now()),
	}

	if err := r.activity.AddFocusSession(ctx, focus); err != nil {
		return nil, fmt.Errorf("record focus session: %w", err)
	}

	metrics.FocusMinutesCompleted.Add(float64(focus.CompletedMin))

	r.logger.Debug().
		Int64("id", focus.ID).
		Int("planned_min", focus.PlannedMin).
		Int("completed_min", focus.CompletedMin).
		Bool("accepted_from_nudge", focus.AcceptedFromNudge).
		Msg("Focus session recorded")

	return focus, nil
}

// RecordNudge stores a nudge. The response must be start_focus, snooze or
// dismiss.
func (r *Recorder) RecordNudge(ctx context.Context, in NudgeInput) (*storage.Nudge, error) {
	response := storage.NudgeResponse(in.Response)
	if !response.Valid() {
		return nil, invalid(MsgInvalidNudgeResponse)
	}

	nudge := &storage.Nudge{
		TriggerReason: truncate(in.TriggerReason, MaxTriggerReasonLen),
		Response:      response,
		CreatedAt:     storage.FormatTimestamp(r.clock.Now()),
	}

	if err := r.activity.AddNudge(ctx, nudge); err != nil {
		return nil, fmt.Errorf("record nudge: %w", err)
	}

	metrics.NudgesRecorded.WithLabelValues(string(nudge.Response)).Inc()

	r.logger.Debug().
		Int64("id", nudge.ID).
		Str("trigger", nudge.TriggerReason).
		Str("response", string(nudge.Response)).
		Msg("Nudge recorded")

	return nudge, nil
}

// ResetActivity deletes every session, focus session and nudge. The
// account singletons are kept.
func (r *Recorder) ResetActivity(ctx context.Context) error {
	if err := r.activity.DeleteAll(ctx); err != nil {
		return fmt.Errorf("reset activity: %w", err)
	}
	r.logger.Info().Msg("Activity data deleted")
	return nil
}

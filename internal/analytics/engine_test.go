package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/goodtune/screentime/internal/clock"
	"github.com/goodtune/screentime/internal/storage"
	"github.com/rs/zerolog"
)

type fakeActivity struct {
	storage.ActivityStore
	snap *storage.ActivitySnapshot
	err  error
}

func (f *fakeActivity) Snapshot(context.Context) (*storage.ActivitySnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

type fakeAccount struct {
	storage.AccountStore
	profile storage.Profile
	err     error
}

func (f *fakeAccount) GetProfile(context.Context) (*storage.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p := f.profile
	return &p, nil
}

func newTestEngine(activity storage.ActivityStore, account storage.AccountStore) *Engine {
	return NewEngine(activity, account, Config{Clock: &clock.TestClock{CurrentTime: testNow}}, zerolog.Nop())
}

func TestEngineReports(t *testing.T) {
	activity := &fakeActivity{snap: &storage.ActivitySnapshot{
		Sessions: []storage.Session{
			scroll(30, "2026-10-14T08:00:00Z"),
			work(20, "2026-10-14T09:00:00Z"),
		},
		FocusSessions: []storage.FocusSession{{PlannedMin: 25, CompletedMin: 25, CreatedAt: "2026-10-14T10:00:00Z"}},
		Nudges:        []storage.Nudge{{Response: storage.NudgeStartFocus}},
	}}
	account := &fakeAccount{profile: storage.Profile{Name: "User", GoalMinutes: 120}}
	engine := newTestEngine(activity, account)
	ctx := context.Background()

	behavior, err := engine.Behavior(ctx)
	if err != nil {
		t.Fatalf("behavior: %v", err)
	}
	if behavior.ScrollRatioPct != 50.0 || behavior.RiskLevel != RiskHigh {
		t.Errorf("unexpected behavior: %+v", behavior)
	}

	dashboard, err := engine.Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dashboard.UsedMinutes != 50 || dashboard.FocusScore != 91 || dashboard.StreakDays != 1 || dashboard.GoalMinutes != 120 {
		t.Errorf("unexpected dashboard: %+v", dashboard)
	}

	insights, err := engine.Insights(ctx)
	if err != nil {
		t.Fatalf("insights: %v", err)
	}
	if insights.WeeklyMinutes[2] != 50 || insights.NudgeAcceptRate != 100.0 || insights.TopHour != "08" {
		t.Errorf("unexpected insights: %+v", insights)
	}
}

func TestEngineUsesDefaultPolicy(t *testing.T) {
	engine := NewEngine(&fakeActivity{}, &fakeAccount{}, Config{}, zerolog.Nop())
	if engine.policy != DefaultScorePolicy {
		t.Errorf("expected default policy, got %+v", engine.policy)
	}
	if _, ok := engine.clock.(clock.RealClock); !ok {
		t.Errorf("expected real clock, got %T", engine.clock)
	}
}

func TestEngineKeepsZeroPolicy(t *testing.T) {
	engine := NewEngine(&fakeActivity{}, &fakeAccount{}, Config{Policy: &ScorePolicy{}}, zerolog.Nop())
	if engine.policy != (ScorePolicy{}) {
		t.Errorf("expected zero weights to be kept, got %+v", engine.policy)
	}
	if got := engine.policy.FocusScore(90, 30); got != 100 {
		t.Errorf("expected unweighted score of 100, got %d", got)
	}
}

func TestEngineStoreUnavailable(t *testing.T) {
	cause := errors.New("database is locked")
	engine := newTestEngine(&fakeActivity{err: cause}, &fakeAccount{profile: storage.Profile{Name: "User"}})
	ctx := context.Background()

	if got, err := engine.Behavior(ctx); !errors.Is(err, ErrStoreUnavailable) || !errors.Is(err, cause) || got != nil {
		t.Errorf("behavior: expected store unavailable without result, got %v, %v", got, err)
	}
	if got, err := engine.Dashboard(ctx); !errors.Is(err, ErrStoreUnavailable) || got != nil {
		t.Errorf("dashboard: expected store unavailable without result, got %v, %v", got, err)
	}
	if got, err := engine.Insights(ctx); !errors.Is(err, ErrStoreUnavailable) || got != nil {
		t.Errorf("insights: expected store unavailable without result, got %v, %v", got, err)
	}
}

func TestEngineProfileUnavailable(t *testing.T) {
	engine := newTestEngine(&fakeActivity{snap: &storage.ActivitySnapshot{}}, &fakeAccount{err: storage.ErrNotFound})

	got, err := engine.Dashboard(context.Background())
	if !errors.Is(err, ErrStoreUnavailable) || !errors.Is(err, storage.ErrNotFound) || got != nil {
		t.Errorf("expected store unavailable wrapping not found, got %v, %v", got, err)
	}
}

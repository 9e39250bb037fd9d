package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goodtune/screentime/internal/storage"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

const (
	selectSessions      = `SELECT id, app_name, session_type, duration_min, productive, started_at, created_at FROM sessions`
	selectFocusSessions = `SELECT id, planned_min, completed_min, accepted_from_nudge, created_at FROM focus_sessions`
	selectNudges        = `SELECT id, trigger_reason, response, created_at FROM nudges`
)

type activityStore struct {
	db *sql.DB
}

func (s *activityStore) AddSession(ctx context.Context, session *storage.Session) error {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (app_name, session_type, duration_min, productive, started_at, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		session.AppName, session.SessionType, session.DurationMin, boolToInt(session.Productive), session.StartedAt, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("session id: %w", err)
	}
	session.ID = id
	return nil
}

func (s *activityStore) AddFocusSession(ctx context.Context, focus *storage.FocusSession) error {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO focus_sessions (planned_min, completed_min, accepted_from_nudge, created_at) VALUES (?, ?, ?, ?)`,
		focus.PlannedMin, focus.CompletedMin, boolToInt(focus.AcceptedFromNudge), focus.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert focus session: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("focus session id: %w", err)
	}
	focus.ID = id
	return nil
}

func (s *activityStore) AddNudge(ctx context.Context, nudge *storage.Nudge) error {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO nudges (trigger_reason, response, created_at) VALUES (?, ?, ?)`,
		nudge.TriggerReason, string(nudge.Response), nudge.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert nudge: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("nudge id: %w", err)
	}
	nudge.ID = id
	return nil
}

func (s *activityStore) CountSessions(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return count, nil
}

func (s *activityStore) RecentSessions(ctx context.Context, limit int) ([]storage.Session, error) {
	return querySessions(ctx, s.db, selectSessions+` ORDER BY started_at DESC, id DESC LIMIT ?`, limitArg(limit))
}

func (s *activityStore) RecentFocusSessions(ctx context.Context, limit int) ([]storage.FocusSession, error) {
	return queryFocusSessions(ctx, s.db, selectFocusSessions+` ORDER BY created_at DESC, id DESC LIMIT ?`, limitArg(limit))
}

func (s *activityStore) RecentNudges(ctx context.Context, limit int) ([]storage.Nudge, error) {
	return queryNudges(ctx, s.db, selectNudges+` ORDER BY created_at DESC, id DESC LIMIT ?`, limitArg(limit))
}

// Snapshot reads all three tables inside a single transaction.
func (s *activityStore) Snapshot(ctx context.Context) (*storage.ActivitySnapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	sessions, err := querySessions(ctx, tx, selectSessions+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	focus, err := queryFocusSessions(ctx, tx, selectFocusSessions+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	nudges, err := queryNudges(ctx, tx, selectNudges+` ORDER BY id`)
	if err != nil {
		return nil, err
	}

	return &storage.ActivitySnapshot{
		Sessions:      sessions,
		FocusSessions: focus,
		Nudges:        nudges,
	}, nil
}

func (s *activityStore) DeleteAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"sessions", "focus_sessions", "nudges"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func (s *activityStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin retention delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Backdated or malformed started_at values fall back to created_at.
	statements := []string{
		`DELETE FROM sessions WHERE COALESCE(datetime(started_at), datetime(created_at)) < datetime(?)`,
		`DELETE FROM focus_sessions WHERE datetime(created_at) < datetime(?)`,
		`DELETE FROM nudges WHERE datetime(created_at) < datetime(?)`,
	}

	deleted := 0
	ts := storage.FormatTimestamp(cutoff)
	for _, stmt := range statements {
		result, err := tx.ExecContext(ctx, stmt, ts)
		if err != nil {
			return 0, fmt.Errorf("retention delete: %w", err)
		}
		rows, _ := result.RowsAffected()
		deleted += int(rows)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit retention delete: %w", err)
	}
	return deleted, nil
}

func querySessions(ctx context.Context, q queryer, query string, args ...any) ([]storage.Session, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sessions := make([]storage.Session, 0)
	for rows.Next() {
		var session storage.Session
		if err := rows.Scan(
			&session.ID, &session.AppName, &session.SessionType, &session.DurationMin,
			&session.Productive, &session.StartedAt, &session.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

func queryFocusSessions(ctx context.Context, q queryer, query string, args ...any) ([]storage.FocusSession, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query focus sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	focus := make([]storage.FocusSession, 0)
	for rows.Next() {
		var f storage.FocusSession
		if err := rows.Scan(&f.ID, &f.PlannedMin, &f.CompletedMin, &f.AcceptedFromNudge, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan focus session: %w", err)
		}
		focus = append(focus, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate focus sessions: %w", err)
	}
	return focus, nil
}

func queryNudges(ctx context.Context, q queryer, query string, args ...any) ([]storage.Nudge, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query nudges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	nudges := make([]storage.Nudge, 0)
	for rows.Next() {
		var n storage.Nudge
		var response string
		if err := rows.Scan(&n.ID, &n.TriggerReason, &response, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan nudge: %w", err)
		}
		n.Response = storage.NudgeResponse(response)
		nudges = append(nudges, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nudges: %w", err)
	}
	return nudges, nil
}

// limitArg maps a non-positive limit to SQLite's "no limit".
func limitArg(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

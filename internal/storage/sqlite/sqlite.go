package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/goodtune/screentime/internal/storage"
	_ "modernc.org/sqlite"
)

// Store implements the storage.Store interface on SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path, applies
// migrations and makes sure the account singletons exist.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := storage.EnsureDir(dir); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite limitation
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	store := New(db)
	if err := store.ensureAccount(context.Background(), time.Now()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// New wraps an already-open database. No migrations are run.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Activity returns the activity store.
func (s *Store) Activity() storage.ActivityStore { return &activityStore{db: s.db} }

// Account returns the account store.
func (s *Store) Account() storage.AccountStore { return &accountStore{db: s.db} }

func (s *Store) ensureAccount(ctx context.Context, now time.Time) error {
	profile := storage.DefaultProfile(now)
	settings := storage.DefaultSettings(now)
	subscription := storage.DefaultSubscription(now)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin account init: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO profile (id, name, goal_minutes, timezone, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		storage.AccountID, profile.Name, profile.GoalMinutes, profile.Timezone, profile.CreatedAt, profile.UpdatedAt,
	); err != nil {
		return fmt.Errorf("init profile: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (id, study_mode, work_mode, sleep_mode, nudge_enabled, nudge_threshold_min, theme, onboarding_done, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		storage.AccountID,
		boolToInt(settings.StudyMode), boolToInt(settings.WorkMode), boolToInt(settings.SleepMode),
		boolToInt(settings.NudgeEnabled), settings.NudgeThresholdMin, settings.Theme,
		boolToInt(settings.OnboardingDone), settings.UpdatedAt,
	); err != nil {
		return fmt.Errorf("init settings: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO subscription (id, plan, trial_ends_at, updated_at) VALUES (?, ?, ?, ?)`,
		storage.AccountID, subscription.Plan, subscription.TrialEndsAt, subscription.UpdatedAt,
	); err != nil {
		return fmt.Errorf("init subscription: %w", err)
	}

	return tx.Commit()
}

// runMigrations applies all database migrations
func runMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			version INTEGER NOT NULL UNIQUE,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var currentVersion int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	migrations := getMigrations()
	versions := make([]int, 0, len(migrations))
	for version := range migrations {
		versions = append(versions, version)
	}
	sort.Ints(versions)

	for _, version := range versions {
		if version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(migrations[version]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to execute migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO migrations (version) VALUES (?)", version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", version, err)
		}
	}

	return nil
}

// getMigrations returns all database migrations keyed by version
func getMigrations() map[int]string {
	return map[int]string{
		1: migration001Activity,
		2: migration002Account,
		3: migration003Indexes,
	}
}

const migration001Activity = `
CREATE TABLE IF NOT EXISTS sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	app_name TEXT NOT NULL,
	session_type TEXT NOT NULL,
	duration_min INTEGER NOT NULL,
	productive INTEGER NOT NULL DEFAULT 0,
	started_at TEXT NOT NULL, -- as reported by the client
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS focus_sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	planned_min INTEGER NOT NULL,
	completed_min INTEGER NOT NULL,
	accepted_from_nudge INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS nudges (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	trigger_reason TEXT NOT NULL,
	response TEXT NOT NULL, -- start_focus, snooze, dismiss
	created_at TEXT NOT NULL
);
`

const migration002Account = `
CREATE TABLE IF NOT EXISTS profile (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	name TEXT NOT NULL DEFAULT 'User',
	goal_minutes INTEGER NOT NULL DEFAULT 120,
	timezone TEXT NOT NULL DEFAULT 'UTC',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	study_mode INTEGER NOT NULL DEFAULT 1,
	work_mode INTEGER NOT NULL DEFAULT 1,
	sleep_mode INTEGER NOT NULL DEFAULT 1,
	nudge_enabled INTEGER NOT NULL DEFAULT 1,
	nudge_threshold_min INTEGER NOT NULL DEFAULT 18,
	theme TEXT NOT NULL DEFAULT 'light',
	onboarding_done INTEGER NOT NULL DEFAULT 0,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS subscription (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	plan TEXT NOT NULL DEFAULT 'free',
	trial_ends_at TEXT,
	updated_at TEXT NOT NULL
);
`

const migration003Indexes = `
CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);
CREATE INDEX IF NOT EXISTS idx_focus_sessions_created ON focus_sessions(created_at);
CREATE INDEX IF NOT EXISTS idx_nudges_created ON nudges(created_at);
`

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

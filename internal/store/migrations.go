package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 2

// Migrate runs forward migrations to bring the database schema up to date.
// The DDL is portable between SQLite and Postgres.
func (db *DB) Migrate() error {
	// Create the schema_version table if it does not exist.
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means version 0 (fresh database).
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}
	if version < 2 {
		if err := db.migrateV2(); err != nil {
			return fmt.Errorf("migration v2: %w", err)
		}
	}

	return nil
}

// migrateV1 creates all initial tables and indexes.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS focus_sessions (
			id                       TEXT PRIMARY KEY,
			user_id                  TEXT NOT NULL,
			planned_duration_seconds INTEGER NOT NULL,
			actual_duration_seconds  INTEGER NOT NULL DEFAULT 0,
			status                   TEXT NOT NULL,
			started_at               TEXT NOT NULL,
			ended_at                 TEXT,
			total_distractions       INTEGER NOT NULL DEFAULT 0,
			total_pauses             INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS user_preferences (
			user_id               TEXT PRIMARY KEY,
			coach_personality     TEXT NOT NULL,
			focus_domains         TEXT NOT NULL,
			distraction_triggers  TEXT NOT NULL,
			default_focus_minutes INTEGER NOT NULL,
			default_break_minutes INTEGER NOT NULL,
			session_rules         TEXT NOT NULL,
			max_sessions_per_day  INTEGER,
			preferred_focus_time  TEXT NOT NULL,
			success_goals         TEXT NOT NULL,
			custom_focus_domain   TEXT,
			completed_at          TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS agent_activity_log (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL,
			action_type TEXT NOT NULL,
			description TEXT NOT NULL,
			payload     TEXT NOT NULL,
			created_at  TEXT NOT NULL
		)`,

		// Indexes.
		`CREATE INDEX IF NOT EXISTS idx_focus_sessions_user_started ON focus_sessions(user_id, started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_focus_sessions_status ON focus_sessions(status)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_user_created ON agent_activity_log(user_id, created_at)`,
	}

	return db.applyMigration(1, statements)
}

// migrateV2 adds typed distraction records and agent notes.
func (db *DB) migrateV2() error {
	return db.applyMigration(2, []string{
		`CREATE TABLE IF NOT EXISTS distractions (
			id                        TEXT PRIMARY KEY,
			session_id                TEXT NOT NULL,
			user_id                   TEXT NOT NULL,
			distraction_type          TEXT NOT NULL,
			time_into_session_seconds INTEGER NOT NULL DEFAULT 0,
			time_remaining_seconds    INTEGER NOT NULL DEFAULT 0,
			logged_at                 TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS agent_notes (
			id              TEXT PRIMARY KEY,
			user_id         TEXT NOT NULL,
			type            TEXT NOT NULL,
			title           TEXT NOT NULL,
			body            TEXT NOT NULL,
			suggestion_text TEXT NOT NULL,
			created_at      TEXT NOT NULL,
			dismissed_at    TEXT
		)`,

		`CREATE INDEX IF NOT EXISTS idx_distractions_user_logged ON distractions(user_id, logged_at)`,
		`CREATE INDEX IF NOT EXISTS idx_distractions_session ON distractions(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_agent_notes_user_created ON agent_notes(user_id, created_at)`,
	})
}

// applyMigration runs statements in one transaction and records version.
func (db *DB) applyMigration(version int, statements []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec(db.rebind("INSERT INTO schema_version (version) VALUES (?)"), version); err != nil {
		return err
	}

	return tx.Commit()
}

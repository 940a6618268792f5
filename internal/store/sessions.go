package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const sessionColumns = `id, user_id, planned_duration_seconds, actual_duration_seconds, status,
	started_at, ended_at, total_distractions, total_pauses`

// InsertSession validates and stores a session. An empty ID is replaced
// with a fresh UUID, which is written back to s.
func (db *DB) InsertSession(ctx context.Context, s *FocusSession) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	var endedAt sql.NullString
	if !s.EndedAt.IsZero() {
		endedAt = sql.NullString{String: formatTime(s.EndedAt), Valid: true}
	}

	_, err := db.conn.ExecContext(ctx, db.rebind(
		`INSERT INTO focus_sessions
		(id, user_id, planned_duration_seconds, actual_duration_seconds, status,
		 started_at, ended_at, total_distractions, total_pauses)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		s.ID, s.UserID, s.PlannedDurationSeconds, s.ActualDurationSeconds, s.Status,
		formatTime(s.StartedAt), endedAt, s.TotalDistractions, s.TotalPauses,
	)
	return err
}

// RecentFinishedSessions returns up to limit completed or abandoned
// sessions for userID, newest first. Rows with negative durations are
// excluded before the limit applies.
func (db *DB) RecentFinishedSessions(ctx context.Context, userID string, limit int) ([]FocusSession, error) {
	rows, err := db.conn.QueryContext(ctx, db.rebind(
		`SELECT `+sessionColumns+` FROM focus_sessions
		 WHERE user_id = ? AND status IN ('completed', 'abandoned')
		   AND planned_duration_seconds >= 0 AND actual_duration_seconds >= 0
		 ORDER BY started_at DESC
		 LIMIT ?`),
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	return db.scanSessions(rows)
}

// ListSessions returns sessions for userID started at or after since,
// newest first. A zero since means no lower bound; limit <= 0 means no
// limit.
func (db *DB) ListSessions(ctx context.Context, userID string, since time.Time, limit int) ([]FocusSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM focus_sessions WHERE user_id = ?`
	args := []any{userID}

	if !since.IsZero() {
		query += " AND started_at >= ?"
		args = append(args, formatTime(since))
	}

	query += " ORDER BY started_at DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	return db.scanSessions(rows)
}

// GetSession returns a session by ID, scoped to userID.
func (db *DB) GetSession(ctx context.Context, userID, id string) (*FocusSession, error) {
	rows, err := db.conn.QueryContext(ctx, db.rebind(
		`SELECT `+sessionColumns+` FROM focus_sessions WHERE user_id = ? AND id = ?`),
		userID, id,
	)
	if err != nil {
		return nil, err
	}
	sessions, err := db.scanSessions(rows)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, ErrNotFound
	}
	return &sessions[0], nil
}

// EarliestSessionStart returns the start time of the user's first session.
// ok is false when the user has no sessions.
func (db *DB) EarliestSessionStart(ctx context.Context, userID string) (t time.Time, ok bool, err error) {
	var startedAt string
	err = db.conn.QueryRowContext(ctx, db.rebind(
		`SELECT started_at FROM focus_sessions WHERE user_id = ? ORDER BY started_at ASC LIMIT 1`),
		userID,
	).Scan(&startedAt)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return parseTime(startedAt), true, nil
}

func (db *DB) scanSessions(rows *sql.Rows) ([]FocusSession, error) {
	defer func() { _ = rows.Close() }()

	var sessions []FocusSession
	for rows.Next() {
		var s FocusSession
		var startedAt string
		var endedAt sql.NullString
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.PlannedDurationSeconds, &s.ActualDurationSeconds, &s.Status,
			&startedAt, &endedAt, &s.TotalDistractions, &s.TotalPauses,
		); err != nil {
			return nil, err
		}
		if s.PlannedDurationSeconds < 0 || s.ActualDurationSeconds < 0 {
			db.logger.Warn("dropping session with negative duration",
				"session_id", s.ID,
				"planned_seconds", s.PlannedDurationSeconds,
				"actual_seconds", s.ActualDurationSeconds,
			)
			continue
		}
		s.StartedAt = parseTime(startedAt)
		if endedAt.Valid {
			s.EndedAt = parseTime(endedAt.String)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

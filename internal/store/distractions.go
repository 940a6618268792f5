package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// InsertDistraction records a typed distraction against one of the user's
// sessions. It returns ErrNotFound when the session does not belong to
// the user.
func (db *DB) InsertDistraction(ctx context.Context, d *Distraction) error {
	if d.Type == "" {
		return errors.New("distraction type is required")
	}
	if _, err := db.GetSession(ctx, d.UserID, d.SessionID); err != nil {
		return err
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.LoggedAt.IsZero() {
		d.LoggedAt = time.Now()
	}

	_, err := db.conn.ExecContext(ctx, db.rebind(
		`INSERT INTO distractions
		(id, session_id, user_id, distraction_type, time_into_session_seconds, time_remaining_seconds, logged_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		d.ID, d.SessionID, d.UserID, d.Type, d.TimeIntoSessionSeconds, d.TimeRemainingSeconds, formatTime(d.LoggedAt),
	)
	return err
}

// ListDistractions returns the user's distractions logged at or after
// since, oldest first. A zero since returns all of them.
func (db *DB) ListDistractions(ctx context.Context, userID string, since time.Time) ([]Distraction, error) {
	rows, err := db.conn.QueryContext(ctx, db.rebind(
		`SELECT id, session_id, user_id, distraction_type, time_into_session_seconds, time_remaining_seconds, logged_at
		 FROM distractions WHERE user_id = ? AND logged_at >= ?
		 ORDER BY logged_at ASC`),
		userID, sinceBound(since),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []Distraction{}
	for rows.Next() {
		var d Distraction
		var loggedAt string
		if err := rows.Scan(&d.ID, &d.SessionID, &d.UserID, &d.Type,
			&d.TimeIntoSessionSeconds, &d.TimeRemainingSeconds, &loggedAt); err != nil {
			return nil, err
		}
		d.LoggedAt = parseTime(loggedAt)
		out = append(out, d)
	}
	return out, rows.Err()
}

// sinceBound turns a zero time into the smallest stored timestamp.
func sinceBound(since time.Time) string {
	if since.IsZero() {
		return ""
	}
	return formatTime(since)
}

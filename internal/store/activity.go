package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// InsertActivity appends an entry to the activity log. ID and CreatedAt
// are filled in when empty; a nil payload is stored as {}.
func (db *DB) InsertActivity(ctx context.Context, e *ActivityEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if len(e.Payload) == 0 {
		e.Payload = json.RawMessage(`{}`)
	}

	_, err := db.conn.ExecContext(ctx, db.rebind(
		`INSERT INTO agent_activity_log (id, user_id, action_type, description, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		e.ID, e.UserID, e.ActionType, e.Description, string(e.Payload), formatTime(e.CreatedAt),
	)
	return err
}

// ListActivity returns one page of a user's activity log, newest first.
func (db *DB) ListActivity(ctx context.Context, userID string, limit, offset int) ([]ActivityEntry, error) {
	rows, err := db.conn.QueryContext(ctx, db.rebind(
		`SELECT id, user_id, action_type, description, payload, created_at
		 FROM agent_activity_log WHERE user_id = ?
		 ORDER BY created_at DESC
		 LIMIT ? OFFSET ?`),
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	entries := []ActivityEntry{}
	for rows.Next() {
		var e ActivityEntry
		var payload, createdAt string
		if err := rows.Scan(&e.ID, &e.UserID, &e.ActionType, &e.Description, &payload, &createdAt); err != nil {
			return nil, err
		}
		e.Payload = json.RawMessage(payload)
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountActivity returns the total number of activity entries for userID.
func (db *DB) CountActivity(ctx context.Context, userID string) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, db.rebind(
		`SELECT COUNT(*) FROM agent_activity_log WHERE user_id = ?`), userID,
	).Scan(&n)
	return n, err
}

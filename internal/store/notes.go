package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// InsertNote stores a new, undismissed agent note. ID and CreatedAt are
// filled in when empty.
func (db *DB) InsertNote(ctx context.Context, n *AgentNote) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	_, err := db.conn.ExecContext(ctx, db.rebind(
		`INSERT INTO agent_notes (id, user_id, type, title, body, suggestion_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		n.ID, n.UserID, n.Type, n.Title, n.Body, n.SuggestionText, formatTime(n.CreatedAt),
	)
	return err
}

// ListActiveNotes returns the user's undismissed notes, newest first.
func (db *DB) ListActiveNotes(ctx context.Context, userID string) ([]AgentNote, error) {
	rows, err := db.conn.QueryContext(ctx, db.rebind(
		`SELECT id, user_id, type, title, body, suggestion_text, created_at
		 FROM agent_notes WHERE user_id = ? AND dismissed_at IS NULL
		 ORDER BY created_at DESC`),
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	notes := []AgentNote{}
	for rows.Next() {
		var n AgentNote
		var createdAt string
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.SuggestionText, &createdAt); err != nil {
			return nil, err
		}
		n.CreatedAt = parseTime(createdAt)
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// HasActiveNote reports whether the user has an undismissed note of
// noteType created at or after since.
func (db *DB) HasActiveNote(ctx context.Context, userID, noteType string, since time.Time) (bool, error) {
	var id string
	err := db.conn.QueryRowContext(ctx, db.rebind(
		`SELECT id FROM agent_notes
		 WHERE user_id = ? AND type = ? AND dismissed_at IS NULL AND created_at >= ?
		 LIMIT 1`),
		userID, noteType, sinceBound(since),
	).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// DismissNote hides a note. It returns ErrNotFound when the user has no
// note with that ID.
func (db *DB) DismissNote(ctx context.Context, userID, id string, at time.Time) error {
	res, err := db.conn.ExecContext(ctx, db.rebind(
		`UPDATE agent_notes SET dismissed_at = ? WHERE user_id = ? AND id = ?`),
		formatTime(at), userID, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

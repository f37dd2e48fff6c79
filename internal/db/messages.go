package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Zachkp/folio/internal/contact"
)

// Message is a contact-form submission as stored in the inbox.
type Message struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Body      string         `json:"body"`
	Status    contact.Status `json:"status"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// MessageCounts summarises the inbox.
type MessageCounts struct {
	Total  int64 `json:"total"`
	Sent   int64 `json:"sent"`
	Failed int64 `json:"failed"`
}

// Record stores a relayed submission. It satisfies contact.Inbox.
func (d *DB) Record(ctx context.Context, f contact.Form, status contact.Status, relayErr error) error {
	errText := ""
	if relayErr != nil {
		errText = relayErr.Error()
	}
	_, err := d.ExecContext(ctx, `
		INSERT INTO messages (id, name, email, body, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, uuid.New().String(), f.Name, f.Email, f.Message, string(status), errText, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}
	return nil
}

// Messages returns the newest messages first.
func (d *DB) Messages(ctx context.Context, limit int) ([]Message, error) {
	rows, err := d.QueryContext(ctx, `
		SELECT id, name, email, body, status, error, created_at
		FROM messages
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var status string
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Body, &status, &m.Error, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.Status = contact.Status(status)
		out = append(out, m)
	}
	return out, rows.Err()
}

// CountMessages returns inbox totals by status.
func (d *DB) CountMessages(ctx context.Context) (MessageCounts, error) {
	var c MessageCounts
	err := d.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'sent' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0)
		FROM messages
	`).Scan(&c.Total, &c.Sent, &c.Failed)
	if err != nil {
		return c, fmt.Errorf("counting messages: %w", err)
	}
	return c, nil
}

// DeleteMessage removes one message. It reports whether a row existed.
func (d *DB) DeleteMessage(ctx context.Context, id string) (bool, error) {
	res, err := d.ExecContext(ctx, "DELETE FROM messages WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("deleting message %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

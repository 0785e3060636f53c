package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/digest-scheduler/internal/domain"
)

// MessageRepository handles database operations for ingested messages.
type MessageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

const messageColumns = `id, transport_id, chat_id, sender, content, timestamp, media_url, owner_id, created_at`

// Upsert stores msg keyed on its transport id. Messages without one are
// rejected before touching the database.
func (r *MessageRepository) Upsert(ctx context.Context, msg domain.Message) error {
	if msg.TransportID == "" {
		return domain.ErrMissingTransportID
	}

	query := `
		INSERT INTO messages (transport_id, chat_id, sender, content, timestamp, media_url, owner_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			chat_id = VALUES(chat_id),
			sender = VALUES(sender),
			content = VALUES(content),
			timestamp = VALUES(timestamp),
			media_url = VALUES(media_url)
	`
	if onSQLite(r.db) {
		query = `
			INSERT INTO messages (transport_id, chat_id, sender, content, timestamp, media_url, owner_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(transport_id) DO UPDATE SET
				chat_id = excluded.chat_id,
				sender = excluded.sender,
				content = excluded.content,
				timestamp = excluded.timestamp,
				media_url = excluded.media_url
		`
	}

	_, err := r.db.ExecContext(ctx, query,
		msg.TransportID, msg.ChatID, msg.Sender, msg.Content,
		msg.Timestamp.UTC(), msg.MediaURL, msg.OwnerID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert message: %w", err)
	}

	return nil
}

// ListWindow returns messages with start <= timestamp < end, oldest first.
func (r *MessageRepository) ListWindow(ctx context.Context, start, end time.Time) ([]domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE timestamp >= ? AND timestamp < ?
		ORDER BY timestamp ASC, id ASC
	`

	var messages []domain.Message
	if err := r.db.SelectContext(ctx, &messages, query, start.UTC(), end.UTC()); err != nil {
		return nil, fmt.Errorf("failed to list messages in window: %w", err)
	}

	return messages, nil
}

// ListFiltered returns messages matching f, oldest first.
func (r *MessageRepository) ListFiltered(ctx context.Context, f domain.MessageFilter) ([]domain.Message, error) {
	var conditions []string
	args := []any{}

	if f.ChatID != "" {
		conditions = append(conditions, "chat_id = ?")
		args = append(args, f.ChatID)
	}
	if f.Sender != "" {
		conditions = append(conditions, "sender = ?")
		args = append(args, f.Sender)
	}
	if !f.Start.IsZero() {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, f.Start.UTC())
	}
	if !f.End.IsZero() {
		conditions = append(conditions, "timestamp < ?")
		args = append(args, f.End.UTC())
	}

	query := `SELECT ` + messageColumns + ` FROM messages`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY timestamp ASC, id ASC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	messages := []domain.Message{}
	if err := r.db.SelectContext(ctx, &messages, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list filtered messages: %w", err)
	}

	return messages, nil
}

func (r *MessageRepository) List(ctx context.Context, chatID string, page, pageSize int) ([]domain.Message, int64, error) {
	where := ""
	args := []any{}
	if chatID != "" {
		where = "WHERE chat_id = ?"
		args = append(args, chatID)
	}

	var totalCount int64
	if err := r.db.GetContext(ctx, &totalCount, "SELECT COUNT(*) FROM messages "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	query := `
		SELECT ` + messageColumns + `
		FROM messages
		` + where + `
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?
	`

	messages := []domain.Message{}
	if err := r.db.SelectContext(ctx, &messages, query, append(args, pageSize, offset(page, pageSize))...); err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}

	return messages, totalCount, nil
}

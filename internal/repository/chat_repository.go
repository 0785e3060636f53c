package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/digest-scheduler/internal/domain"
)

type ChatRepository struct {
	db *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) upsertQuery() string {
	// An empty incoming name never overwrites a known one.
	if onSQLite(r.db) {
		return `
			INSERT INTO chats (id, display_name, owner_id, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				display_name = CASE WHEN excluded.display_name = '' THEN chats.display_name ELSE excluded.display_name END,
				owner_id = excluded.owner_id,
				updated_at = excluded.updated_at
		`
	}
	return `
		INSERT INTO chats (id, display_name, owner_id, updated_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			display_name = IF(VALUES(display_name) = '', display_name, VALUES(display_name)),
			owner_id = VALUES(owner_id),
			updated_at = VALUES(updated_at)
	`
}

func (r *ChatRepository) Upsert(ctx context.Context, chat domain.Chat) error {
	_, err := r.db.ExecContext(ctx, r.upsertQuery(), chat.ID, chat.DisplayName, chat.OwnerID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert chat: %w", err)
	}
	return nil
}

// ReplaceForOwner swaps the owner's whole chat set in one transaction.
func (r *ChatRepository) ReplaceForOwner(ctx context.Context, ownerID string, chats []domain.Chat) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin chat refresh: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM chats WHERE owner_id = ?", ownerID); err != nil {
		return fmt.Errorf("failed to clear chats: %w", err)
	}

	now := time.Now().UTC()
	query := r.upsertQuery()
	for _, chat := range chats {
		if _, err := tx.ExecContext(ctx, query, chat.ID, chat.DisplayName, ownerID, now); err != nil {
			return fmt.Errorf("failed to insert chat %s: %w", chat.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chat refresh: %w", err)
	}
	return nil
}

// NameMap maps chat ids to their display names.
func (r *ChatRepository) NameMap(ctx context.Context) (map[string]string, error) {
	var chats []domain.Chat
	if err := r.db.SelectContext(ctx, &chats, "SELECT id, display_name, owner_id, updated_at FROM chats"); err != nil {
		return nil, fmt.Errorf("failed to load chat names: %w", err)
	}

	names := make(map[string]string, len(chats))
	for _, c := range chats {
		names[c.ID] = c.DisplayName
	}
	return names, nil
}

func (r *ChatRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Chat, error) {
	chats := []domain.Chat{}
	query := `
		SELECT id, display_name, owner_id, updated_at
		FROM chats
		WHERE owner_id = ?
		ORDER BY display_name ASC
	`
	if err := r.db.SelectContext(ctx, &chats, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return chats, nil
}

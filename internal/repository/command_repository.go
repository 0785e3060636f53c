package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/onurcolak/digest-scheduler/internal/domain"
)

// CommandRepository is the durable command queue.
type CommandRepository struct {
	db *sqlx.DB
}

func NewCommandRepository(db *sqlx.DB) *CommandRepository {
	return &CommandRepository{db: db}
}

const commandColumns = `id, type, payload, status, error, created_at, updated_at`

// Create enqueues a PENDING command. Ids are UUIDv7 so that id order follows
// creation order when timestamps tie.
func (r *CommandRepository) Create(ctx context.Context, cmdType domain.CommandType, payload json.RawMessage) (*domain.Command, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate command id: %w", err)
	}

	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	now := time.Now().UTC()
	cmd := &domain.Command{
		ID:        id.String(),
		Type:      cmdType,
		Payload:   types.JSONText(payload),
		Status:    domain.CommandPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
		INSERT INTO commands (id, type, payload, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query, cmd.ID, cmd.Type, string(payload), cmd.Status, now, now); err != nil {
		return nil, fmt.Errorf("failed to create command: %w", err)
	}

	return cmd, nil
}

// ListPending returns PENDING commands in creation order.
func (r *CommandRepository) ListPending(ctx context.Context) ([]domain.Command, error) {
	query := `
		SELECT ` + commandColumns + `
		FROM commands
		WHERE status = 'PENDING'
		ORDER BY created_at ASC, id ASC
	`

	var commands []domain.Command
	if err := r.db.SelectContext(ctx, &commands, query); err != nil {
		return nil, fmt.Errorf("failed to list pending commands: %w", err)
	}

	return commands, nil
}

// MarkProcessing claims a PENDING command. A command already moved on by
// someone else yields ErrAlreadyClaimed.
func (r *CommandRepository) MarkProcessing(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE commands SET status = 'PROCESSING', updated_at = ? WHERE id = ? AND status = 'PENDING'",
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark command processing: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return ErrAlreadyClaimed
	}

	return nil
}

func (r *CommandRepository) MarkCompleted(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE commands SET status = 'COMPLETED', error = NULL, updated_at = ? WHERE id = ?",
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark command completed: %w", err)
	}
	return nil
}

func (r *CommandRepository) MarkFailed(ctx context.Context, id, message string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE commands SET status = 'FAILED', error = ?, updated_at = ? WHERE id = ?",
		message, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark command failed: %w", err)
	}
	return nil
}

// FailStale fails commands left PROCESSING since before olderThan.
func (r *CommandRepository) FailStale(ctx context.Context, olderThan time.Time, message string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE commands SET status = 'FAILED', error = ?, updated_at = ? WHERE status = 'PROCESSING' AND updated_at < ?",
		message, time.Now().UTC(), olderThan.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to fail stale commands: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows, nil
}

func (r *CommandRepository) GetByID(ctx context.Context, id string) (*domain.Command, error) {
	var commands []domain.Command
	if err := r.db.SelectContext(ctx, &commands, "SELECT "+commandColumns+" FROM commands WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("failed to get command: %w", err)
	}
	if len(commands) == 0 {
		return nil, ErrNotFound
	}
	return &commands[0], nil
}

func (r *CommandRepository) List(
	ctx context.Context,
	status *domain.CommandStatus,
	page, pageSize int,
) ([]domain.Command, int64, error) {
	where := ""
	args := []any{}
	if status != nil {
		where = "WHERE status = ?"
		args = append(args, *status)
	}

	var totalCount int64
	if err := r.db.GetContext(ctx, &totalCount, "SELECT COUNT(*) FROM commands "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count commands: %w", err)
	}

	query := `
		SELECT ` + commandColumns + `
		FROM commands
		` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`

	commands := []domain.Command{}
	if err := r.db.SelectContext(ctx, &commands, query, append(args, pageSize, offset(page, pageSize))...); err != nil {
		return nil, 0, fmt.Errorf("failed to list commands: %w", err)
	}

	return commands, totalCount, nil
}

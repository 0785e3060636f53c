package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/digest-scheduler/internal/domain"
)

// StatusRepository stores the transport connection status singleton.
type StatusRepository struct {
	db *sqlx.DB
}

func NewStatusRepository(db *sqlx.DB) *StatusRepository {
	return &StatusRepository{db: db}
}

func (r *StatusRepository) Get(ctx context.Context, id string) (*domain.SystemStatus, error) {
	var rows []domain.SystemStatus
	if err := r.db.SelectContext(ctx, &rows, "SELECT id, status, qr_payload, updated_at FROM system_status WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("failed to get system status: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// Set writes the status; qrPayload is cleared unless given.
func (r *StatusRepository) Set(ctx context.Context, id string, status domain.ConnectionStatus, qrPayload *string) error {
	query := `
		INSERT INTO system_status (id, status, qr_payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			status = VALUES(status),
			qr_payload = VALUES(qr_payload),
			updated_at = VALUES(updated_at)
	`
	if onSQLite(r.db) {
		query = `
			INSERT INTO system_status (id, status, qr_payload, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				status = excluded.status,
				qr_payload = excluded.qr_payload,
				updated_at = excluded.updated_at
		`
	}

	if _, err := r.db.ExecContext(ctx, query, id, status, qrPayload, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to set system status: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/digest-scheduler/internal/domain"
)

// ReportRepository is the append-only digest history.
type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, rec *domain.ReportRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO reports (id, owner_id, text, date, window_start, window_end, chat_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.OwnerID, rec.Text, rec.Date,
		rec.WindowStart.UTC(), rec.WindowEnd.UTC(), rec.ChatID, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

func (r *ReportRepository) List(ctx context.Context, ownerID string, page, pageSize int) ([]domain.ReportRecord, int64, error) {
	where := ""
	args := []any{}
	if ownerID != "" {
		where = "WHERE owner_id = ?"
		args = append(args, ownerID)
	}

	var totalCount int64
	if err := r.db.GetContext(ctx, &totalCount, "SELECT COUNT(*) FROM reports "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	query := `
		SELECT id, owner_id, text, date, window_start, window_end, chat_id, created_at
		FROM reports
		` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`

	reports := []domain.ReportRecord{}
	if err := r.db.SelectContext(ctx, &reports, query, append(args, pageSize, offset(page, pageSize))...); err != nil {
		return nil, 0, fmt.Errorf("failed to list reports: %w", err)
	}

	return reports, totalCount, nil
}

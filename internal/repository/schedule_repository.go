package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/digest-scheduler/internal/domain"
)

type ScheduleRepository struct {
	db *sqlx.DB
}

func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleColumns = `id, time_of_day, target_type, target_id, target_name, is_active, last_run_at, owner_id, created_at, updated_at`

func (r *ScheduleRepository) ListActive(ctx context.Context) ([]domain.Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE is_active = 1
		ORDER BY time_of_day ASC, id ASC
	`

	schedules := []domain.Schedule{}
	if err := r.db.SelectContext(ctx, &schedules, query); err != nil {
		return nil, fmt.Errorf("failed to list active schedules: %w", err)
	}

	return schedules, nil
}

func (r *ScheduleRepository) GetActiveByID(ctx context.Context, id string) (*domain.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = ? AND is_active = 1`

	var schedules []domain.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, id); err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	if len(schedules) == 0 {
		return nil, fmt.Errorf("active schedule %s: %w", id, ErrNotFound)
	}

	return &schedules[0], nil
}

// MarkRun records a firing attempt for the day.
func (r *ScheduleRepository) MarkRun(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE schedules SET last_run_at = ?, updated_at = ? WHERE id = ?",
		at.UTC(), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark schedule run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("schedule %s: %w", id, ErrNotFound)
	}

	return nil
}

func (r *ScheduleRepository) Create(ctx context.Context, s *domain.Schedule) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now

	query := `
		INSERT INTO schedules (id, time_of_day, target_type, target_id, target_name, is_active, last_run_at, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var lastRun *time.Time
	if s.LastRunAt != nil {
		t := s.LastRunAt.UTC()
		lastRun = &t
	}

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.TimeOfDay, s.TargetType, s.TargetID, s.TargetName,
		s.IsActive, lastRun, s.OwnerID, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}

	return nil
}

func (r *ScheduleRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM schedules WHERE is_active = 1"); err != nil {
		return 0, fmt.Errorf("failed to count schedules: %w", err)
	}
	return n, nil
}

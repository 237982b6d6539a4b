package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-api/internal/models"
)

const scheduleColumns = `id, academy_id, name, days, start_time, end_time, created_at, updated_at`

// ScheduleRepository handles persistence for weekly schedules.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// List returns schedules of an academy, optionally those that include a day code.
func (r *ScheduleRepository) List(ctx context.Context, academyID string, filter models.ScheduleFilter) ([]models.Schedule, int, error) {
	args := []interface{}{academyID}
	conditions := []string{"academy_id = $1"}
	if filter.Day != "" {
		args = append(args, strings.ToUpper(filter.Day))
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(string_to_array(days, ','))", len(args)))
	}
	where := strings.Join(conditions, " AND ")
	size, offset := pageBounds(filter.Page, filter.PageSize)

	query := fmt.Sprintf(`SELECT %s FROM schedules WHERE %s ORDER BY start_time ASC, name ASC LIMIT %d OFFSET %d`, scheduleColumns, where, size, offset)
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedules: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM schedules WHERE "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedules: %w", err)
	}
	return schedules, total, nil
}

// FindByID returns a schedule scoped to the academy.
func (r *ScheduleRepository) FindByID(ctx context.Context, academyID, id string) (*models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE academy_id = $1 AND id = $2`
	var schedule models.Schedule
	if err := r.db.GetContext(ctx, &schedule, query, academyID, id); err != nil {
		err = mapPQError(err)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find schedule: %w", err)
	}
	return &schedule, nil
}

// Create inserts a schedule.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now
	const query = `INSERT INTO schedules (id, academy_id, name, days, start_time, end_time, created_at, updated_at)
        VALUES (:id, :academy_id, :name, :days, :start_time, :end_time, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("create schedule: %w", mapConstraint(err))
	}
	return nil
}

// Update modifies an existing schedule.
func (r *ScheduleRepository) Update(ctx context.Context, schedule *models.Schedule) error {
	schedule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedules SET name = :name, days = :days, start_time = :start_time, end_time = :end_time, updated_at = :updated_at
        WHERE id = :id AND academy_id = :academy_id`
	res, err := r.db.NamedExecContext(ctx, query, schedule)
	if err != nil {
		return fmt.Errorf("update schedule: %w", mapPQError(err))
	}
	return requireAffected(res)
}

// Delete removes a schedule. Courses referencing it keep running without one.
func (r *ScheduleRepository) Delete(ctx context.Context, academyID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE academy_id = $1 AND id = $2`, academyID, id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", mapPQError(err))
	}
	return requireAffected(res)
}

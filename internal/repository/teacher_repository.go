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

const teacherColumns = `id, academy_id, full_name, phone, email, active, created_at, updated_at`

// TeacherRepository handles persistence for teachers.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns teachers filtered by name and status.
func (r *TeacherRepository) List(ctx context.Context, academyID string, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	args := []interface{}{academyID}
	conditions := []string{"academy_id = $1"}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("LOWER(full_name) LIKE $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")
	size, offset := pageBounds(filter.Page, filter.PageSize)

	query := fmt.Sprintf(`SELECT %s FROM teachers WHERE %s ORDER BY full_name ASC LIMIT %d OFFSET %d`, teacherColumns, where, size, offset)
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list teachers: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM teachers WHERE "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count teachers: %w", err)
	}
	return teachers, total, nil
}

// FindByID returns a teacher scoped to the academy.
func (r *TeacherRepository) FindByID(ctx context.Context, academyID, id string) (*models.Teacher, error) {
	query := `SELECT ` + teacherColumns + ` FROM teachers WHERE academy_id = $1 AND id = $2`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, academyID, id); err != nil {
		err = mapPQError(err)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find teacher: %w", err)
	}
	return &teacher, nil
}

// Create inserts a teacher.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	teacher.CreatedAt = now
	teacher.UpdatedAt = now
	const query = `INSERT INTO teachers (id, academy_id, full_name, phone, email, active, created_at, updated_at)
        VALUES (:id, :academy_id, :full_name, :phone, :email, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("create teacher: %w", mapConstraint(err))
	}
	return nil
}

// Update modifies a teacher record.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	teacher.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teachers SET full_name = :full_name, phone = :phone, email = :email, active = :active, updated_at = :updated_at
        WHERE id = :id AND academy_id = :academy_id`
	res, err := r.db.NamedExecContext(ctx, query, teacher)
	if err != nil {
		return fmt.Errorf("update teacher: %w", mapPQError(err))
	}
	return requireAffected(res)
}

// Deactivate marks a teacher inactive.
func (r *TeacherRepository) Deactivate(ctx context.Context, academyID, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE teachers SET active = false, updated_at = $3 WHERE academy_id = $1 AND id = $2`, academyID, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate teacher: %w", mapPQError(err))
	}
	return requireAffected(res)
}

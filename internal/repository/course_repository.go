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

const courseDetailSelect = `SELECT c.id, c.academy_id, c.name, c.price, c.total_classes, c.schedule_id, c.teacher_id, c.active, c.created_at, c.updated_at,
        s.name AS schedule_name, s.days AS schedule_days, s.start_time, s.end_time, t.full_name AS teacher_name
        FROM courses c
        LEFT JOIN schedules s ON s.id = c.schedule_id
        LEFT JOIN teachers t ON t.id = c.teacher_id`

// CourseRepository handles persistence for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns courses with schedule and teacher names.
func (r *CourseRepository) List(ctx context.Context, academyID string, filter models.CourseFilter) ([]models.CourseDetail, int, error) {
	args := []interface{}{academyID}
	conditions := []string{"c.academy_id = $1"}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("LOWER(c.name) LIKE $%d", len(args)))
	}
	if filter.TeacherID != "" {
		args = append(args, filter.TeacherID)
		conditions = append(conditions, fmt.Sprintf("c.teacher_id = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("c.active = $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")
	size, offset := pageBounds(filter.Page, filter.PageSize)

	query := fmt.Sprintf(`%s WHERE %s ORDER BY c.name ASC LIMIT %d OFFSET %d`, courseDetailSelect, where, size, offset)
	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM courses c WHERE "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}

// ListActive returns every active course of the academy, used for public form options.
func (r *CourseRepository) ListActive(ctx context.Context, academyID string) ([]models.CourseDetail, error) {
	query := courseDetailSelect + ` WHERE c.academy_id = $1 AND c.active = true ORDER BY c.name ASC`
	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query, academyID); err != nil {
		return nil, fmt.Errorf("list active courses: %w", err)
	}
	return courses, nil
}

// FindByID returns a course scoped to the academy.
func (r *CourseRepository) FindByID(ctx context.Context, academyID, id string) (*models.CourseDetail, error) {
	query := courseDetailSelect + ` WHERE c.academy_id = $1 AND c.id = $2`
	var course models.CourseDetail
	if err := r.db.GetContext(ctx, &course, query, academyID, id); err != nil {
		err = mapPQError(err)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &course, nil
}

// Create inserts a course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now
	const query = `INSERT INTO courses (id, academy_id, name, price, total_classes, schedule_id, teacher_id, active, created_at, updated_at)
        VALUES (:id, :academy_id, :name, :price, :total_classes, :schedule_id, :teacher_id, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", mapConstraint(err))
	}
	return nil
}

// Update modifies course defaults. Enrollment snapshots are stored separately and stay untouched.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET name = :name, price = :price, total_classes = :total_classes, schedule_id = :schedule_id,
        teacher_id = :teacher_id, active = :active, updated_at = :updated_at WHERE id = :id AND academy_id = :academy_id`
	res, err := r.db.NamedExecContext(ctx, query, course)
	if err != nil {
		return fmt.Errorf("update course: %w", mapPQError(err))
	}
	return requireAffected(res)
}

// Deactivate hides a course from new enrollments.
func (r *CourseRepository) Deactivate(ctx context.Context, academyID, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE courses SET active = false, updated_at = $3 WHERE academy_id = $1 AND id = $2`, academyID, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate course: %w", mapPQError(err))
	}
	return requireAffected(res)
}

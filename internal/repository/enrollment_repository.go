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

const enrollmentDetailSelect = `SELECT e.id, e.academy_id, e.student_id, e.course_id, e.price_charged, e.course_price, e.registration_price,
        e.includes_registration, e.is_personalized, e.is_active, e.class_count, e.total_classes, e.recorded_by, e.created_at, e.updated_at,
        s.full_name AS student_name, s.dni AS student_dni, c.name AS course_name, sc.name AS schedule_name, sc.days AS schedule_days,
        COALESCE((SELECT SUM(p.amount) FROM enrollment_payments p WHERE p.enrollment_id = e.id), 0) AS total_paid
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN courses c ON c.id = e.course_id
        LEFT JOIN schedules sc ON sc.id = c.schedule_id`

// EnrollmentRepository persists enrollments and their price snapshots.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs an EnrollmentRepository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Create inserts a new enrollment with its snapshot in a single statement.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	enrollment.CreatedAt = now
	enrollment.UpdatedAt = now
	const query = `INSERT INTO enrollments (id, academy_id, student_id, course_id, price_charged, course_price, registration_price,
        includes_registration, is_personalized, is_active, class_count, total_classes, recorded_by, created_at, updated_at)
        VALUES (:id, :academy_id, :student_id, :course_id, :price_charged, :course_price, :registration_price,
        :includes_registration, :is_personalized, :is_active, :class_count, :total_classes, :recorded_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", mapConstraint(err))
	}
	return nil
}

// FindByID returns the enrollment detail scoped to the academy.
func (r *EnrollmentRepository) FindByID(ctx context.Context, academyID, id string) (*models.EnrollmentDetail, error) {
	query := enrollmentDetailSelect + ` WHERE e.academy_id = $1 AND e.id = $2`
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, query, academyID, id); err != nil {
		err = mapPQError(err)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &detail, nil
}

// FindPublic resolves an enrollment by id alone, for badge links.
func (r *EnrollmentRepository) FindPublic(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	query := enrollmentDetailSelect + ` WHERE e.id = $1`
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		err = mapPQError(err)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &detail, nil
}

// List returns enrollments matching the filter, newest first.
func (r *EnrollmentRepository) List(ctx context.Context, academyID string, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	args := []interface{}{academyID}
	conditions := []string{"e.academy_id = $1"}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("e.student_id = $%d", len(args)))
	}
	if filter.CourseID != "" {
		args = append(args, filter.CourseID)
		conditions = append(conditions, fmt.Sprintf("e.course_id = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("e.is_active = $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")
	size, offset := pageBounds(filter.Page, filter.PageSize)

	query := fmt.Sprintf(`%s WHERE %s ORDER BY e.created_at DESC LIMIT %d OFFSET %d`, enrollmentDetailSelect, where, size, offset)
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM enrollments e WHERE "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// SetActive soft-cancels or reactivates an enrollment.
func (r *EnrollmentRepository) SetActive(ctx context.Context, academyID, id string, active bool) error {
	const query = `UPDATE enrollments SET is_active = $3, updated_at = $4 WHERE academy_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, query, academyID, id, active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set enrollment active: %w", mapPQError(err))
	}
	return requireAffected(res)
}

// UpdateTotalClasses overrides the class target and marks the enrollment personalized.
// The price snapshot columns are deliberately absent from this statement.
func (r *EnrollmentRepository) UpdateTotalClasses(ctx context.Context, academyID, id string, totalClasses int) error {
	const query = `UPDATE enrollments SET total_classes = $3, is_personalized = true, updated_at = $4 WHERE academy_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, query, academyID, id, totalClasses, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update enrollment targets: %w", mapPQError(err))
	}
	return requireAffected(res)
}

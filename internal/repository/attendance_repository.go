package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/pkg/database"
)

const attendanceColumns = `id, academy_id, enrollment_id, day, teacher_id, own_check, admin_check, created_at, updated_at`

// DeltaFunc maps an admin_check transition to the class_count movement it causes.
type DeltaFunc func(previous, next bool) int

// AttendanceRepository persists attendance rows together with the enrollment class counter.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Set applies an attendance change in one transaction. The enrollment row is locked first so
// concurrent toggles for the same enrollment serialise, the delta comes from the persisted
// admin_check, and class_count is clamped at zero. Returns sql.ErrNoRows for unknown enrollments.
func (r *AttendanceRepository) Set(ctx context.Context, academyID string, change models.AttendanceChange, delta DeltaFunc) (*models.AttendanceResult, error) {
	var result models.AttendanceResult
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var classCount int
		const lockEnrollment = `SELECT class_count FROM enrollments WHERE academy_id = $1 AND id = $2 FOR UPDATE`
		if err := tx.GetContext(ctx, &classCount, lockEnrollment, academyID, change.EnrollmentID); err != nil {
			err = mapPQError(err)
			if errors.Is(err, sql.ErrNoRows) {
				return err
			}
			return fmt.Errorf("lock enrollment: %w", err)
		}

		var previous models.Attendance
		found := true
		lockAttendance := `SELECT ` + attendanceColumns + ` FROM attendance WHERE enrollment_id = $1 AND day = $2 FOR UPDATE`
		if err := tx.GetContext(ctx, &previous, lockAttendance, change.EnrollmentID, change.Day); err != nil {
			err = mapPQError(err)
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("lock attendance: %w", err)
			}
			found = false
		}

		next := previous
		if !found {
			next = models.Attendance{
				ID:           uuid.NewString(),
				AcademyID:    academyID,
				EnrollmentID: change.EnrollmentID,
				Day:          change.Day,
			}
		}
		if change.OwnCheck != nil {
			next.OwnCheck = *change.OwnCheck
		}
		if change.AdminCheck != nil {
			next.AdminCheck = *change.AdminCheck
		}
		if change.TeacherID != nil {
			next.TeacherID = change.TeacherID
		}

		d := delta(previous.AdminCheck, next.AdminCheck)
		now := time.Now().UTC()
		if d != 0 {
			const bump = `UPDATE enrollments SET class_count = GREATEST(class_count + $3, 0), updated_at = $4 WHERE academy_id = $1 AND id = $2 RETURNING class_count`
			if err := tx.GetContext(ctx, &classCount, bump, academyID, change.EnrollmentID, d, now); err != nil {
				return fmt.Errorf("update class count: %w", mapPQError(err))
			}
		}

		if next.CreatedAt.IsZero() {
			next.CreatedAt = now
		}
		next.UpdatedAt = now
		upsert := `INSERT INTO attendance (id, academy_id, enrollment_id, day, teacher_id, own_check, admin_check, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (enrollment_id, day)
        DO UPDATE SET teacher_id = EXCLUDED.teacher_id, own_check = EXCLUDED.own_check, admin_check = EXCLUDED.admin_check, updated_at = EXCLUDED.updated_at
        RETURNING ` + attendanceColumns
		var stored models.Attendance
		if err := tx.GetContext(ctx, &stored, upsert, next.ID, next.AcademyID, next.EnrollmentID, next.Day, next.TeacherID,
			next.OwnCheck, next.AdminCheck, next.CreatedAt, next.UpdatedAt); err != nil {
			return fmt.Errorf("upsert attendance: %w", err)
		}

		result = models.AttendanceResult{Attendance: stored, Delta: d, ClassCount: classCount}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListByEnrollment returns the attendance history of an enrollment, most recent day first.
func (r *AttendanceRepository) ListByEnrollment(ctx context.Context, academyID, enrollmentID string) ([]models.Attendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance WHERE academy_id = $1 AND enrollment_id = $2 ORDER BY day DESC`
	var rows []models.Attendance
	if err := r.db.SelectContext(ctx, &rows, query, academyID, enrollmentID); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return rows, nil
}

// Roster flattens every active enrollment of a course with its attendance state on day.
func (r *AttendanceRepository) Roster(ctx context.Context, academyID, courseID string, day time.Time) ([]models.RosterEntry, error) {
	const query = `SELECT e.id AS enrollment_id, s.id AS student_id, s.full_name AS student_name, s.dni AS student_dni,
        a.id AS attendance_id, COALESCE(a.own_check, false) AS own_check, COALESCE(a.admin_check, false) AS admin_check,
        e.class_count, e.total_classes, GREATEST(e.total_classes - e.class_count, 0) AS remaining_classes
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        LEFT JOIN attendance a ON a.enrollment_id = e.id AND a.day = $3
        WHERE e.academy_id = $1 AND e.course_id = $2 AND e.is_active = true
        ORDER BY s.full_name ASC`
	var entries []models.RosterEntry
	if err := r.db.SelectContext(ctx, &entries, query, academyID, courseID, day); err != nil {
		return nil, fmt.Errorf("course roster: %w", err)
	}
	return entries, nil
}

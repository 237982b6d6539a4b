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

const studentColumns = `id, academy_id, dni, full_name, phone, email, birth_date, guardian_name, active, created_at, updated_at`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, academyID string, filter models.StudentFilter) ([]models.Student, int, error) {
	args := []interface{}{academyID}
	conditions := []string{"academy_id = $1"}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR dni LIKE $%d)", len(args), len(args)))
	}
	where := strings.Join(conditions, " AND ")

	allowedSorts := map[string]string{
		"full_name":  "full_name",
		"dni":        "dni",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	size, offset := pageBounds(filter.Page, filter.PageSize)

	query := fmt.Sprintf(`SELECT %s FROM students WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`, studentColumns, where, column, order, size, offset)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students WHERE "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, academyID, id string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE academy_id = $1 AND id = $2`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, academyID, id); err != nil {
		err = mapPQError(err)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// ExistsByDNI checks if a student with given DNI exists optionally excluding an ID.
func (r *StudentRepository) ExistsByDNI(ctx context.Context, academyID, dni, excludeID string) (bool, error) {
	query := "SELECT 1 FROM students WHERE academy_id = $1 AND dni = $2"
	args := []interface{}{academyID, dni}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		err = mapPQError(err)
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check dni: %w", err)
	}
	return true, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, academy_id, dni, full_name, phone, email, birth_date, guardian_name, active, created_at, updated_at)
        VALUES (:id, :academy_id, :dni, :full_name, :phone, :email, :birth_date, :guardian_name, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", mapConstraint(err))
	}
	return nil
}

// Update modifies an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET dni = :dni, full_name = :full_name, phone = :phone, email = :email, birth_date = :birth_date,
        guardian_name = :guardian_name, active = :active, updated_at = :updated_at WHERE id = :id AND academy_id = :academy_id`
	res, err := r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		return fmt.Errorf("update student: %w", mapPQError(err))
	}
	return requireAffected(res)
}

// Deactivate marks a student as inactive.
func (r *StudentRepository) Deactivate(ctx context.Context, academyID, id string) error {
	const query = `UPDATE students SET active = false, updated_at = $3 WHERE academy_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, query, academyID, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate student: %w", mapPQError(err))
	}
	return requireAffected(res)
}

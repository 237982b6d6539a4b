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

const volunteerColumns = `id, academy_id, dni, full_name, phone, email, area, active, created_at, updated_at`

// VolunteerRepository manages persistence for volunteers.
type VolunteerRepository struct {
	db *sqlx.DB
}

// NewVolunteerRepository constructs a VolunteerRepository.
func NewVolunteerRepository(db *sqlx.DB) *VolunteerRepository {
	return &VolunteerRepository{db: db}
}

// List returns volunteers filtered by name, area and status.
func (r *VolunteerRepository) List(ctx context.Context, academyID string, filter models.VolunteerFilter) ([]models.Volunteer, int, error) {
	args := []interface{}{academyID}
	conditions := []string{"academy_id = $1"}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR dni LIKE $%d)", len(args), len(args)))
	}
	if filter.Area != "" {
		args = append(args, filter.Area)
		conditions = append(conditions, fmt.Sprintf("area = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")
	size, offset := pageBounds(filter.Page, filter.PageSize)

	query := fmt.Sprintf(`SELECT %s FROM volunteers WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`, volunteerColumns, where, size, offset)
	var volunteers []models.Volunteer
	if err := r.db.SelectContext(ctx, &volunteers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list volunteers: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM volunteers WHERE "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count volunteers: %w", err)
	}
	return volunteers, total, nil
}

// FindByID returns a volunteer scoped to the academy.
func (r *VolunteerRepository) FindByID(ctx context.Context, academyID, id string) (*models.Volunteer, error) {
	query := `SELECT ` + volunteerColumns + ` FROM volunteers WHERE academy_id = $1 AND id = $2`
	var volunteer models.Volunteer
	if err := r.db.GetContext(ctx, &volunteer, query, academyID, id); err != nil {
		err = mapPQError(err)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find volunteer: %w", err)
	}
	return &volunteer, nil
}

// FindPublic resolves a volunteer by id alone, for badge links that carry no tenant.
func (r *VolunteerRepository) FindPublic(ctx context.Context, id string) (*models.Volunteer, error) {
	query := `SELECT ` + volunteerColumns + ` FROM volunteers WHERE id = $1`
	var volunteer models.Volunteer
	if err := r.db.GetContext(ctx, &volunteer, query, id); err != nil {
		err = mapPQError(err)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find volunteer: %w", err)
	}
	return &volunteer, nil
}

// Create inserts a volunteer.
func (r *VolunteerRepository) Create(ctx context.Context, volunteer *models.Volunteer) error {
	if volunteer.ID == "" {
		volunteer.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	volunteer.CreatedAt = now
	volunteer.UpdatedAt = now
	const query = `INSERT INTO volunteers (id, academy_id, dni, full_name, phone, email, area, active, created_at, updated_at)
        VALUES (:id, :academy_id, :dni, :full_name, :phone, :email, :area, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, volunteer); err != nil {
		return fmt.Errorf("create volunteer: %w", mapConstraint(err))
	}
	return nil
}

// Update modifies a volunteer.
func (r *VolunteerRepository) Update(ctx context.Context, volunteer *models.Volunteer) error {
	volunteer.UpdatedAt = time.Now().UTC()
	const query = `UPDATE volunteers SET dni = :dni, full_name = :full_name, phone = :phone, email = :email, area = :area,
        active = :active, updated_at = :updated_at WHERE id = :id AND academy_id = :academy_id`
	res, err := r.db.NamedExecContext(ctx, query, volunteer)
	if err != nil {
		return fmt.Errorf("update volunteer: %w", mapPQError(err))
	}
	return requireAffected(res)
}

// Delete removes a volunteer.
func (r *VolunteerRepository) Delete(ctx context.Context, academyID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM volunteers WHERE academy_id = $1 AND id = $2`, academyID, id)
	if err != nil {
		return fmt.Errorf("delete volunteer: %w", mapPQError(err))
	}
	return requireAffected(res)
}

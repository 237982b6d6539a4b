package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-api/internal/models"
)

const academyColumns = `id, name, slug, registration_price, logo_path, timezone, created_at, updated_at`

// AcademyRepository reads and updates tenant settings.
type AcademyRepository struct {
	db *sqlx.DB
}

// NewAcademyRepository constructs an AcademyRepository.
func NewAcademyRepository(db *sqlx.DB) *AcademyRepository {
	return &AcademyRepository{db: db}
}

// FindByID returns the academy or sql.ErrNoRows.
func (r *AcademyRepository) FindByID(ctx context.Context, id string) (*models.Academy, error) {
	query := `SELECT ` + academyColumns + ` FROM academies WHERE id = $1`
	var academy models.Academy
	if err := r.db.GetContext(ctx, &academy, query, id); err != nil {
		err = mapPQError(err)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find academy: %w", err)
	}
	return &academy, nil
}

// FindBySlug resolves the academy named in public URLs.
func (r *AcademyRepository) FindBySlug(ctx context.Context, slug string) (*models.Academy, error) {
	query := `SELECT ` + academyColumns + ` FROM academies WHERE slug = $1`
	var academy models.Academy
	if err := r.db.GetContext(ctx, &academy, query, slug); err != nil {
		err = mapPQError(err)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find academy by slug: %w", err)
	}
	return &academy, nil
}

// Update persists name, registration fee and timezone.
func (r *AcademyRepository) Update(ctx context.Context, academy *models.Academy) error {
	academy.UpdatedAt = time.Now().UTC()
	const query = `UPDATE academies SET name = :name, registration_price = :registration_price, timezone = :timezone, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, academy)
	if err != nil {
		return fmt.Errorf("update academy: %w", mapPQError(err))
	}
	return requireAffected(res)
}

// UpdateLogo replaces the stored logo path.
func (r *AcademyRepository) UpdateLogo(ctx context.Context, id string, path *string) error {
	const query = `UPDATE academies SET logo_path = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, path, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update academy logo: %w", mapPQError(err))
	}
	return requireAffected(res)
}

// requireAffected turns a zero-row write into sql.ErrNoRows.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

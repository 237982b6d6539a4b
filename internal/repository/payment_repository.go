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
)

const paymentColumns = `id, academy_id, enrollment_id, amount, method, code, recorded_by, receipt_path, thumbnail_path, paid_at, created_at, updated_at`

// PaymentRepository stores payment rows. Every mutation is a single-row statement.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts one payment row.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if payment.PaidAt.IsZero() {
		payment.PaidAt = now
	}
	payment.CreatedAt = now
	payment.UpdatedAt = now
	const query = `INSERT INTO enrollment_payments (id, academy_id, enrollment_id, amount, method, code, recorded_by, receipt_path, thumbnail_path, paid_at, created_at, updated_at)
        VALUES (:id, :academy_id, :enrollment_id, :amount, :method, :code, :recorded_by, :receipt_path, :thumbnail_path, :paid_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create payment: %w", mapConstraint(err))
	}
	return nil
}

// ListByEnrollment returns the payments of an enrollment in the order they were made.
func (r *PaymentRepository) ListByEnrollment(ctx context.Context, academyID, enrollmentID string) ([]models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM enrollment_payments WHERE academy_id = $1 AND enrollment_id = $2 ORDER BY paid_at ASC, created_at ASC`
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, academyID, enrollmentID); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// FindByID returns a payment belonging to the enrollment.
func (r *PaymentRepository) FindByID(ctx context.Context, academyID, enrollmentID, id string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM enrollment_payments WHERE academy_id = $1 AND enrollment_id = $2 AND id = $3`
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, query, academyID, enrollmentID, id); err != nil {
		err = mapPQError(err)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}
	return &payment, nil
}

// Update applies the non-nil patch fields. It reports false when the payment does not exist.
func (r *PaymentRepository) Update(ctx context.Context, academyID, enrollmentID, id string, patch models.PaymentPatch) (bool, error) {
	const query = `UPDATE enrollment_payments SET amount = COALESCE($4, amount), method = COALESCE($5, method),
        code = CASE WHEN $6::boolean THEN NULLIF($7::text, '') ELSE code END, updated_at = $8
        WHERE academy_id = $1 AND enrollment_id = $2 AND id = $3`
	var method interface{}
	if patch.Method != nil {
		method = string(*patch.Method)
	}
	var amount interface{}
	if patch.Amount != nil {
		amount = *patch.Amount
	}
	var code interface{}
	if patch.Code != nil {
		code = *patch.Code
	}
	res, err := r.db.ExecContext(ctx, query, academyID, enrollmentID, id, amount, method, patch.Code != nil, code, time.Now().UTC())
	if err != nil {
		err = mapPQError(err)
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("update payment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// Delete removes a payment and returns the deleted row, or nil when nothing matched.
func (r *PaymentRepository) Delete(ctx context.Context, academyID, enrollmentID, id string) (*models.Payment, error) {
	query := `DELETE FROM enrollment_payments WHERE academy_id = $1 AND enrollment_id = $2 AND id = $3 RETURNING ` + paymentColumns
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, query, academyID, enrollmentID, id); err != nil {
		err = mapPQError(err)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("delete payment: %w", mapPQError(err))
	}
	return &payment, nil
}

// SetReceipt stores the receipt object key and clears any stale thumbnail.
func (r *PaymentRepository) SetReceipt(ctx context.Context, academyID, id, receiptPath string) error {
	const query = `UPDATE enrollment_payments SET receipt_path = $3, thumbnail_path = NULL, updated_at = $4 WHERE academy_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, query, academyID, id, receiptPath, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set payment receipt: %w", mapPQError(err))
	}
	return requireAffected(res)
}

// SetThumbnail records the generated thumbnail only if the receipt has not changed meanwhile.
func (r *PaymentRepository) SetThumbnail(ctx context.Context, academyID, receiptPath, thumbnailPath string) (bool, error) {
	const query = `UPDATE enrollment_payments SET thumbnail_path = $3, updated_at = $4 WHERE academy_id = $1 AND receipt_path = $2`
	res, err := r.db.ExecContext(ctx, query, academyID, receiptPath, thumbnailPath, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("set payment thumbnail: %w", mapPQError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// SummaryByCourse folds the ledger of every active enrollment in a course.
func (r *PaymentRepository) SummaryByCourse(ctx context.Context, academyID, courseID string) ([]models.PaymentReportRow, error) {
	const query = `SELECT e.id AS enrollment_id, s.full_name AS student_name, s.dni AS student_dni, e.price_charged,
        COALESCE(SUM(p.amount), 0) AS total_paid, e.price_charged - COALESCE(SUM(p.amount), 0) AS balance
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        LEFT JOIN enrollment_payments p ON p.enrollment_id = e.id
        WHERE e.academy_id = $1 AND e.course_id = $2 AND e.is_active = true
        GROUP BY e.id, s.full_name, s.dni, e.price_charged
        ORDER BY s.full_name ASC`
	var rows []models.PaymentReportRow
	if err := r.db.SelectContext(ctx, &rows, query, academyID, courseID); err != nil {
		return nil, fmt.Errorf("summarise payments: %w", err)
	}
	return rows, nil
}

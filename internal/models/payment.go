package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates accepted payment channels.
type PaymentMethod string

const (
	PaymentMethodYape     PaymentMethod = "yape"
	PaymentMethodEfectivo PaymentMethod = "efectivo"
)

// Valid reports whether the method is supported.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodYape || m == PaymentMethodEfectivo
}

// Payment is one amount recorded against an enrollment.
type Payment struct {
	ID            string          `db:"id" json:"id"`
	AcademyID     string          `db:"academy_id" json:"academy_id"`
	EnrollmentID  string          `db:"enrollment_id" json:"enrollment_id"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	Method        PaymentMethod   `db:"method" json:"method"`
	Code          *string         `db:"code" json:"code,omitempty"`
	RecordedBy    string          `db:"recorded_by" json:"recorded_by"`
	ReceiptPath   *string         `db:"receipt_path" json:"-"`
	ThumbnailPath *string         `db:"thumbnail_path" json:"-"`
	ReceiptURL    string          `db:"-" json:"receipt_url,omitempty"`
	ThumbnailURL  string          `db:"-" json:"thumbnail_url,omitempty"`
	PaidAt        time.Time       `db:"paid_at" json:"paid_at"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// PaymentPatch lists the fields an update may change. Nil leaves the field untouched.
type PaymentPatch struct {
	Amount *decimal.Decimal
	Method *PaymentMethod
	// Code nil keeps the stored code; an empty string clears it.
	Code *string
}

// Ledger is the folded view of an enrollment's payments.
type Ledger struct {
	EnrollmentID string          `json:"enrollment_id"`
	PriceCharged decimal.Decimal `json:"price_charged"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	Balance      decimal.Decimal `json:"balance"`
	Payments     []Payment       `json:"payments"`
}

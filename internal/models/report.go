package models

import "github.com/shopspring/decimal"

// PaymentReportRow summarises the ledger of one active enrollment.
type PaymentReportRow struct {
	EnrollmentID string          `db:"enrollment_id" json:"enrollment_id"`
	StudentName  string          `db:"student_name" json:"student_name"`
	StudentDNI   string          `db:"student_dni" json:"student_dni"`
	PriceCharged decimal.Decimal `db:"price_charged" json:"price_charged"`
	TotalPaid    decimal.Decimal `db:"total_paid" json:"total_paid"`
	Balance      decimal.Decimal `db:"balance" json:"balance"`
}

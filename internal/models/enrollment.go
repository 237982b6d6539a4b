package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Enrollment is one student's registration in one course with a frozen price snapshot.
// PriceCharged, CoursePrice and RegistrationPrice never change after insert.
type Enrollment struct {
	ID                   string          `db:"id" json:"id"`
	AcademyID            string          `db:"academy_id" json:"academy_id"`
	StudentID            string          `db:"student_id" json:"student_id"`
	CourseID             string          `db:"course_id" json:"course_id"`
	PriceCharged         decimal.Decimal `db:"price_charged" json:"price_charged"`
	CoursePrice          decimal.Decimal `db:"course_price" json:"course_price"`
	RegistrationPrice    decimal.Decimal `db:"registration_price" json:"registration_price"`
	IncludesRegistration bool            `db:"includes_registration" json:"includes_registration"`
	IsPersonalized       bool            `db:"is_personalized" json:"is_personalized"`
	IsActive             bool            `db:"is_active" json:"is_active"`
	ClassCount           int             `db:"class_count" json:"class_count"`
	TotalClasses         int             `db:"total_classes" json:"total_classes"`
	RecordedBy           string          `db:"recorded_by" json:"recorded_by"`
	CreatedAt            time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at" json:"updated_at"`
}

// EnrollmentDetail joins student, course and schedule names plus the paid total.
type EnrollmentDetail struct {
	Enrollment
	StudentName  string          `db:"student_name" json:"student_name"`
	StudentDNI   string          `db:"student_dni" json:"student_dni"`
	CourseName   string          `db:"course_name" json:"course_name"`
	ScheduleName *string         `db:"schedule_name" json:"schedule_name,omitempty"`
	ScheduleDays *string         `db:"schedule_days" json:"schedule_days,omitempty"`
	TotalPaid    decimal.Decimal `db:"total_paid" json:"total_paid"`
	Balance      decimal.Decimal `db:"-" json:"balance"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	StudentID string
	CourseID  string
	Active    *bool
	Page      int
	PageSize  int
}

// EnrollmentQuote is the charge snapshot an operator confirms before enrolling.
type EnrollmentQuote struct {
	CourseID             string          `json:"course_id"`
	CourseName           string          `json:"course_name"`
	CoursePrice          decimal.Decimal `json:"course_price"`
	RegistrationPrice    decimal.Decimal `json:"registration_price"`
	PriceCharged         decimal.Decimal `json:"price_charged"`
	TotalClasses         int             `json:"total_classes"`
	IncludesRegistration bool            `json:"includes_registration"`
	IsPersonalized       bool            `json:"is_personalized"`
}

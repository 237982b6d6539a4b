package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Course is an offered class. Price and TotalClasses are defaults copied into enrollments.
type Course struct {
	ID           string          `db:"id" json:"id"`
	AcademyID    string          `db:"academy_id" json:"academy_id"`
	Name         string          `db:"name" json:"name"`
	Price        decimal.Decimal `db:"price" json:"price"`
	TotalClasses int             `db:"total_classes" json:"total_classes"`
	ScheduleID   *string         `db:"schedule_id" json:"schedule_id,omitempty"`
	TeacherID    *string         `db:"teacher_id" json:"teacher_id,omitempty"`
	Active       bool            `db:"active" json:"active"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// CourseDetail joins the schedule and teacher names.
type CourseDetail struct {
	Course
	ScheduleName *string `db:"schedule_name" json:"schedule_name,omitempty"`
	ScheduleDays *string `db:"schedule_days" json:"schedule_days,omitempty"`
	StartTime    *string `db:"start_time" json:"start_time,omitempty"`
	EndTime      *string `db:"end_time" json:"end_time,omitempty"`
	TeacherName  *string `db:"teacher_name" json:"teacher_name,omitempty"`
}

// CourseFilter captures filtering options for listing courses.
type CourseFilter struct {
	Search    string
	TeacherID string
	Active    *bool
	Page      int
	PageSize  int
}

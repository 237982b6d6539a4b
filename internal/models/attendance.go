package models

import "time"

// Attendance is the single row per (enrollment, day). Only AdminCheck transitions move class_count.
type Attendance struct {
	ID           string    `db:"id" json:"id"`
	AcademyID    string    `db:"academy_id" json:"academy_id"`
	EnrollmentID string    `db:"enrollment_id" json:"enrollment_id"`
	Day          time.Time `db:"day" json:"day"`
	TeacherID    *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	OwnCheck     bool      `db:"own_check" json:"own_check"`
	AdminCheck   bool      `db:"admin_check" json:"admin_check"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// AttendanceChange is the requested state for one day. Nil checks keep their previous value.
type AttendanceChange struct {
	EnrollmentID string
	Day          time.Time
	TeacherID    *string
	OwnCheck     *bool
	AdminCheck   *bool
}

// AttendanceResult reports the stored row and the counter movement it caused.
type AttendanceResult struct {
	Attendance Attendance `json:"attendance"`
	Delta      int        `json:"delta"`
	ClassCount int        `json:"class_count"`
}

// RosterEntry is one active enrollment of a course with its attendance state for a day.
type RosterEntry struct {
	EnrollmentID     string  `db:"enrollment_id" json:"enrollment_id"`
	StudentID        string  `db:"student_id" json:"student_id"`
	StudentName      string  `db:"student_name" json:"student_name"`
	StudentDNI       string  `db:"student_dni" json:"student_dni"`
	AttendanceID     *string `db:"attendance_id" json:"attendance_id,omitempty"`
	OwnCheck         bool    `db:"own_check" json:"own_check"`
	AdminCheck       bool    `db:"admin_check" json:"admin_check"`
	ClassCount       int     `db:"class_count" json:"class_count"`
	TotalClasses     int     `db:"total_classes" json:"total_classes"`
	RemainingClasses int     `db:"remaining_classes" json:"remaining_classes"`
}

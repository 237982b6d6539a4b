package models

import "time"

// Schedule is a named weekly time slot shared by courses.
type Schedule struct {
	ID        string    `db:"id" json:"id"`
	AcademyID string    `db:"academy_id" json:"academy_id"`
	Name      string    `db:"name" json:"name"`
	Days      string    `db:"days" json:"days"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ScheduleFilter describes query params for listing schedules.
type ScheduleFilter struct {
	Day      string
	Page     int
	PageSize int
}

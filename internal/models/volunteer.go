package models

import "time"

// Volunteer is a helper registered with the academy, usually through the public form.
type Volunteer struct {
	ID        string    `db:"id" json:"id"`
	AcademyID string    `db:"academy_id" json:"academy_id"`
	DNI       string    `db:"dni" json:"dni"`
	FullName  string    `db:"full_name" json:"full_name"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Area      *string   `db:"area" json:"area,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// VolunteerFilter captures filtering options for listing volunteers.
type VolunteerFilter struct {
	Search   string
	Area     string
	Active   *bool
	Page     int
	PageSize int
}

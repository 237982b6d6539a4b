package models

import "time"

// Student represents a learner registered in the academy. DNI is unique per academy.
type Student struct {
	ID           string     `db:"id" json:"id"`
	AcademyID    string     `db:"academy_id" json:"academy_id"`
	DNI          string     `db:"dni" json:"dni"`
	FullName     string     `db:"full_name" json:"full_name"`
	Phone        *string    `db:"phone" json:"phone,omitempty"`
	Email        *string    `db:"email" json:"email,omitempty"`
	BirthDate    *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	GuardianName *string    `db:"guardian_name" json:"guardian_name,omitempty"`
	Active       bool       `db:"active" json:"active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Academy is the tenant. Its registration fee is the singleton consumed at enrollment time.
type Academy struct {
	ID                string          `db:"id" json:"id"`
	Name              string          `db:"name" json:"name"`
	Slug              string          `db:"slug" json:"slug"`
	RegistrationPrice decimal.Decimal `db:"registration_price" json:"registration_price"`
	LogoPath          *string         `db:"logo_path" json:"logo_path,omitempty"`
	Timezone          string          `db:"timezone" json:"timezone"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// Location resolves the academy timezone, falling back to the given zone name and then UTC.
func (a Academy) Location(fallback string) *time.Location {
	for _, name := range []string{a.Timezone, fallback} {
		if name == "" {
			continue
		}
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.UTC
}

// Today returns the academy-local calendar date at midnight UTC.
func (a Academy) Today(now time.Time, fallback string) time.Time {
	local := now.In(a.Location(fallback))
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

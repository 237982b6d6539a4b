package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Constraint failures surfaced by PostgreSQL, independent of the driver error type.
var (
	ErrUniqueViolation     = errors.New("unique violation")
	ErrForeignKeyViolation = errors.New("foreign key violation")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqInvalidText         = "22P02"
)

// mapConstraint converts driver constraint errors into repository sentinels, keeping the constraint name.
func mapConstraint(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqUniqueViolation:
		return fmt.Errorf("%w: %s", ErrUniqueViolation, pqErr.Constraint)
	case pqForeignKeyViolation:
		return fmt.Errorf("%w: %s", ErrForeignKeyViolation, pqErr.Constraint)
	case pqInvalidText:
		// a malformed uuid reference cannot point at any row
		return fmt.Errorf("%w: %s", ErrForeignKeyViolation, pqErr.Message)
	default:
		return err
	}
}

// mapPQError is mapConstraint for statements addressed by id: a malformed uuid matches no row,
// so it reads as sql.ErrNoRows.
func mapPQError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqInvalidText {
		return sql.ErrNoRows
	}
	return mapConstraint(err)
}

func pageBounds(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return size, (page - 1) * size
}

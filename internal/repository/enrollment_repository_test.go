package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-api/internal/models"
)

func enrollmentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "academy_id", "student_id", "course_id", "price_charged", "course_price", "registration_price",
		"includes_registration", "is_personalized", "is_active", "class_count", "total_classes", "recorded_by", "created_at", "updated_at",
		"student_name", "student_dni", "course_name", "schedule_name", "schedule_days", "total_paid"})
}

func TestEnrollmentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("INSERT INTO enrollments").
		WithArgs(anyArgs(15)...).
		WillReturnResult(sqlmock.NewResult(1, 1))

	enrollment := &models.Enrollment{
		AcademyID:    "acad-1",
		StudentID:    "s1",
		CourseID:     "c1",
		PriceCharged: decimal.NewFromInt(180),
		CoursePrice:  decimal.NewFromInt(150),
		IsActive:     true,
	}
	require.NoError(t, repo.Create(context.Background(), enrollment))
	assert.NotEmpty(t, enrollment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	now := time.Now()
	rows := enrollmentRows().AddRow("enr-1", "acad-1", "s1", "c1", "180.00", "150.00", "30.00", true, false, true, 3, 12, "ana", now, now,
		"Ana", "70000001", "Marinera", "Tarde", "LUN,MIE", "150.00")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.academy_id = $1 AND e.id = $2")).
		WithArgs("acad-1", "enr-1").
		WillReturnRows(rows)

	detail, err := repo.FindByID(context.Background(), "acad-1", "enr-1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(180).Equal(detail.PriceCharged))
	assert.True(t, decimal.NewFromInt(150).Equal(detail.TotalPaid))
	assert.Equal(t, "Marinera", detail.CourseName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	active := true
	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.academy_id = $1 AND e.course_id = $2 AND e.is_active = $3 ORDER BY e.created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("acad-1", "c1", true).
		WillReturnRows(enrollmentRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM enrollments e WHERE e.academy_id = $1 AND e.course_id = $2 AND e.is_active = $3")).
		WithArgs("acad-1", "c1", true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, total, err := repo.List(context.Background(), "acad-1", models.EnrollmentFilter{CourseID: "c1", Active: &active})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryUpdateTotalClassesLeavesSnapshot(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET total_classes = $3, is_personalized = true, updated_at = $4 WHERE academy_id = $1 AND id = $2")).
		WithArgs("acad-1", "enr-1", 16, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateTotalClasses(context.Background(), "acad-1", "enr-1", 16))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositorySetActiveMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET is_active = $3")).
		WithArgs("acad-1", "ghost", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetActive(context.Background(), "acad-1", "ghost", false)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

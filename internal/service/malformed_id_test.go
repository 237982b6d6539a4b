package service

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-api/internal/repository"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

func invalidUUID() error {
	return &pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "not-a-uuid"`}
}

func newSQLMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestEnrollMalformedStudentIDIsValidationError(t *testing.T) {
	db, mock := newSQLMock(t)
	mock.ExpectQuery("FROM students").WillReturnError(invalidUUID())

	f := newEnrollmentFixture()
	svc := NewEnrollmentService(f.store, f.courses, repository.NewStudentRepository(db), f.academy, nil, nil, nil)

	_, err := svc.Enroll(context.Background(), testAcademy, "admin-1", EnrollRequest{
		StudentID:    "not-a-uuid",
		QuoteRequest: QuoteRequest{CourseID: "course-1"},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Details, "student_id")
	assert.Empty(t, f.store.enrollments)
}

func TestBadgeMalformedIDIsNotFound(t *testing.T) {
	db, mock := newSQLMock(t)
	mock.ExpectQuery("FROM enrollments").WillReturnError(invalidUUID())
	mock.ExpectQuery("FROM volunteers").WillReturnError(invalidUUID())

	svc := NewBadgeService(repository.NewEnrollmentRepository(db), repository.NewVolunteerRepository(db), &fakeAcademies{}, nil, nil)

	_, err := svc.EnrollmentBadge(context.Background(), "not-a-uuid")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.VolunteerBadge(context.Background(), "not-a-uuid")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

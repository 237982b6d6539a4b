package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-api/internal/models"
)

func transition(previous, next bool) int {
	switch {
	case !previous && next:
		return 1
	case previous && !next:
		return -1
	default:
		return 0
	}
}

func attendanceRow(id string, day time.Time, own, admin bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "academy_id", "enrollment_id", "day", "teacher_id", "own_check", "admin_check", "created_at", "updated_at"}).
		AddRow(id, "acad-1", "enr-1", day, "t1", own, admin, now, now)
}

func TestAttendanceSetFirstAdminCheckIncrements(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)
	day := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	admin := true
	teacher := "t1"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT class_count FROM enrollments WHERE academy_id = $1 AND id = $2 FOR UPDATE")).
		WithArgs("acad-1", "enr-1").
		WillReturnRows(sqlmock.NewRows([]string{"class_count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("FROM attendance WHERE enrollment_id = $1 AND day = $2 FOR UPDATE")).
		WithArgs("enr-1", day).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE enrollments SET class_count = GREATEST(class_count + $3, 0)")).
		WithArgs("acad-1", "enr-1", 1, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"class_count"}).AddRow(4))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO attendance")).
		WithArgs(sqlmock.AnyArg(), "acad-1", "enr-1", day, "t1", false, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(attendanceRow("att-1", day, false, true))
	mock.ExpectCommit()

	result, err := repo.Set(context.Background(), "acad-1", models.AttendanceChange{EnrollmentID: "enr-1", Day: day, TeacherID: &teacher, AdminCheck: &admin}, transition)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Delta)
	assert.Equal(t, 4, result.ClassCount)
	assert.True(t, result.Attendance.AdminCheck)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceSetRepeatedCheckLeavesCounter(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)
	day := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	admin := true

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT class_count FROM enrollments")).
		WillReturnRows(sqlmock.NewRows([]string{"class_count"}).AddRow(4))
	mock.ExpectQuery(regexp.QuoteMeta("FROM attendance WHERE enrollment_id = $1 AND day = $2 FOR UPDATE")).
		WillReturnRows(attendanceRow("att-1", day, true, true))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO attendance")).
		WithArgs("att-1", "acad-1", "enr-1", sqlmock.AnyArg(), sqlmock.AnyArg(), true, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(attendanceRow("att-1", day, true, true))
	mock.ExpectCommit()

	result, err := repo.Set(context.Background(), "acad-1", models.AttendanceChange{EnrollmentID: "enr-1", Day: day, AdminCheck: &admin}, transition)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Delta)
	assert.Equal(t, 4, result.ClassCount)
	assert.True(t, result.Attendance.OwnCheck, "unspecified own_check keeps its stored value")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceSetRollsBackWhenUpsertFails(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)
	day := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	admin := false

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT class_count FROM enrollments")).
		WillReturnRows(sqlmock.NewRows([]string{"class_count"}).AddRow(4))
	mock.ExpectQuery(regexp.QuoteMeta("FROM attendance WHERE enrollment_id = $1 AND day = $2 FOR UPDATE")).
		WillReturnRows(attendanceRow("att-1", day, false, true))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE enrollments SET class_count")).
		WithArgs("acad-1", "enr-1", -1, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"class_count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO attendance")).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.Set(context.Background(), "acad-1", models.AttendanceChange{EnrollmentID: "enr-1", Day: day, AdminCheck: &admin}, transition)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceSetUnknownEnrollment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT class_count FROM enrollments")).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Set(context.Background(), "acad-1", models.AttendanceChange{EnrollmentID: "missing", Day: time.Now()}, transition)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRoster(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)
	day := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"enrollment_id", "student_id", "student_name", "student_dni", "attendance_id", "own_check", "admin_check", "class_count", "total_classes", "remaining_classes"}).
		AddRow("enr-1", "s1", "Ana", "70000001", nil, false, false, 3, 12, 9).
		AddRow("enr-2", "s2", "Beto", "70000002", "att-2", true, true, 5, 12, 7)
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN attendance a ON a.enrollment_id = e.id AND a.day = $3")).
		WithArgs("acad-1", "c1", day).
		WillReturnRows(rows)

	entries, err := repo.Roster(context.Background(), "acad-1", "c1", day)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Nil(t, entries[0].AttendanceID)
	assert.Equal(t, 9, entries[0].RemainingClasses)
	assert.True(t, entries[1].AdminCheck)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/repository"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

// DateLayout is the wire format of calendar days.
const DateLayout = "2006-01-02"

type attendanceRepository interface {
	Set(ctx context.Context, academyID string, change models.AttendanceChange, delta repository.DeltaFunc) (*models.AttendanceResult, error)
	ListByEnrollment(ctx context.Context, academyID, enrollmentID string) ([]models.Attendance, error)
	Roster(ctx context.Context, academyID, courseID string, day time.Time) ([]models.RosterEntry, error)
}

type academyClock interface {
	Today(ctx context.Context, academyID string) (time.Time, error)
}

// SetAttendanceRequest is the requested state of one day. Nil checks keep their stored value.
type SetAttendanceRequest struct {
	Date       string  `json:"date"`
	TeacherID  *string `json:"teacher_id,omitempty"`
	OwnCheck   *bool   `json:"own_check,omitempty"`
	AdminCheck *bool   `json:"admin_check,omitempty"`
}

// AttendanceService reconciles daily attendance with the enrollment class counter.
type AttendanceService struct {
	repo        attendanceRepository
	enrollments enrollmentFinder
	courses     courseLookup
	clock       academyClock
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, enrollments enrollmentFinder, courses courseLookup, clock academyClock, metrics *MetricsService, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		repo:        repo,
		enrollments: enrollments,
		courses:     courses,
		clock:       clock,
		metrics:     metrics,
		logger:      logger,
	}
}

// SetAttendance stores the day's checks and moves class_count by the admin_check transition.
func (s *AttendanceService) SetAttendance(ctx context.Context, academyID, enrollmentID string, req SetAttendanceRequest) (*models.AttendanceResult, error) {
	day, err := s.resolveDay(ctx, academyID, req.Date)
	if err != nil {
		return nil, err
	}
	teacherID := blankToNil(req.TeacherID)
	if teacherID != nil {
		if _, err := uuid.Parse(*teacherID); err != nil {
			return nil, invalidField("teacher_id", "identificador no válido")
		}
	}
	change := models.AttendanceChange{
		EnrollmentID: enrollmentID,
		Day:          day,
		TeacherID:    teacherID,
		OwnCheck:     req.OwnCheck,
		AdminCheck:   req.AdminCheck,
	}
	result, err := s.repo.Set(ctx, academyID, change, AdminCheckDelta)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "inscripción no encontrada")
		}
		s.logger.Error("set attendance",
			zap.String("academy_id", academyID),
			zap.String("enrollment_id", enrollmentID),
			zap.String("day", day.Format(DateLayout)),
			zap.Error(err))
		return nil, repoError(err, "inscripción no encontrada", "el docente indicado no existe", "no se pudo registrar la asistencia")
	}
	s.metrics.AttendanceTransition(result.Delta)
	if result.Delta != 0 {
		s.logger.Info("class count moved",
			zap.String("enrollment_id", enrollmentID),
			zap.String("day", day.Format(DateLayout)),
			zap.Int("delta", result.Delta),
			zap.Int("class_count", result.ClassCount))
	}
	return result, nil
}

// Roster lists the active enrollments of a course with their state on day (academy today when empty).
func (s *AttendanceService) Roster(ctx context.Context, academyID, courseID, date string) ([]models.RosterEntry, time.Time, error) {
	day, err := s.resolveDay(ctx, academyID, date)
	if err != nil {
		return nil, time.Time{}, err
	}
	if _, err := s.courses.FindByID(ctx, academyID, courseID); err != nil {
		return nil, time.Time{}, repoError(err, "curso no encontrado", "", "no se pudo cargar el curso")
	}
	entries, err := s.repo.Roster(ctx, academyID, courseID, day)
	if err != nil {
		s.logger.Error("load roster", zap.String("course_id", courseID), zap.Error(err))
		return nil, time.Time{}, appErrors.Backend(err, "no se pudo cargar la lista de asistencia")
	}
	if entries == nil {
		entries = []models.RosterEntry{}
	}
	return entries, day, nil
}

// History lists the attendance rows of one enrollment.
func (s *AttendanceService) History(ctx context.Context, academyID, enrollmentID string) ([]models.Attendance, error) {
	if _, err := s.enrollments.FindByID(ctx, academyID, enrollmentID); err != nil {
		return nil, repoError(err, "inscripción no encontrada", "", "no se pudo cargar la inscripción")
	}
	rows, err := s.repo.ListByEnrollment(ctx, academyID, enrollmentID)
	if err != nil {
		return nil, appErrors.Backend(err, "no se pudo cargar la asistencia")
	}
	if rows == nil {
		rows = []models.Attendance{}
	}
	return rows, nil
}

func (s *AttendanceService) resolveDay(ctx context.Context, academyID, date string) (time.Time, error) {
	if date == "" {
		return s.clock.Today(ctx, academyID)
	}
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, invalidField("date", "usa el formato AAAA-MM-DD")
	}
	return day, nil
}

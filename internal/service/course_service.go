package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-api/internal/models"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, academyID string, filter models.CourseFilter) ([]models.CourseDetail, int, error)
	ListActive(ctx context.Context, academyID string) ([]models.CourseDetail, error)
	FindByID(ctx context.Context, academyID, id string) (*models.CourseDetail, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Deactivate(ctx context.Context, academyID, id string) error
}

// CourseRequest is the payload for creating and updating courses.
type CourseRequest struct {
	Name         string          `json:"name" validate:"required,max=120"`
	Price        decimal.Decimal `json:"price"`
	TotalClasses int             `json:"total_classes" validate:"required,min=1"`
	ScheduleID   *string         `json:"schedule_id,omitempty" validate:"omitempty,uuid"`
	TeacherID    *string         `json:"teacher_id,omitempty" validate:"omitempty,uuid"`
	Active       *bool           `json:"active,omitempty"`
}

// CourseService manages the course catalog. Price edits never reach existing enrollments.
type CourseService struct {
	repo      courseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(repo courseRepository, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, validator: validate, logger: logger}
}

// List returns courses with pagination metadata.
func (s *CourseService) List(ctx context.Context, academyID string, filter models.CourseFilter) ([]models.CourseDetail, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, academyID, filter)
	if err != nil {
		return nil, nil, appErrors.Backend(err, "no se pudieron listar los cursos")
	}
	if courses == nil {
		courses = []models.CourseDetail{}
	}
	return courses, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// ListActive returns the courses open for enrollment.
func (s *CourseService) ListActive(ctx context.Context, academyID string) ([]models.CourseDetail, error) {
	courses, err := s.repo.ListActive(ctx, academyID)
	if err != nil {
		return nil, appErrors.Backend(err, "no se pudieron listar los cursos")
	}
	return courses, nil
}

// Get returns one course.
func (s *CourseService) Get(ctx context.Context, academyID, id string) (*models.CourseDetail, error) {
	course, err := s.repo.FindByID(ctx, academyID, id)
	if err != nil {
		return nil, repoError(err, "curso no encontrado", "", "no se pudo cargar el curso")
	}
	return course, nil
}

// Create adds a course.
func (s *CourseService) Create(ctx context.Context, academyID string, req CourseRequest) (*models.CourseDetail, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	course := &models.Course{
		AcademyID:    academyID,
		Name:         req.Name,
		Price:        req.Price,
		TotalClasses: req.TotalClasses,
		ScheduleID:   blankToNil(req.ScheduleID),
		TeacherID:    blankToNil(req.TeacherID),
		Active:       req.Active == nil || *req.Active,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		s.logger.Error("create course", zap.String("academy_id", academyID), zap.Error(err))
		return nil, repoError(err, "", "el horario o el docente indicado no existe", "no se pudo crear el curso")
	}
	return s.Get(ctx, academyID, course.ID)
}

// Update edits a course.
func (s *CourseService) Update(ctx context.Context, academyID, id string, req CourseRequest) (*models.CourseDetail, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	existing, err := s.repo.FindByID(ctx, academyID, id)
	if err != nil {
		return nil, repoError(err, "curso no encontrado", "", "no se pudo cargar el curso")
	}
	course := existing.Course
	course.Name = req.Name
	course.Price = req.Price
	course.TotalClasses = req.TotalClasses
	course.ScheduleID = blankToNil(req.ScheduleID)
	course.TeacherID = blankToNil(req.TeacherID)
	if req.Active != nil {
		course.Active = *req.Active
	}
	if err := s.repo.Update(ctx, &course); err != nil {
		s.logger.Error("update course", zap.String("course_id", id), zap.Error(err))
		return nil, repoError(err, "curso no encontrado", "el horario o el docente indicado no existe", "no se pudo actualizar el curso")
	}
	return s.Get(ctx, academyID, id)
}

// Deactivate hides a course from new enrollments.
func (s *CourseService) Deactivate(ctx context.Context, academyID, id string) error {
	if err := s.repo.Deactivate(ctx, academyID, id); err != nil {
		return repoError(err, "curso no encontrado", "", "no se pudo desactivar el curso")
	}
	return nil
}

func (s *CourseService) check(req CourseRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return invalid(err)
	}
	if req.Price.IsNegative() {
		return invalidField("price", "no puede ser negativo")
	}
	return nil
}

func blankToNil(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}

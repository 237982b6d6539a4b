package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-api/internal/models"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context, academyID string, filter models.TeacherFilter) ([]models.Teacher, int, error)
	FindByID(ctx context.Context, academyID, id string) (*models.Teacher, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	Deactivate(ctx context.Context, academyID, id string) error
}

// TeacherRequest is the payload for creating and updating teachers.
type TeacherRequest struct {
	FullName string  `json:"full_name" validate:"required,max=120"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Active   *bool   `json:"active,omitempty"`
}

// TeacherService manages instructors.
type TeacherService struct {
	repo      teacherRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs the teacher service.
func NewTeacherService(repo teacherRepository, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, validator: validate, logger: logger}
}

// List returns teachers and pagination metadata.
func (s *TeacherService) List(ctx context.Context, academyID string, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	teachers, total, err := s.repo.List(ctx, academyID, filter)
	if err != nil {
		return nil, nil, appErrors.Backend(err, "no se pudieron listar los docentes")
	}
	if teachers == nil {
		teachers = []models.Teacher{}
	}
	return teachers, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns one teacher.
func (s *TeacherService) Get(ctx context.Context, academyID, id string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, academyID, id)
	if err != nil {
		return nil, repoError(err, "docente no encontrado", "", "no se pudo cargar el docente")
	}
	return teacher, nil
}

// Create adds a teacher.
func (s *TeacherService) Create(ctx context.Context, academyID string, req TeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err)
	}
	teacher := &models.Teacher{
		AcademyID: academyID,
		FullName:  req.FullName,
		Phone:     blankToNil(req.Phone),
		Email:     blankToNil(req.Email),
		Active:    req.Active == nil || *req.Active,
	}
	if err := s.repo.Create(ctx, teacher); err != nil {
		s.logger.Error("create teacher", zap.String("academy_id", academyID), zap.Error(err))
		return nil, repoError(err, "", "", "no se pudo crear el docente")
	}
	return teacher, nil
}

// Update edits a teacher.
func (s *TeacherService) Update(ctx context.Context, academyID, id string, req TeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err)
	}
	teacher, err := s.repo.FindByID(ctx, academyID, id)
	if err != nil {
		return nil, repoError(err, "docente no encontrado", "", "no se pudo cargar el docente")
	}
	teacher.FullName = req.FullName
	teacher.Phone = blankToNil(req.Phone)
	teacher.Email = blankToNil(req.Email)
	if req.Active != nil {
		teacher.Active = *req.Active
	}
	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, repoError(err, "docente no encontrado", "", "no se pudo actualizar el docente")
	}
	return teacher, nil
}

// Deactivate marks a teacher inactive; past attendance keeps its reference.
func (s *TeacherService) Deactivate(ctx context.Context, academyID, id string) error {
	if err := s.repo.Deactivate(ctx, academyID, id); err != nil {
		return repoError(err, "docente no encontrado", "", "no se pudo desactivar el docente")
	}
	return nil
}

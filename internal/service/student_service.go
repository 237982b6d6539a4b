package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-api/internal/models"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

const duplicateDNIMessage = "el DNI ya está registrado"

type studentRepository interface {
	List(ctx context.Context, academyID string, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, academyID, id string) (*models.Student, error)
	ExistsByDNI(ctx context.Context, academyID, dni, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Deactivate(ctx context.Context, academyID, id string) error
}

// StudentRequest is the payload for creating and updating students.
type StudentRequest struct {
	DNI          string     `json:"dni" validate:"required,numeric,len=8"`
	FullName     string     `json:"full_name" validate:"required,max=120"`
	Phone        *string    `json:"phone,omitempty" validate:"omitempty,max=20"`
	Email        *string    `json:"email,omitempty" validate:"omitempty,email"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	GuardianName *string    `json:"guardian_name,omitempty" validate:"omitempty,max=120"`
	Active       *bool      `json:"active,omitempty"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, academyID string, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, academyID, filter)
	if err != nil {
		return nil, nil, appErrors.Backend(err, "no se pudieron listar los alumnos")
	}
	if students == nil {
		students = []models.Student{}
	}
	return students, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns one student.
func (s *StudentService) Get(ctx context.Context, academyID, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, academyID, id)
	if err != nil {
		return nil, repoError(err, "alumno no encontrado", "", "no se pudo cargar el alumno")
	}
	return student, nil
}

// Create registers a new student. A repeated DNI is a constraint violation.
func (s *StudentService) Create(ctx context.Context, academyID string, req StudentRequest) (*models.Student, error) {
	req.DNI = strings.TrimSpace(req.DNI)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err)
	}
	exists, err := s.repo.ExistsByDNI(ctx, academyID, req.DNI, "")
	if err != nil {
		return nil, appErrors.Backend(err, "no se pudo validar el DNI")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConstraint, duplicateDNIMessage)
	}
	student := &models.Student{
		AcademyID:    academyID,
		DNI:          req.DNI,
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        blankToNil(req.Phone),
		Email:        blankToNil(req.Email),
		BirthDate:    req.BirthDate,
		GuardianName: blankToNil(req.GuardianName),
		Active:       req.Active == nil || *req.Active,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		s.logger.Error("create student", zap.String("academy_id", academyID), zap.Error(err))
		// the unique index still wins a race between two registrations of the same DNI
		return nil, repoError(err, "", duplicateDNIMessage, "no se pudo registrar al alumno")
	}
	return student, nil
}

// Update modifies an existing student record.
func (s *StudentService) Update(ctx context.Context, academyID, id string, req StudentRequest) (*models.Student, error) {
	req.DNI = strings.TrimSpace(req.DNI)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err)
	}
	student, err := s.repo.FindByID(ctx, academyID, id)
	if err != nil {
		return nil, repoError(err, "alumno no encontrado", "", "no se pudo cargar el alumno")
	}
	if student.DNI != req.DNI {
		exists, err := s.repo.ExistsByDNI(ctx, academyID, req.DNI, id)
		if err != nil {
			return nil, appErrors.Backend(err, "no se pudo validar el DNI")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConstraint, duplicateDNIMessage)
		}
	}
	student.DNI = req.DNI
	student.FullName = strings.TrimSpace(req.FullName)
	student.Phone = blankToNil(req.Phone)
	student.Email = blankToNil(req.Email)
	student.BirthDate = req.BirthDate
	student.GuardianName = blankToNil(req.GuardianName)
	if req.Active != nil {
		student.Active = *req.Active
	}
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, repoError(err, "alumno no encontrado", duplicateDNIMessage, "no se pudo actualizar el alumno")
	}
	return student, nil
}

// Deactivate marks a student inactive. Enrollments are left as they are.
func (s *StudentService) Deactivate(ctx context.Context, academyID, id string) error {
	if err := s.repo.Deactivate(ctx, academyID, id); err != nil {
		return repoError(err, "alumno no encontrado", "", "no se pudo desactivar el alumno")
	}
	return nil
}

package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-api/internal/models"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

type enrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	FindByID(ctx context.Context, academyID, id string) (*models.EnrollmentDetail, error)
	List(ctx context.Context, academyID string, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	SetActive(ctx context.Context, academyID, id string, active bool) error
	UpdateTotalClasses(ctx context.Context, academyID, id string, totalClasses int) error
}

type courseLookup interface {
	FindByID(ctx context.Context, academyID, id string) (*models.CourseDetail, error)
}

type studentLookup interface {
	FindByID(ctx context.Context, academyID, id string) (*models.Student, error)
}

type academyReader interface {
	Get(ctx context.Context, academyID string) (*models.Academy, error)
}

// QuoteRequest describes the charge an operator wants to preview.
type QuoteRequest struct {
	CourseID                 string           `json:"course_id" validate:"required"`
	IncludesRegistration     bool             `json:"includes_registration"`
	PersonalizedPrice        *decimal.Decimal `json:"personalized_price,omitempty"`
	PersonalizedTotalClasses *int             `json:"personalized_total_classes,omitempty" validate:"omitempty,min=1"`
}

// EnrollRequest registers a student in a course.
type EnrollRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	QuoteRequest
}

// UpdateTargetsRequest overrides the class target of an enrollment.
type UpdateTargetsRequest struct {
	TotalClasses int `json:"total_classes" validate:"required,min=1"`
}

// EnrollmentService builds enrollments with a frozen price snapshot.
type EnrollmentService struct {
	repo      enrollmentRepository
	courses   courseLookup
	students  studentLookup
	academies academyReader
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(repo enrollmentRepository, courses courseLookup, students studentLookup, academies academyReader, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		repo:      repo,
		courses:   courses,
		students:  students,
		academies: academies,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Quote computes the snapshot an enrollment would receive without persisting anything.
func (s *EnrollmentService) Quote(ctx context.Context, academyID string, req QuoteRequest) (*models.EnrollmentQuote, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err)
	}
	course, snap, err := s.price(ctx, academyID, req)
	if err != nil {
		return nil, err
	}
	return &models.EnrollmentQuote{
		CourseID:             course.ID,
		CourseName:           course.Name,
		CoursePrice:          snap.CoursePrice,
		RegistrationPrice:    snap.RegistrationPrice,
		PriceCharged:         snap.PriceCharged,
		TotalClasses:         snap.TotalClasses,
		IncludesRegistration: req.IncludesRegistration,
		IsPersonalized:       snap.IsPersonalized,
	}, nil
}

// Enroll creates the enrollment in a single insert and returns the stored detail.
func (s *EnrollmentService) Enroll(ctx context.Context, academyID, recorder string, req EnrollRequest) (*models.EnrollmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err)
	}
	if _, err := s.students.FindByID(ctx, academyID, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invalidField("student_id", "el alumno seleccionado no existe")
		}
		return nil, appErrors.Backend(err, "no se pudo crear la inscripción")
	}
	course, snap, err := s.price(ctx, academyID, req.QuoteRequest)
	if err != nil {
		return nil, err
	}

	enrollment := &models.Enrollment{
		AcademyID:            academyID,
		StudentID:            req.StudentID,
		CourseID:             course.ID,
		PriceCharged:         snap.PriceCharged,
		CoursePrice:          snap.CoursePrice,
		RegistrationPrice:    snap.RegistrationPrice,
		IncludesRegistration: req.IncludesRegistration,
		IsPersonalized:       snap.IsPersonalized,
		IsActive:             true,
		ClassCount:           0,
		TotalClasses:         snap.TotalClasses,
		RecordedBy:           recorder,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		s.logger.Error("create enrollment",
			zap.String("academy_id", academyID),
			zap.String("student_id", req.StudentID),
			zap.String("course_id", course.ID),
			zap.Error(err))
		return nil, repoError(err, "", "el alumno o el curso ya no existen", "no se pudo crear la inscripción")
	}
	s.metrics.EnrollmentCreated()
	s.logger.Info("enrollment created",
		zap.String("academy_id", academyID),
		zap.String("enrollment_id", enrollment.ID),
		zap.String("price_charged", enrollment.PriceCharged.StringFixed(2)))
	return s.Get(ctx, academyID, enrollment.ID)
}

func (s *EnrollmentService) price(ctx context.Context, academyID string, req QuoteRequest) (*models.CourseDetail, PriceSnapshot, error) {
	if req.PersonalizedPrice != nil && req.PersonalizedPrice.IsNegative() {
		return nil, PriceSnapshot{}, invalidField("personalized_price", "no puede ser negativo")
	}
	course, err := s.courses.FindByID(ctx, academyID, req.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, PriceSnapshot{}, invalidField("course_id", "el curso seleccionado no existe")
		}
		return nil, PriceSnapshot{}, appErrors.Backend(err, "no se pudo cargar el curso")
	}
	if !course.Active {
		return nil, PriceSnapshot{}, invalidField("course_id", "el curso seleccionado no está activo")
	}
	academy, err := s.academies.Get(ctx, academyID)
	if err != nil {
		return nil, PriceSnapshot{}, err
	}
	snap := ComputeSnapshot(PricingInput{
		CoursePrice:          course.Price,
		CourseTotalClasses:   course.TotalClasses,
		RegistrationFee:      academy.RegistrationPrice,
		IncludesRegistration: req.IncludesRegistration,
		PersonalizedPrice:    req.PersonalizedPrice,
		PersonalizedClasses:  req.PersonalizedTotalClasses,
	})
	return course, snap, nil
}

// Get returns one enrollment with its balance.
func (s *EnrollmentService) Get(ctx context.Context, academyID, id string) (*models.EnrollmentDetail, error) {
	detail, err := s.repo.FindByID(ctx, academyID, id)
	if err != nil {
		return nil, repoError(err, "inscripción no encontrada", "", "no se pudo cargar la inscripción")
	}
	detail.Balance = detail.PriceCharged.Sub(detail.TotalPaid)
	return detail, nil
}

// List returns enrollments and pagination metadata.
func (s *EnrollmentService) List(ctx context.Context, academyID string, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, academyID, filter)
	if err != nil {
		s.logger.Error("list enrollments", zap.String("academy_id", academyID), zap.Error(err))
		return nil, nil, appErrors.Backend(err, "no se pudieron listar las inscripciones")
	}
	for i := range items {
		items[i].Balance = items[i].PriceCharged.Sub(items[i].TotalPaid)
	}
	if items == nil {
		items = []models.EnrollmentDetail{}
	}
	return items, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Cancel soft-cancels an enrollment. Payments and attendance stay untouched.
func (s *EnrollmentService) Cancel(ctx context.Context, academyID, id string) (*models.EnrollmentDetail, error) {
	return s.setActive(ctx, academyID, id, false)
}

// Reactivate undoes a cancellation.
func (s *EnrollmentService) Reactivate(ctx context.Context, academyID, id string) (*models.EnrollmentDetail, error) {
	return s.setActive(ctx, academyID, id, true)
}

func (s *EnrollmentService) setActive(ctx context.Context, academyID, id string, active bool) (*models.EnrollmentDetail, error) {
	if err := s.repo.SetActive(ctx, academyID, id, active); err != nil {
		return nil, repoError(err, "inscripción no encontrada", "", "no se pudo actualizar la inscripción")
	}
	s.logger.Info("enrollment status changed", zap.String("enrollment_id", id), zap.Bool("active", active))
	return s.Get(ctx, academyID, id)
}

// UpdateTargets overrides total_classes and marks the enrollment personalized.
func (s *EnrollmentService) UpdateTargets(ctx context.Context, academyID, id string, req UpdateTargetsRequest) (*models.EnrollmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err)
	}
	if err := s.repo.UpdateTotalClasses(ctx, academyID, id, req.TotalClasses); err != nil {
		return nil, repoError(err, "inscripción no encontrada", "", "no se pudo actualizar la inscripción")
	}
	return s.Get(ctx, academyID, id)
}

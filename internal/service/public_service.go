package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-api/internal/forms"
	"github.com/noah-isme/academy-api/internal/models"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

// SelfServiceRecorder is stored as recorded_by on enrollments created from the public form.
const SelfServiceRecorder = "self-service"

type academyDirectory interface {
	BySlug(ctx context.Context, slug string) (*models.Academy, error)
}

type activeCourseLister interface {
	ListActive(ctx context.Context, academyID string) ([]models.CourseDetail, error)
}

type studentCreator interface {
	Create(ctx context.Context, academyID string, req StudentRequest) (*models.Student, error)
}

type enroller interface {
	Enroll(ctx context.Context, academyID, recorder string, req EnrollRequest) (*models.EnrollmentDetail, error)
}

type volunteerCreator interface {
	Create(ctx context.Context, academyID string, req VolunteerRequest) (*models.Volunteer, error)
}

// SelfEnrollment is the outcome of a public student registration.
type SelfEnrollment struct {
	Student    *models.Student           `json:"student"`
	Enrollment *models.EnrollmentDetail `json:"enrollment"`
}

// PublicService drives the unauthenticated self-service forms.
type PublicService struct {
	academies   academyDirectory
	courses     activeCourseLister
	students    studentCreator
	enrollments enroller
	volunteers  volunteerCreator
	logger      *zap.Logger
	now         func() time.Time
}

// NewPublicService constructs the public flow service.
func NewPublicService(academies academyDirectory, courses activeCourseLister, students studentCreator, enrollments enroller, volunteers volunteerCreator, logger *zap.Logger) *PublicService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PublicService{
		academies:   academies,
		courses:     courses,
		students:    students,
		enrollments: enrollments,
		volunteers:  volunteers,
		logger:      logger,
		now:         time.Now,
	}
}

// Form returns the definition of a public form for the academy.
func (s *PublicService) Form(ctx context.Context, slug, formID string) (*models.Academy, *forms.Form, error) {
	academy, err := s.academies.BySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	form, err := s.form(ctx, academy.ID, formID)
	if err != nil {
		return nil, nil, err
	}
	return academy, form, nil
}

func (s *PublicService) form(ctx context.Context, academyID, formID string) (*forms.Form, error) {
	switch formID {
	case forms.StudentFormID:
		courses, err := s.courses.ListActive(ctx, academyID)
		if err != nil {
			return nil, appErrors.Backend(err, "no se pudieron cargar los cursos")
		}
		options := make([]forms.Option, 0, len(courses))
		for _, c := range courses {
			label := c.Name
			if c.ScheduleName != nil {
				label += " (" + *c.ScheduleName + ")"
			}
			options = append(options, forms.Option{Value: c.ID, Label: label})
		}
		form := forms.StudentRegistration(options)
		return &form, nil
	case forms.VolunteerFormID:
		form := forms.VolunteerRegistration()
		return &form, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrNotFound, "formulario no encontrado")
	}
}

// RegisterStudent validates the student form, creates the student and enrolls them
// in the chosen course with the registration fee included.
func (s *PublicService) RegisterStudent(ctx context.Context, slug string, submission map[string]interface{}) (*SelfEnrollment, error) {
	academy, form, err := s.Form(ctx, slug, forms.StudentFormID)
	if err != nil {
		return nil, err
	}
	values, err := form.Validate(submission, s.now().In(academy.Location("")))
	if err != nil {
		return nil, invalid(err)
	}

	student, err := s.students.Create(ctx, academy.ID, StudentRequest{
		DNI:          values.String(forms.FieldDNI),
		FullName:     values.String(forms.FieldFullName),
		Phone:        values.OptionalString(forms.FieldPhone),
		Email:        values.OptionalString(forms.FieldEmail),
		BirthDate:    values.Date(forms.FieldBirthDate),
		GuardianName: values.OptionalString(forms.FieldGuardianName),
	})
	if err != nil {
		return nil, err
	}
	enrollment, err := s.enrollments.Enroll(ctx, academy.ID, SelfServiceRecorder, EnrollRequest{
		StudentID: student.ID,
		QuoteRequest: QuoteRequest{
			CourseID:             values.String(forms.FieldCourseID),
			IncludesRegistration: true,
		},
	})
	if err != nil {
		// the student stays registered; staff can enroll them manually
		s.logger.Warn("self-service enrollment failed after student creation",
			zap.String("academy_id", academy.ID),
			zap.String("student_id", student.ID),
			zap.Error(err))
		return nil, err
	}
	s.logger.Info("self-service enrollment",
		zap.String("academy_id", academy.ID),
		zap.String("enrollment_id", enrollment.ID))
	return &SelfEnrollment{Student: student, Enrollment: enrollment}, nil
}

// RegisterVolunteer validates the volunteer form and creates the volunteer.
func (s *PublicService) RegisterVolunteer(ctx context.Context, slug string, submission map[string]interface{}) (*models.Volunteer, error) {
	academy, form, err := s.Form(ctx, slug, forms.VolunteerFormID)
	if err != nil {
		return nil, err
	}
	values, err := form.Validate(submission, s.now().In(academy.Location("")))
	if err != nil {
		return nil, invalid(err)
	}
	return s.volunteers.Create(ctx, academy.ID, VolunteerRequest{
		DNI:      values.String(forms.FieldDNI),
		FullName: values.String(forms.FieldFullName),
		Phone:    values.OptionalString(forms.FieldPhone),
		Email:    values.OptionalString(forms.FieldEmail),
		Area:     values.OptionalString(forms.FieldArea),
	})
}

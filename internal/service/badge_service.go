package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/pkg/export"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
	"github.com/noah-isme/academy-api/pkg/storage"
)

type publicEnrollmentFinder interface {
	FindPublic(ctx context.Context, id string) (*models.EnrollmentDetail, error)
}

type publicVolunteerFinder interface {
	FindPublic(ctx context.Context, id string) (*models.Volunteer, error)
}

type academyBranding interface {
	Get(ctx context.Context, academyID string) (*models.Academy, error)
	Logo(academy *models.Academy) []byte
}

type badgeRenderer interface {
	Render(b export.Badge) ([]byte, error)
}

// Document is a rendered file ready to be sent to the client.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// BadgeService renders printable badges whose QR code carries the record id.
type BadgeService struct {
	enrollments publicEnrollmentFinder
	volunteers  publicVolunteerFinder
	academies   academyBranding
	renderer    badgeRenderer
	logger      *zap.Logger
}

// NewBadgeService constructs the badge service.
func NewBadgeService(enrollments publicEnrollmentFinder, volunteers publicVolunteerFinder, academies academyBranding, renderer badgeRenderer, logger *zap.Logger) *BadgeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderer == nil {
		renderer = export.NewBadgeRenderer()
	}
	return &BadgeService{enrollments: enrollments, volunteers: volunteers, academies: academies, renderer: renderer, logger: logger}
}

// EnrollmentBadge renders the ticket of a student enrollment.
func (s *BadgeService) EnrollmentBadge(ctx context.Context, id string) (*Document, error) {
	enrollment, err := s.enrollments.FindPublic(ctx, id)
	if err != nil {
		return nil, repoError(err, "inscripción no encontrada", "", "no se pudo cargar la inscripción")
	}
	lines := []string{"DNI: " + enrollment.StudentDNI}
	if enrollment.ScheduleName != nil {
		schedule := *enrollment.ScheduleName
		if enrollment.ScheduleDays != nil {
			schedule += " " + *enrollment.ScheduleDays
		}
		lines = append(lines, "Horario: "+schedule)
	}
	lines = append(lines, fmt.Sprintf("Clases: %d", enrollment.TotalClasses))
	if !enrollment.IsActive {
		lines = append(lines, "INSCRIPCIÓN ANULADA")
	}
	return s.render(ctx, enrollment.AcademyID, export.Badge{
		Holder:   enrollment.StudentName,
		Subtitle: enrollment.CourseName,
		Lines:    lines,
		Code:     enrollment.ID,
	}, "inscripcion-"+enrollment.ID+".pdf")
}

// VolunteerBadge renders the credential of a volunteer.
func (s *BadgeService) VolunteerBadge(ctx context.Context, id string) (*Document, error) {
	volunteer, err := s.volunteers.FindPublic(ctx, id)
	if err != nil {
		return nil, repoError(err, "voluntario no encontrado", "", "no se pudo cargar el voluntario")
	}
	subtitle := "Voluntario"
	if volunteer.Area != nil {
		subtitle += " - " + *volunteer.Area
	}
	return s.render(ctx, volunteer.AcademyID, export.Badge{
		Holder:   volunteer.FullName,
		Subtitle: subtitle,
		Lines:    []string{"DNI: " + volunteer.DNI},
		Code:     volunteer.ID,
	}, "voluntario-"+volunteer.ID+".pdf")
}

func (s *BadgeService) render(ctx context.Context, academyID string, badge export.Badge, filename string) (*Document, error) {
	academy, err := s.academies.Get(ctx, academyID)
	if err != nil {
		return nil, err
	}
	badge.Title = academy.Name
	if logo := s.academies.Logo(academy); len(logo) > 0 {
		badge.Logo = logo
		badge.LogoType = storage.DetectMIME(logo)
	}
	data, err := s.renderer.Render(badge)
	if err != nil {
		s.logger.Error("render badge", zap.String("code", badge.Code), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo generar la credencial")
	}
	return &Document{Filename: filename, ContentType: "application/pdf", Data: data}, nil
}

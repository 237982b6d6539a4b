package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-api/internal/models"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
	"github.com/noah-isme/academy-api/pkg/realtime"
)

// Volunteer change events.
const (
	EventVolunteerCreated = "volunteer.created"
	EventVolunteerUpdated = "volunteer.updated"
	EventVolunteerDeleted = "volunteer.deleted"
)

type volunteerRepository interface {
	List(ctx context.Context, academyID string, filter models.VolunteerFilter) ([]models.Volunteer, int, error)
	FindByID(ctx context.Context, academyID, id string) (*models.Volunteer, error)
	Create(ctx context.Context, volunteer *models.Volunteer) error
	Update(ctx context.Context, volunteer *models.Volunteer) error
	Delete(ctx context.Context, academyID, id string) error
}

// VolunteerRequest is the payload for creating and updating volunteers.
type VolunteerRequest struct {
	DNI      string  `json:"dni" validate:"required,numeric,len=8"`
	FullName string  `json:"full_name" validate:"required,max=120"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Area     *string `json:"area,omitempty" validate:"omitempty,max=60"`
	Active   *bool   `json:"active,omitempty"`
}

// VolunteerService manages volunteers and announces every change on the realtime hub.
type VolunteerService struct {
	repo      volunteerRepository
	hub       realtime.Hub
	validator *validator.Validate
	logger    *zap.Logger
}

// NewVolunteerService constructs the volunteer service.
func NewVolunteerService(repo volunteerRepository, hub realtime.Hub, validate *validator.Validate, logger *zap.Logger) *VolunteerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VolunteerService{repo: repo, hub: hub, validator: validate, logger: logger}
}

// List returns volunteers and pagination metadata.
func (s *VolunteerService) List(ctx context.Context, academyID string, filter models.VolunteerFilter) ([]models.Volunteer, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, academyID, filter)
	if err != nil {
		return nil, nil, appErrors.Backend(err, "no se pudieron listar los voluntarios")
	}
	if items == nil {
		items = []models.Volunteer{}
	}
	return items, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns one volunteer.
func (s *VolunteerService) Get(ctx context.Context, academyID, id string) (*models.Volunteer, error) {
	volunteer, err := s.repo.FindByID(ctx, academyID, id)
	if err != nil {
		return nil, repoError(err, "voluntario no encontrado", "", "no se pudo cargar el voluntario")
	}
	return volunteer, nil
}

// Create registers a volunteer.
func (s *VolunteerService) Create(ctx context.Context, academyID string, req VolunteerRequest) (*models.Volunteer, error) {
	req.DNI = strings.TrimSpace(req.DNI)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err)
	}
	volunteer := &models.Volunteer{
		AcademyID: academyID,
		DNI:       req.DNI,
		FullName:  strings.TrimSpace(req.FullName),
		Phone:     blankToNil(req.Phone),
		Email:     blankToNil(req.Email),
		Area:      blankToNil(req.Area),
		Active:    req.Active == nil || *req.Active,
	}
	if err := s.repo.Create(ctx, volunteer); err != nil {
		s.logger.Error("create volunteer", zap.String("academy_id", academyID), zap.Error(err))
		return nil, repoError(err, "", duplicateDNIMessage, "no se pudo registrar al voluntario")
	}
	s.publish(ctx, academyID, EventVolunteerCreated, volunteer)
	return volunteer, nil
}

// Update edits a volunteer.
func (s *VolunteerService) Update(ctx context.Context, academyID, id string, req VolunteerRequest) (*models.Volunteer, error) {
	req.DNI = strings.TrimSpace(req.DNI)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err)
	}
	volunteer, err := s.repo.FindByID(ctx, academyID, id)
	if err != nil {
		return nil, repoError(err, "voluntario no encontrado", "", "no se pudo cargar el voluntario")
	}
	volunteer.DNI = req.DNI
	volunteer.FullName = strings.TrimSpace(req.FullName)
	volunteer.Phone = blankToNil(req.Phone)
	volunteer.Email = blankToNil(req.Email)
	volunteer.Area = blankToNil(req.Area)
	if req.Active != nil {
		volunteer.Active = *req.Active
	}
	if err := s.repo.Update(ctx, volunteer); err != nil {
		return nil, repoError(err, "voluntario no encontrado", duplicateDNIMessage, "no se pudo actualizar el voluntario")
	}
	s.publish(ctx, academyID, EventVolunteerUpdated, volunteer)
	return volunteer, nil
}

// Delete removes a volunteer.
func (s *VolunteerService) Delete(ctx context.Context, academyID, id string) error {
	if err := s.repo.Delete(ctx, academyID, id); err != nil {
		return repoError(err, "voluntario no encontrado", "", "no se pudo eliminar el voluntario")
	}
	s.publish(ctx, academyID, EventVolunteerDeleted, map[string]string{"id": id})
	return nil
}

// Subscribe opens a change feed for the academy's volunteers.
func (s *VolunteerService) Subscribe(ctx context.Context, academyID string) (realtime.Subscription, error) {
	if s.hub == nil {
		return nil, appErrors.Clone(appErrors.ErrBackend, "las notificaciones en tiempo real no están disponibles")
	}
	sub, err := s.hub.Subscribe(ctx, realtime.VolunteersTopic(academyID))
	if err != nil {
		return nil, appErrors.Backend(err, "no se pudo abrir el canal en tiempo real")
	}
	return sub, nil
}

func (s *VolunteerService) publish(ctx context.Context, academyID, eventType string, payload interface{}) {
	if s.hub == nil {
		return
	}
	if err := s.hub.Publish(ctx, realtime.VolunteersTopic(academyID), eventType, payload); err != nil {
		s.logger.Warn("publish volunteer event", zap.String("academy_id", academyID), zap.String("type", eventType), zap.Error(err))
	}
}

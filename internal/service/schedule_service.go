package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-api/internal/models"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

var weekDays = map[string]bool{"LUN": true, "MAR": true, "MIE": true, "JUE": true, "VIE": true, "SAB": true, "DOM": true}

type scheduleRepository interface {
	List(ctx context.Context, academyID string, filter models.ScheduleFilter) ([]models.Schedule, int, error)
	FindByID(ctx context.Context, academyID, id string) (*models.Schedule, error)
	Create(ctx context.Context, schedule *models.Schedule) error
	Update(ctx context.Context, schedule *models.Schedule) error
	Delete(ctx context.Context, academyID, id string) error
}

// ScheduleRequest is the payload for creating and updating schedules.
type ScheduleRequest struct {
	Name      string `json:"name" validate:"required,max=80"`
	Days      string `json:"days" validate:"required"`
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"required,datetime=15:04"`
}

// ScheduleService manages weekly time slots.
type ScheduleService struct {
	repo      scheduleRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService constructs the schedule service.
func NewScheduleService(repo scheduleRepository, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, validator: validate, logger: logger}
}

// List returns schedules, optionally those including a given day.
func (s *ScheduleService) List(ctx context.Context, academyID string, filter models.ScheduleFilter) ([]models.Schedule, *models.Pagination, error) {
	filter.Day = strings.ToUpper(strings.TrimSpace(filter.Day))
	items, total, err := s.repo.List(ctx, academyID, filter)
	if err != nil {
		return nil, nil, appErrors.Backend(err, "no se pudieron listar los horarios")
	}
	if items == nil {
		items = []models.Schedule{}
	}
	return items, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns one schedule.
func (s *ScheduleService) Get(ctx context.Context, academyID, id string) (*models.Schedule, error) {
	schedule, err := s.repo.FindByID(ctx, academyID, id)
	if err != nil {
		return nil, repoError(err, "horario no encontrado", "", "no se pudo cargar el horario")
	}
	return schedule, nil
}

// Create adds a schedule.
func (s *ScheduleService) Create(ctx context.Context, academyID string, req ScheduleRequest) (*models.Schedule, error) {
	days, err := s.check(req)
	if err != nil {
		return nil, err
	}
	schedule := &models.Schedule{
		AcademyID: academyID,
		Name:      req.Name,
		Days:      days,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, repoError(err, "", "ya existe un horario con ese nombre", "no se pudo crear el horario")
	}
	return schedule, nil
}

// Update edits a schedule.
func (s *ScheduleService) Update(ctx context.Context, academyID, id string, req ScheduleRequest) (*models.Schedule, error) {
	days, err := s.check(req)
	if err != nil {
		return nil, err
	}
	schedule, err := s.repo.FindByID(ctx, academyID, id)
	if err != nil {
		return nil, repoError(err, "horario no encontrado", "", "no se pudo cargar el horario")
	}
	schedule.Name = req.Name
	schedule.Days = days
	schedule.StartTime = req.StartTime
	schedule.EndTime = req.EndTime
	if err := s.repo.Update(ctx, schedule); err != nil {
		return nil, repoError(err, "horario no encontrado", "ya existe un horario con ese nombre", "no se pudo actualizar el horario")
	}
	return schedule, nil
}

// Delete removes a schedule that no course references.
func (s *ScheduleService) Delete(ctx context.Context, academyID, id string) error {
	if err := s.repo.Delete(ctx, academyID, id); err != nil {
		s.logger.Warn("delete schedule", zap.String("schedule_id", id), zap.Error(err))
		return repoError(err, "horario no encontrado", "el horario está en uso", "no se pudo eliminar el horario")
	}
	return nil
}

// check validates the payload and returns the normalised day list.
func (s *ScheduleService) check(req ScheduleRequest) (string, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", invalid(err)
	}
	if req.EndTime <= req.StartTime {
		return "", invalidField("end_time", "debe ser posterior a la hora de inicio")
	}
	parts := strings.Split(req.Days, ",")
	days := make([]string, 0, len(parts))
	for _, part := range parts {
		day := strings.ToUpper(strings.TrimSpace(part))
		if day == "" {
			continue
		}
		if !weekDays[day] {
			return "", invalidField("days", "día desconocido: "+day)
		}
		days = append(days, day)
	}
	if len(days) == 0 {
		return "", invalidField("days", "es obligatorio")
	}
	return strings.Join(days, ","), nil
}

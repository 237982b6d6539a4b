package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/pkg/cache"
	"github.com/noah-isme/academy-api/pkg/storage"
)

const logoMaxSide = 512

type academyRepository interface {
	FindByID(ctx context.Context, id string) (*models.Academy, error)
	FindBySlug(ctx context.Context, slug string) (*models.Academy, error)
	Update(ctx context.Context, academy *models.Academy) error
	UpdateLogo(ctx context.Context, id string, path *string) error
}

// UpdateAcademyRequest is the payload for editing academy settings.
type UpdateAcademyRequest struct {
	Name              string          `json:"name" validate:"required,max=120"`
	RegistrationPrice decimal.Decimal `json:"registration_price"`
	Timezone          string          `json:"timezone" validate:"omitempty,max=64"`
}

// AcademySettings is the settings view returned to staff.
type AcademySettings struct {
	models.Academy
	LogoURL string `json:"logo_url,omitempty"`
}

// AcademyService owns the tenant singleton: name, registration fee, logo and timezone.
type AcademyService struct {
	repo            academyRepository
	cache           *CacheService
	files           *FileService
	validator       *validator.Validate
	logger          *zap.Logger
	defaultTimezone string
	now             func() time.Time
}

// NewAcademyService constructs the academy service.
func NewAcademyService(repo academyRepository, cache *CacheService, files *FileService, validate *validator.Validate, logger *zap.Logger, defaultTimezone string) *AcademyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcademyService{
		repo:            repo,
		cache:           cache,
		files:           files,
		validator:       validate,
		logger:          logger,
		defaultTimezone: defaultTimezone,
		now:             time.Now,
	}
}

func settingsCacheKey(academyID string) string {
	return cache.AcademyKey(academyID, "settings")
}

// Get returns the academy, served from cache when possible.
func (s *AcademyService) Get(ctx context.Context, academyID string) (*models.Academy, error) {
	var cached models.Academy
	if s.cache.Get(ctx, settingsCacheKey(academyID), &cached) {
		return &cached, nil
	}
	academy, err := s.repo.FindByID(ctx, academyID)
	if err != nil {
		s.logger.Error("load academy", zap.String("academy_id", academyID), zap.Error(err))
		return nil, repoError(err, "academia no encontrada", "", "no se pudo cargar la academia")
	}
	s.cache.Set(ctx, settingsCacheKey(academyID), academy, 0)
	return academy, nil
}

// Settings returns the academy with a signed logo link.
func (s *AcademyService) Settings(ctx context.Context, academyID string) (*AcademySettings, error) {
	academy, err := s.Get(ctx, academyID)
	if err != nil {
		return nil, err
	}
	settings := &AcademySettings{Academy: *academy}
	if academy.LogoPath != nil && s.files != nil {
		settings.LogoURL = s.files.SignedURL(*academy.LogoPath)
	}
	return settings, nil
}

// BySlug resolves an academy for the public flows.
func (s *AcademyService) BySlug(ctx context.Context, slug string) (*models.Academy, error) {
	academy, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, repoError(err, "academia no encontrada", "", "no se pudo cargar la academia")
	}
	return academy, nil
}

// Today is the academy-local calendar date.
func (s *AcademyService) Today(ctx context.Context, academyID string) (time.Time, error) {
	academy, err := s.Get(ctx, academyID)
	if err != nil {
		return time.Time{}, err
	}
	return academy.Today(s.now(), s.defaultTimezone), nil
}

// Update edits name, registration fee and timezone. Existing enrollments keep their snapshot.
func (s *AcademyService) Update(ctx context.Context, academyID string, req UpdateAcademyRequest) (*AcademySettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err)
	}
	if req.RegistrationPrice.IsNegative() {
		return nil, invalidField("registration_price", "no puede ser negativo")
	}
	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			return nil, invalidField("timezone", "zona horaria desconocida")
		}
	}
	academy, err := s.repo.FindByID(ctx, academyID)
	if err != nil {
		return nil, repoError(err, "academia no encontrada", "", "no se pudo cargar la academia")
	}
	academy.Name = req.Name
	academy.RegistrationPrice = req.RegistrationPrice
	if req.Timezone != "" {
		academy.Timezone = req.Timezone
	}
	if err := s.repo.Update(ctx, academy); err != nil {
		s.logger.Error("update academy", zap.String("academy_id", academyID), zap.Error(err))
		return nil, repoError(err, "academia no encontrada", "el identificador ya está en uso", "no se pudo actualizar la academia")
	}
	s.cache.Invalidate(ctx, settingsCacheKey(academyID))
	return s.Settings(ctx, academyID)
}

// UploadLogo replaces the academy logo with a resized copy of data.
func (s *AcademyService) UploadLogo(ctx context.Context, academyID string, data []byte) (*AcademySettings, error) {
	if _, err := s.files.CheckUpload(data); err != nil {
		return nil, err
	}
	academy, err := s.repo.FindByID(ctx, academyID)
	if err != nil {
		return nil, repoError(err, "academia no encontrada", "", "no se pudo cargar la academia")
	}
	resized, mime, err := storage.FitImage(data, logoMaxSide)
	if err != nil {
		return nil, invalidField("file", "la imagen no se pudo procesar")
	}
	key := fmt.Sprintf("logos/%s/%s%s", academyID, uuid.NewString(), extensionFor(mime))
	if _, err := s.files.Store(key, resized); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateLogo(ctx, academyID, &key); err != nil {
		s.files.Remove(key)
		return nil, repoError(err, "academia no encontrada", "", "no se pudo guardar el logo")
	}
	if academy.LogoPath != nil {
		s.files.Remove(*academy.LogoPath)
	}
	s.cache.Invalidate(ctx, settingsCacheKey(academyID))
	s.logger.Info("academy logo replaced", zap.String("academy_id", academyID), zap.String("key", key))
	return s.Settings(ctx, academyID)
}

// Logo returns the stored logo bytes, or nil when the academy has none.
func (s *AcademyService) Logo(academy *models.Academy) []byte {
	if academy == nil || academy.LogoPath == nil || s.files == nil {
		return nil
	}
	data, err := s.files.Read(*academy.LogoPath)
	if err != nil {
		s.logger.Warn("read academy logo", zap.String("academy_id", academy.ID), zap.Error(err))
		return nil
	}
	return data
}

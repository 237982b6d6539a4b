package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-api/internal/models"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
	"github.com/noah-isme/academy-api/pkg/storage"
)

type jsonCacheRepo struct {
	entries map[string][]byte
	gets    int
}

func (c *jsonCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	c.gets++
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *jsonCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *jsonCacheRepo) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

type academyRepoStub struct {
	academy *models.Academy
	finds   int
}

func (r *academyRepoStub) FindByID(ctx context.Context, id string) (*models.Academy, error) {
	r.finds++
	if r.academy == nil || r.academy.ID != id {
		return nil, sql.ErrNoRows
	}
	cp := *r.academy
	return &cp, nil
}

func (r *academyRepoStub) FindBySlug(ctx context.Context, slug string) (*models.Academy, error) {
	if r.academy == nil || r.academy.Slug != slug {
		return nil, sql.ErrNoRows
	}
	cp := *r.academy
	return &cp, nil
}

func (r *academyRepoStub) Update(ctx context.Context, academy *models.Academy) error {
	cp := *academy
	r.academy = &cp
	return nil
}

func (r *academyRepoStub) UpdateLogo(ctx context.Context, id string, path *string) error {
	r.academy.LogoPath = path
	return nil
}

func newAcademyFixture() (*academyRepoStub, *jsonCacheRepo, *memoryObjects, *AcademyService) {
	repo := &academyRepoStub{academy: &models.Academy{ID: testAcademy, Name: "Academia Sol", Slug: "sol", RegistrationPrice: dec("30.00"), Timezone: "America/Lima"}}
	cacheRepo := &jsonCacheRepo{entries: map[string][]byte{}}
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	objects := newMemoryObjects()
	files := NewFileService(objects, storage.NewSignedURLSigner("secret", time.Hour), FileServiceConfig{}, nil)
	svc := NewAcademyService(repo, cache, files, nil, nil, "America/Lima")
	return repo, cacheRepo, objects, svc
}

func TestAcademySettingsAreCached(t *testing.T) {
	repo, _, _, svc := newAcademyFixture()
	ctx := context.Background()

	first, err := svc.Get(ctx, testAcademy)
	require.NoError(t, err)
	second, err := svc.Get(ctx, testAcademy)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.finds)
	assert.True(t, first.RegistrationPrice.Equal(second.RegistrationPrice))
}

func TestAcademyUpdateInvalidatesCache(t *testing.T) {
	_, cacheRepo, _, svc := newAcademyFixture()
	ctx := context.Background()
	_, err := svc.Get(ctx, testAcademy)
	require.NoError(t, err)
	require.Contains(t, cacheRepo.entries, settingsCacheKey(testAcademy))

	settings, err := svc.Update(ctx, testAcademy, UpdateAcademyRequest{Name: "Academia Sol Naciente", RegistrationPrice: dec("45.00")})
	require.NoError(t, err)
	assert.Equal(t, "Academia Sol Naciente", settings.Name)

	fresh, err := svc.Get(ctx, testAcademy)
	require.NoError(t, err)
	assert.True(t, dec("45.00").Equal(fresh.RegistrationPrice))
}

func TestAcademyUpdateValidation(t *testing.T) {
	_, _, _, svc := newAcademyFixture()
	ctx := context.Background()

	_, err := svc.Update(ctx, testAcademy, UpdateAcademyRequest{Name: "Sol", RegistrationPrice: dec("-1")})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Update(ctx, testAcademy, UpdateAcademyRequest{Name: "Sol", Timezone: "Mars/Olympus"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestUploadLogoResizesAndReplaces(t *testing.T) {
	repo, _, objects, svc := newAcademyFixture()
	ctx := context.Background()

	settings, err := svc.UploadLogo(ctx, testAcademy, pngFixture(t, 1024, 600))
	require.NoError(t, err)
	require.NotNil(t, repo.academy.LogoPath)
	firstKey := *repo.academy.LogoPath
	assert.NotEmpty(t, settings.LogoURL)

	logo := svc.Logo(repo.academy)
	require.NotEmpty(t, logo)
	assert.Equal(t, "image/png", storage.DetectMIME(logo))

	_, err = svc.UploadLogo(ctx, testAcademy, pngFixture(t, 64, 64))
	require.NoError(t, err)
	assert.False(t, objects.has(firstKey))
	assert.True(t, objects.has(*repo.academy.LogoPath))
}

func TestAcademyTodayUsesTimezone(t *testing.T) {
	_, _, _, svc := newAcademyFixture()
	// 03:00 UTC is still the previous day in Lima (UTC-5)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC) }

	today, err := svc.Today(context.Background(), testAcademy)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), today)
}

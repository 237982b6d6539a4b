package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil)
	var dest map[string]string
	assert.ErrorIs(t, repo.Get(context.Background(), "academy:a:settings", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "academy:a:settings", map[string]string{"a": "b"}, time.Minute))
	assert.NoError(t, repo.Delete(context.Background(), "academy:a:settings"))
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedError(t *testing.T) {
	err := fmt.Errorf("context: %w", Clone(ErrNotFound, "inscripción no encontrada"))
	appErr := FromError(err)
	assert.Equal(t, ErrNotFound.Code, appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "inscripción no encontrada", appErr.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
}

func TestClonedErrorMatchesSentinel(t *testing.T) {
	err := Clone(ErrConstraint, "el DNI ya está registrado")
	assert.True(t, errors.Is(err, ErrConstraint))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestBackendWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Backend(cause, "")
	assert.Equal(t, ErrBackend.Code, err.Code)
	assert.ErrorIs(t, err, cause)
}

func TestValidationCarriesDetails(t *testing.T) {
	err := Validation(errors.New("bad input"), map[string]string{"dni": "es obligatorio"})
	assert.Equal(t, ErrValidation.Code, err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "es obligatorio", err.Details["dni"])
}

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-api/internal/forms"
	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/service"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

type publicServiceStub struct {
	submission map[string]interface{}
}

func (s *publicServiceStub) Form(ctx context.Context, slug, formID string) (*models.Academy, *forms.Form, error) {
	if formID != forms.VolunteerFormID {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "formulario no encontrado")
	}
	form := forms.VolunteerRegistration()
	return &models.Academy{Name: "Academia Sol", Slug: slug}, &form, nil
}

func (s *publicServiceStub) RegisterStudent(ctx context.Context, slug string, submission map[string]interface{}) (*service.SelfEnrollment, error) {
	s.submission = submission
	return &service.SelfEnrollment{
		Student:    &models.Student{ID: "stu-1", DNI: "12345678"},
		Enrollment: &models.EnrollmentDetail{Enrollment: models.Enrollment{ID: "enr-1"}},
	}, nil
}

func (s *publicServiceStub) RegisterVolunteer(ctx context.Context, slug string, submission map[string]interface{}) (*models.Volunteer, error) {
	return nil, appErrors.Validation(nil, map[string]string{forms.FieldDNI: "debe tener 8 dígitos"})
}

type badgeServiceStub struct{}

func (badgeServiceStub) EnrollmentBadge(ctx context.Context, id string) (*service.Document, error) {
	return &service.Document{Filename: "inscripcion-" + id + ".pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3")}, nil
}

func (badgeServiceStub) VolunteerBadge(ctx context.Context, id string) (*service.Document, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "voluntario no encontrado")
}

func newPublicRouter(enabled bool) (*publicServiceStub, http.Handler) {
	stub := &publicServiceStub{}
	return stub, newTestRouter(Handlers{Public: NewPublicHandler(stub, badgeServiceStub{})}, enabled)
}

func TestPublicFormWithoutToken(t *testing.T) {
	_, r := newPublicRouter(true)

	w := doJSON(r, http.MethodGet, "/public/academies/sol/forms/volunteer", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"name":"Academia Sol"`)
	assert.Contains(t, body, `"kind":"select"`)

	w = doJSON(r, http.MethodGet, "/public/academies/sol/forms/payroll", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicStudentRegistration(t *testing.T) {
	stub, r := newPublicRouter(true)

	w := doJSON(r, http.MethodPost, "/public/academies/sol/students", "", map[string]interface{}{
		"dni":       "12345678",
		"full_name": "Ana Quispe",
		"course_id": "course-1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Ana Quispe", stub.submission["full_name"])
	assert.Contains(t, w.Body.String(), `"enr-1"`)
}

func TestPublicVolunteerValidationDetails(t *testing.T) {
	_, r := newPublicRouter(true)

	w := doJSON(r, http.MethodPost, "/public/academies/sol/volunteers", "", map[string]interface{}{"dni": "1"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "debe tener 8 dígitos", decode(t, w).Error.Details["dni"])
}

func TestPublicFlowsCanBeDisabled(t *testing.T) {
	_, r := newPublicRouter(false)

	w := doJSON(r, http.MethodGet, "/public/academies/sol/forms/volunteer", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBadgeIsServedInline(t *testing.T) {
	_, r := newPublicRouter(true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, testPrefix+"/public/badges/enrollments/enr-1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="inscripcion-enr-1.pdf"`, w.Header().Get("Content-Disposition"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, testPrefix+"/public/badges/volunteers/ghost", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type fileResolverStub map[string][]byte

func (s fileResolverStub) Resolve(token string) ([]byte, string, error) {
	data, ok := s[token]
	if !ok {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "el enlace no es válido o expiró")
	}
	return data, "image/png", nil
}

func TestFileServe(t *testing.T) {
	r := newTestRouter(Handlers{Files: NewFileHandler(fileResolverStub{"good": []byte("png")})}, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, testPrefix+"/files/good", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "png", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, testPrefix+"/files/forged", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

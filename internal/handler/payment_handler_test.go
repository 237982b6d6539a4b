package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/service"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

type paymentServiceStub struct {
	academyID string
	recorder  string
	added     service.AddPaymentRequest
	receipt   []byte
	err       error
}

func (s *paymentServiceStub) AddPayment(ctx context.Context, academyID, enrollmentID, recorder string, req service.AddPaymentRequest) (*models.Ledger, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.academyID, s.recorder, s.added = academyID, recorder, req
	return &models.Ledger{
		EnrollmentID: enrollmentID,
		PriceCharged: decimal.RequireFromString("180"),
		TotalPaid:    req.Amount,
		Balance:      decimal.RequireFromString("180").Sub(req.Amount),
		Payments:     []models.Payment{{ID: "pay-1", Amount: req.Amount, Method: req.Method}},
	}, nil
}

func (s *paymentServiceStub) UpdatePayment(ctx context.Context, academyID, enrollmentID, paymentID string, req service.UpdatePaymentRequest) (*models.Ledger, error) {
	return &models.Ledger{EnrollmentID: enrollmentID, Payments: []models.Payment{}}, nil
}

func (s *paymentServiceStub) RemovePayment(ctx context.Context, academyID, enrollmentID, paymentID string) (*models.Ledger, error) {
	return &models.Ledger{EnrollmentID: enrollmentID, Payments: []models.Payment{}}, nil
}

func (s *paymentServiceStub) Ledger(ctx context.Context, academyID, enrollmentID string) (*models.Ledger, error) {
	if enrollmentID == "ghost" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "inscripción no encontrada")
	}
	return &models.Ledger{EnrollmentID: enrollmentID, Payments: []models.Payment{}}, nil
}

func (s *paymentServiceStub) AttachReceipt(ctx context.Context, academyID, enrollmentID, paymentID string, data []byte) (*models.Payment, error) {
	s.receipt = data
	return &models.Payment{ID: paymentID, EnrollmentID: enrollmentID}, nil
}

func TestAddPaymentUsesTokenTenantAndRecorder(t *testing.T) {
	stub := &paymentServiceStub{}
	r := newTestRouter(Handlers{Payments: NewPaymentHandler(stub, 1024)}, true)

	w := doJSON(r, http.MethodPost, "/enrollments/enr-1/payments", "staff-token", map[string]interface{}{
		"amount": "150.00",
		"method": "yape",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "acad-1", stub.academyID)
	assert.Equal(t, "user-staff", stub.recorder)
	assert.True(t, stub.added.Amount.Equal(decimal.RequireFromString("150")))
	assert.Contains(t, w.Body.String(), `"balance":"30"`)
}

func TestPaymentRoutesRequireToken(t *testing.T) {
	r := newTestRouter(Handlers{Payments: NewPaymentHandler(&paymentServiceStub{}, 1024)}, true)

	w := doJSON(r, http.MethodGet, "/enrollments/enr-1/payments", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLedgerNotFound(t *testing.T) {
	r := newTestRouter(Handlers{Payments: NewPaymentHandler(&paymentServiceStub{}, 1024)}, true)

	w := doJSON(r, http.MethodGet, "/enrollments/ghost/payments", "staff-token", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	env := decode(t, w)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
	assert.Equal(t, "inscripción no encontrada", env.Error.Message)
}

func TestAddPaymentValidationDetails(t *testing.T) {
	stub := &paymentServiceStub{err: appErrors.Validation(nil, map[string]string{"amount": "debe ser mayor que cero"})}
	r := newTestRouter(Handlers{Payments: NewPaymentHandler(stub, 1024)}, true)

	w := doJSON(r, http.MethodPost, "/enrollments/enr-1/payments", "staff-token", map[string]interface{}{"amount": "0", "method": "cash"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Equal(t, "debe ser mayor que cero", env.Error.Details["amount"])
}

func TestMalformedBodyIsValidationError(t *testing.T) {
	r := newTestRouter(Handlers{Payments: NewPaymentHandler(&paymentServiceStub{}, 1024)}, true)

	w := doJSON(r, http.MethodPost, "/enrollments/enr-1/payments", "staff-token", "not-an-object")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, w).Error.Code)
}

func TestReceiptUpload(t *testing.T) {
	stub := &paymentServiceStub{}
	r := newTestRouter(Handlers{Payments: NewPaymentHandler(stub, 1024)}, true)

	w := doUpload(r, "/enrollments/enr-1/payments/pay-1/receipt", "staff-token", []byte("image-bytes"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []byte("image-bytes"), stub.receipt)
}

func TestReceiptUploadTooLarge(t *testing.T) {
	stub := &paymentServiceStub{}
	r := newTestRouter(Handlers{Payments: NewPaymentHandler(stub, 16)}, true)

	w := doUpload(r, "/enrollments/enr-1/payments/pay-1/receipt", "staff-token", make([]byte, 64))
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Nil(t, stub.receipt)
}

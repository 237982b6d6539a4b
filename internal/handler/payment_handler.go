package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/service"
	"github.com/noah-isme/academy-api/pkg/response"
)

type paymentService interface {
	AddPayment(ctx context.Context, academyID, enrollmentID, recorder string, req service.AddPaymentRequest) (*models.Ledger, error)
	UpdatePayment(ctx context.Context, academyID, enrollmentID, paymentID string, req service.UpdatePaymentRequest) (*models.Ledger, error)
	RemovePayment(ctx context.Context, academyID, enrollmentID, paymentID string) (*models.Ledger, error)
	Ledger(ctx context.Context, academyID, enrollmentID string) (*models.Ledger, error)
	AttachReceipt(ctx context.Context, academyID, enrollmentID, paymentID string, data []byte) (*models.Payment, error)
}

// PaymentHandler exposes the payment ledger of an enrollment.
type PaymentHandler struct {
	payments  paymentService
	maxUpload int64
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments paymentService, maxUpload int64) *PaymentHandler {
	return &PaymentHandler{payments: payments, maxUpload: maxUpload}
}

// Ledger godoc
// @Summary Payments and balance of an enrollment
// @Tags Payments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/payments [get]
func (h *PaymentHandler) Ledger(c *gin.Context) {
	ledger, err := h.payments.Ledger(c.Request.Context(), academyID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ledger, nil)
}

// Add godoc
// @Summary Record a payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body service.AddPaymentRequest true "Payment"
// @Success 201 {object} response.Envelope
// @Router /enrollments/{id}/payments [post]
func (h *PaymentHandler) Add(c *gin.Context) {
	var req service.AddPaymentRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	ledger, err := h.payments.AddPayment(c.Request.Context(), academyID(c), c.Param("id"), currentUserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, ledger)
}

// Update godoc
// @Summary Patch a payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param paymentId path string true "Payment ID"
// @Param payload body service.UpdatePaymentRequest true "Patch"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/payments/{paymentId} [put]
func (h *PaymentHandler) Update(c *gin.Context) {
	var req service.UpdatePaymentRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	ledger, err := h.payments.UpdatePayment(c.Request.Context(), academyID(c), c.Param("id"), c.Param("paymentId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ledger, nil)
}

// Remove godoc
// @Summary Remove a payment
// @Description Removing an unknown payment id leaves the ledger unchanged.
// @Tags Payments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param paymentId path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/payments/{paymentId} [delete]
func (h *PaymentHandler) Remove(c *gin.Context) {
	ledger, err := h.payments.RemovePayment(c.Request.Context(), academyID(c), c.Param("id"), c.Param("paymentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ledger, nil)
}

// Receipt godoc
// @Summary Attach a receipt image to a payment
// @Tags Payments
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param paymentId path string true "Payment ID"
// @Param file formData file true "PNG or JPEG image"
// @Success 200 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /enrollments/{id}/payments/{paymentId}/receipt [post]
func (h *PaymentHandler) Receipt(c *gin.Context) {
	data, err := readUpload(c, h.maxUpload)
	if err != nil {
		response.Error(c, err)
		return
	}
	payment, err := h.payments.AttachReceipt(c.Request.Context(), academyID(c), c.Param("id"), c.Param("paymentId"), data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}

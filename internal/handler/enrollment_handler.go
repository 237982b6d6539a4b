package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/service"
	"github.com/noah-isme/academy-api/pkg/response"
)

type enrollmentService interface {
	Quote(ctx context.Context, academyID string, req service.QuoteRequest) (*models.EnrollmentQuote, error)
	Enroll(ctx context.Context, academyID, recorder string, req service.EnrollRequest) (*models.EnrollmentDetail, error)
	Get(ctx context.Context, academyID, id string) (*models.EnrollmentDetail, error)
	List(ctx context.Context, academyID string, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error)
	Cancel(ctx context.Context, academyID, id string) (*models.EnrollmentDetail, error)
	Reactivate(ctx context.Context, academyID, id string) (*models.EnrollmentDetail, error)
	UpdateTargets(ctx context.Context, academyID, id string, req service.UpdateTargetsRequest) (*models.EnrollmentDetail, error)
}

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments enrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// List godoc
// @Summary List enrollments
// @Tags Enrollments
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param courseId query string false "Filter by course"
// @Param active query bool false "Filter by active state"
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	filter := models.EnrollmentFilter{
		StudentID: c.Query("studentId"),
		CourseID:  c.Query("courseId"),
		Active:    boolQuery(c, "active"),
	}
	filter.Page, filter.PageSize = pageQuery(c)
	items, pagination, err := h.enrollments.List(c.Request.Context(), academyID(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Quote godoc
// @Summary Preview the price snapshot of an enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.QuoteRequest true "Quote payload"
// @Success 200 {object} response.Envelope
// @Router /enrollments/quote [post]
func (h *EnrollmentHandler) Quote(c *gin.Context) {
	var req service.QuoteRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	quote, err := h.enrollments.Quote(c.Request.Context(), academyID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, quote, nil)
}

// Create godoc
// @Summary Enroll a student in a course
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req service.EnrollRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	enrollment, err := h.enrollments.Enroll(c.Request.Context(), academyID(c), currentUserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Get godoc
// @Summary Get enrollment with balance
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id} [get]
func (h *EnrollmentHandler) Get(c *gin.Context) {
	enrollment, err := h.enrollments.Get(c.Request.Context(), academyID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// UpdateTargets godoc
// @Summary Override the class target
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body service.UpdateTargetsRequest true "Targets"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/targets [put]
func (h *EnrollmentHandler) UpdateTargets(c *gin.Context) {
	var req service.UpdateTargetsRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	enrollment, err := h.enrollments.UpdateTargets(c.Request.Context(), academyID(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Cancel godoc
// @Summary Cancel enrollment
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/cancel [post]
func (h *EnrollmentHandler) Cancel(c *gin.Context) {
	enrollment, err := h.enrollments.Cancel(c.Request.Context(), academyID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Reactivate godoc
// @Summary Reactivate enrollment
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/reactivate [post]
func (h *EnrollmentHandler) Reactivate(c *gin.Context) {
	enrollment, err := h.enrollments.Reactivate(c.Request.Context(), academyID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-api/internal/forms"
	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/service"
	"github.com/noah-isme/academy-api/pkg/response"
)

type publicService interface {
	Form(ctx context.Context, slug, formID string) (*models.Academy, *forms.Form, error)
	RegisterStudent(ctx context.Context, slug string, submission map[string]interface{}) (*service.SelfEnrollment, error)
	RegisterVolunteer(ctx context.Context, slug string, submission map[string]interface{}) (*models.Volunteer, error)
}

type badgeService interface {
	EnrollmentBadge(ctx context.Context, id string) (*service.Document, error)
	VolunteerBadge(ctx context.Context, id string) (*service.Document, error)
}

// PublicHandler serves the self-service forms and printable badges.
type PublicHandler struct {
	public publicService
	badges badgeService
}

// NewPublicHandler constructs PublicHandler.
func NewPublicHandler(public publicService, badges badgeService) *PublicHandler {
	return &PublicHandler{public: public, badges: badges}
}

// Form godoc
// @Summary Public form definition
// @Tags Public
// @Produce json
// @Param slug path string true "Academy slug"
// @Param form path string true "student|volunteer"
// @Success 200 {object} response.Envelope
// @Router /public/academies/{slug}/forms/{form} [get]
func (h *PublicHandler) Form(c *gin.Context) {
	academy, form, err := h.public.Form(c.Request.Context(), c.Param("slug"), c.Param("form"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"academy": gin.H{"name": academy.Name, "slug": academy.Slug, "registration_price": academy.RegistrationPrice},
		"form":    form,
	}, nil)
}

// RegisterStudent godoc
// @Summary Self-enroll a student
// @Tags Public
// @Accept json
// @Produce json
// @Param slug path string true "Academy slug"
// @Param payload body map[string]interface{} true "Form submission"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /public/academies/{slug}/students [post]
func (h *PublicHandler) RegisterStudent(c *gin.Context) {
	var submission map[string]interface{}
	if err := bindJSON(c, &submission); err != nil {
		response.Error(c, err)
		return
	}
	res, err := h.public.RegisterStudent(c.Request.Context(), c.Param("slug"), submission)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// RegisterVolunteer godoc
// @Summary Register a volunteer
// @Tags Public
// @Accept json
// @Produce json
// @Param slug path string true "Academy slug"
// @Param payload body map[string]interface{} true "Form submission"
// @Success 201 {object} response.Envelope
// @Router /public/academies/{slug}/volunteers [post]
func (h *PublicHandler) RegisterVolunteer(c *gin.Context) {
	var submission map[string]interface{}
	if err := bindJSON(c, &submission); err != nil {
		response.Error(c, err)
		return
	}
	volunteer, err := h.public.RegisterVolunteer(c.Request.Context(), c.Param("slug"), submission)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, volunteer)
}

// EnrollmentBadge godoc
// @Summary Printable enrollment ticket
// @Tags Public
// @Produce application/pdf
// @Param id path string true "Enrollment ID"
// @Success 200 {file} file
// @Router /public/badges/enrollments/{id} [get]
func (h *PublicHandler) EnrollmentBadge(c *gin.Context) {
	doc, err := h.badges.EnrollmentBadge(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, doc.Filename, doc.ContentType, doc.Data, true)
}

// VolunteerBadge godoc
// @Summary Printable volunteer credential
// @Tags Public
// @Produce application/pdf
// @Param id path string true "Volunteer ID"
// @Success 200 {file} file
// @Router /public/badges/volunteers/{id} [get]
func (h *PublicHandler) VolunteerBadge(c *gin.Context) {
	doc, err := h.badges.VolunteerBadge(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, doc.Filename, doc.ContentType, doc.Data, true)
}

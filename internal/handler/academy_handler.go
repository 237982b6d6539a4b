package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-api/internal/service"
	"github.com/noah-isme/academy-api/pkg/response"
)

type academyService interface {
	Settings(ctx context.Context, academyID string) (*service.AcademySettings, error)
	Update(ctx context.Context, academyID string, req service.UpdateAcademyRequest) (*service.AcademySettings, error)
	UploadLogo(ctx context.Context, academyID string, data []byte) (*service.AcademySettings, error)
}

// AcademyHandler exposes the settings of the caller's academy.
type AcademyHandler struct {
	academies academyService
	maxUpload int64
}

// NewAcademyHandler constructs AcademyHandler.
func NewAcademyHandler(academies academyService, maxUpload int64) *AcademyHandler {
	return &AcademyHandler{academies: academies, maxUpload: maxUpload}
}

// Get godoc
// @Summary Academy settings
// @Tags Academy
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /academy [get]
func (h *AcademyHandler) Get(c *gin.Context) {
	settings, err := h.academies.Settings(c.Request.Context(), academyID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// Update godoc
// @Summary Update academy settings
// @Tags Academy
// @Accept json
// @Produce json
// @Param payload body service.UpdateAcademyRequest true "Settings"
// @Success 200 {object} response.Envelope
// @Router /academy [put]
func (h *AcademyHandler) Update(c *gin.Context) {
	var req service.UpdateAcademyRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	settings, err := h.academies.Update(c.Request.Context(), academyID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// UploadLogo godoc
// @Summary Replace academy logo
// @Tags Academy
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PNG or JPEG image"
// @Success 200 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /academy/logo [post]
func (h *AcademyHandler) UploadLogo(c *gin.Context) {
	data, err := readUpload(c, h.maxUpload)
	if err != nil {
		response.Error(c, err)
		return
	}
	settings, err := h.academies.UploadLogo(c.Request.Context(), academyID(c), data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

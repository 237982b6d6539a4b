package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/service"
	"github.com/noah-isme/academy-api/pkg/response"
)

type attendanceService interface {
	SetAttendance(ctx context.Context, academyID, enrollmentID string, req service.SetAttendanceRequest) (*models.AttendanceResult, error)
	History(ctx context.Context, academyID, enrollmentID string) ([]models.Attendance, error)
}

// AttendanceHandler exposes daily attendance of an enrollment.
type AttendanceHandler struct {
	attendance attendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance attendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// Set godoc
// @Summary Mark attendance for a day
// @Description Toggling admin_check moves the class counter by exactly one.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body service.SetAttendanceRequest true "Checks"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/attendance [put]
func (h *AttendanceHandler) Set(c *gin.Context) {
	var req service.SetAttendanceRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	res, err := h.attendance.SetAttendance(c.Request.Context(), academyID(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// History godoc
// @Summary Attendance history of an enrollment
// @Tags Attendance
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/attendance [get]
func (h *AttendanceHandler) History(c *gin.Context) {
	items, err := h.attendance.History(c.Request.Context(), academyID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

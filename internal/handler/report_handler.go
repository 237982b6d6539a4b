package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-api/internal/service"
	"github.com/noah-isme/academy-api/pkg/response"
)

type reportService interface {
	Payments(ctx context.Context, academyID, courseID, format string) (*service.Document, error)
	Attendance(ctx context.Context, academyID, courseID, date, format string) (*service.Document, error)
}

// ReportHandler exposes course reports as CSV or PDF downloads.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Payments godoc
// @Summary Payment report of a course
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param courseId query string true "Course ID"
// @Param format query string false "csv|pdf"
// @Success 200 {file} file
// @Router /reports/payments [get]
func (h *ReportHandler) Payments(c *gin.Context) {
	doc, err := h.reports.Payments(c.Request.Context(), academyID(c), c.Query("courseId"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, doc.Filename, doc.ContentType, doc.Data, false)
}

// Attendance godoc
// @Summary Attendance roster export
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param courseId query string true "Course ID"
// @Param date query string false "Day (YYYY-MM-DD)"
// @Param format query string false "csv|pdf"
// @Success 200 {file} file
// @Router /reports/attendance [get]
func (h *ReportHandler) Attendance(c *gin.Context) {
	doc, err := h.reports.Attendance(c.Request.Context(), academyID(c), c.Query("courseId"), c.Query("date"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, doc.Filename, doc.ContentType, doc.Data, false)
}

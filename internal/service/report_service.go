package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/pkg/export"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

// Report formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type paymentSummarySource interface {
	SummaryByCourse(ctx context.Context, academyID, courseID string) ([]models.PaymentReportRow, error)
}

type rosterSource interface {
	Roster(ctx context.Context, academyID, courseID, date string) ([]models.RosterEntry, time.Time, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ReportService renders payment and attendance reports for a course.
type ReportService struct {
	payments paymentSummarySource
	roster   rosterSource
	courses  courseLookup
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
}

// NewReportService constructs the report service.
func NewReportService(payments paymentSummarySource, roster rosterSource, courses courseLookup, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ReportService{payments: payments, roster: roster, courses: courses, csv: csv, pdf: pdf, logger: logger}
}

// Payments summarises price charged, paid total and balance per active enrollment of a course.
func (s *ReportService) Payments(ctx context.Context, academyID, courseID, format string) (*Document, error) {
	format, err := normaliseFormat(format)
	if err != nil {
		return nil, err
	}
	course, err := s.course(ctx, academyID, courseID)
	if err != nil {
		return nil, err
	}
	rows, err := s.payments.SummaryByCourse(ctx, academyID, courseID)
	if err != nil {
		s.logger.Error("payment summary", zap.String("course_id", courseID), zap.Error(err))
		return nil, appErrors.Backend(err, "no se pudo generar el reporte de pagos")
	}
	data := export.Dataset{Headers: []string{"DNI", "Alumno", "Precio", "Pagado", "Saldo"}}
	for _, r := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"DNI":    r.StudentDNI,
			"Alumno": r.StudentName,
			"Precio": r.PriceCharged.StringFixed(2),
			"Pagado": r.TotalPaid.StringFixed(2),
			"Saldo":  r.Balance.StringFixed(2),
		})
	}
	title := "Pagos - " + course.Name
	return s.render(data, title, "pagos-"+slugify(course.Name), format)
}

// Attendance exports the roster of a course for one day.
func (s *ReportService) Attendance(ctx context.Context, academyID, courseID, date, format string) (*Document, error) {
	format, err := normaliseFormat(format)
	if err != nil {
		return nil, err
	}
	course, err := s.course(ctx, academyID, courseID)
	if err != nil {
		return nil, err
	}
	entries, day, err := s.roster.Roster(ctx, academyID, courseID, date)
	if err != nil {
		return nil, err
	}
	data := export.Dataset{Headers: []string{"DNI", "Alumno", "Propia", "Admin", "Clases", "Restantes"}}
	for _, e := range entries {
		data.Rows = append(data.Rows, map[string]string{
			"DNI":       e.StudentDNI,
			"Alumno":    e.StudentName,
			"Propia":    yesNo(e.OwnCheck),
			"Admin":     yesNo(e.AdminCheck),
			"Clases":    fmt.Sprintf("%d/%d", e.ClassCount, e.TotalClasses),
			"Restantes": strconv.Itoa(e.RemainingClasses),
		})
	}
	stamp := day.Format(DateLayout)
	title := fmt.Sprintf("Asistencia - %s - %s", course.Name, stamp)
	return s.render(data, title, "asistencia-"+slugify(course.Name)+"-"+stamp, format)
}

func (s *ReportService) course(ctx context.Context, academyID, courseID string) (*models.CourseDetail, error) {
	if courseID == "" {
		return nil, invalidField("courseId", "es obligatorio")
	}
	course, err := s.courses.FindByID(ctx, academyID, courseID)
	if err != nil {
		return nil, repoError(err, "curso no encontrado", "", "no se pudo cargar el curso")
	}
	return course, nil
}

func (s *ReportService) render(data export.Dataset, title, base, format string) (*Document, error) {
	var (
		out         []byte
		err         error
		contentType string
	)
	switch format {
	case FormatPDF:
		out, err = s.pdf.Render(data, title)
		contentType = "application/pdf"
	default:
		out, err = s.csv.Render(data)
		contentType = "text/csv; charset=utf-8"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo generar el reporte")
	}
	return &Document{Filename: base + "." + format, ContentType: contentType, Data: out}, nil
}

func normaliseFormat(format string) (string, error) {
	switch format {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", invalidField("format", "usa csv o pdf")
	}
}

func yesNo(v bool) string {
	if v {
		return "Sí"
	}
	return "No"
}

func slugify(name string) string {
	out := make([]rune, 0, len(name))
	dash := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
			dash = false
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
			dash = false
		default:
			if !dash && len(out) > 0 {
				out = append(out, '-')
				dash = true
			}
		}
	}
	if dash {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return "curso"
	}
	return string(out)
}

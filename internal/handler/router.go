package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-api/internal/middleware"
	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/academy-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/academy-api/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler mounted by NewRouter.
type Handlers struct {
	Auth        *AuthHandler
	Academy     *AcademyHandler
	Courses     *CourseHandler
	Schedules   *ScheduleHandler
	Teachers    *TeacherHandler
	Students    *StudentHandler
	Enrollments *EnrollmentHandler
	Payments    *PaymentHandler
	Attendance  *AttendanceHandler
	Volunteers  *VolunteerHandler
	Reports     *ReportHandler
	Public      *PublicHandler
	Files       *FileHandler
	Metrics     *MetricsHandler
}

// RouterOptions carries the cross-cutting pieces of the HTTP stack.
type RouterOptions struct {
	APIPrefix      string
	AllowedOrigins []string
	PublicEnabled  bool
	Tokens         middleware.TokenValidator
	Observer       middleware.RequestObserver
	Logger         *zap.Logger
}

// NewRouter builds the gin engine with ops, staff and public routes.
func NewRouter(h Handlers, opts RouterOptions) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))

	r.Use(middleware.Metrics(opts.Observer, "/metrics", opts.APIPrefix+"/volunteers/stream"))
	api := r.Group(opts.APIPrefix)

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	api.POST("/auth/login", h.Auth.Login)
	api.GET("/files/:token", h.Files.Serve)

	public := api.Group("/public", middleware.PublicFlows(opts.PublicEnabled))
	public.GET("/academies/:slug/forms/:form", h.Public.Form)
	public.POST("/academies/:slug/students", h.Public.RegisterStudent)
	public.POST("/academies/:slug/volunteers", h.Public.RegisterVolunteer)
	public.GET("/badges/enrollments/:id", h.Public.EnrollmentBadge)
	public.GET("/badges/volunteers/:id", h.Public.VolunteerBadge)

	staff := api.Group("", middleware.JWT(opts.Tokens), middleware.RequireRoles(models.RoleAdmin, models.RoleStaff))
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	staff.GET("/auth/me", h.Auth.Me)

	staff.GET("/academy", h.Academy.Get)
	staff.PUT("/academy", adminOnly, h.Academy.Update)
	staff.POST("/academy/logo", adminOnly, h.Academy.UploadLogo)

	staff.GET("/courses", h.Courses.List)
	staff.POST("/courses", h.Courses.Create)
	staff.GET("/courses/:id", h.Courses.Get)
	staff.PUT("/courses/:id", h.Courses.Update)
	staff.DELETE("/courses/:id", h.Courses.Delete)
	staff.GET("/courses/:id/roster", h.Courses.Roster)

	staff.GET("/schedules", h.Schedules.List)
	staff.POST("/schedules", h.Schedules.Create)
	staff.GET("/schedules/:id", h.Schedules.Get)
	staff.PUT("/schedules/:id", h.Schedules.Update)
	staff.DELETE("/schedules/:id", h.Schedules.Delete)

	staff.GET("/teachers", h.Teachers.List)
	staff.POST("/teachers", h.Teachers.Create)
	staff.GET("/teachers/:id", h.Teachers.Get)
	staff.PUT("/teachers/:id", h.Teachers.Update)
	staff.DELETE("/teachers/:id", h.Teachers.Delete)

	staff.GET("/students", h.Students.List)
	staff.POST("/students", h.Students.Create)
	staff.GET("/students/:id", h.Students.Get)
	staff.PUT("/students/:id", h.Students.Update)
	staff.DELETE("/students/:id", h.Students.Delete)

	staff.GET("/enrollments", h.Enrollments.List)
	staff.POST("/enrollments", h.Enrollments.Create)
	staff.POST("/enrollments/quote", h.Enrollments.Quote)
	staff.GET("/enrollments/:id", h.Enrollments.Get)
	staff.PUT("/enrollments/:id/targets", h.Enrollments.UpdateTargets)
	staff.POST("/enrollments/:id/cancel", h.Enrollments.Cancel)
	staff.POST("/enrollments/:id/reactivate", h.Enrollments.Reactivate)

	staff.GET("/enrollments/:id/payments", h.Payments.Ledger)
	staff.POST("/enrollments/:id/payments", h.Payments.Add)
	staff.PUT("/enrollments/:id/payments/:paymentId", h.Payments.Update)
	staff.DELETE("/enrollments/:id/payments/:paymentId", h.Payments.Remove)
	staff.POST("/enrollments/:id/payments/:paymentId/receipt", h.Payments.Receipt)

	staff.PUT("/enrollments/:id/attendance", h.Attendance.Set)
	staff.GET("/enrollments/:id/attendance", h.Attendance.History)

	staff.GET("/volunteers", h.Volunteers.List)
	staff.POST("/volunteers", h.Volunteers.Create)
	staff.GET("/volunteers/stream", h.Volunteers.Stream)
	staff.GET("/volunteers/:id", h.Volunteers.Get)
	staff.PUT("/volunteers/:id", h.Volunteers.Update)
	staff.DELETE("/volunteers/:id", h.Volunteers.Delete)

	staff.GET("/reports/payments", adminOnly, h.Reports.Payments)
	staff.GET("/reports/attendance", h.Reports.Attendance)

	return r
}

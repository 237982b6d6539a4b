package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/academy-api/api/swagger"
	"github.com/noah-isme/academy-api/internal/handler"
	"github.com/noah-isme/academy-api/internal/repository"
	"github.com/noah-isme/academy-api/internal/service"
	"github.com/noah-isme/academy-api/pkg/cache"
	"github.com/noah-isme/academy-api/pkg/config"
	"github.com/noah-isme/academy-api/pkg/database"
	"github.com/noah-isme/academy-api/pkg/export"
	"github.com/noah-isme/academy-api/pkg/jobs"
	"github.com/noah-isme/academy-api/pkg/logger"
	"github.com/noah-isme/academy-api/pkg/realtime"
	"github.com/noah-isme/academy-api/pkg/storage"
)

// @title Academy API
// @version 1.0.0
// @description Enrollment, payment and attendance management for small academies.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, continuing without cache and with in-process realtime", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	var hub realtime.Hub = realtime.NewMemoryHub()
	if cfg.Realtime.Enabled && redisClient != nil {
		hub = realtime.NewRedisHub(redisClient, logr)
	}

	store, err := storage.NewLocalStorage(cfg.Storage.Dir)
	if err != nil {
		logr.Fatal("init storage", zap.Error(err))
	}
	files := service.NewFileService(store, storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL), service.FileServiceConfig{
		MaxFileSize:  cfg.Storage.MaxFileSizeBytes,
		AllowedMIMEs: cfg.Storage.AllowedMIMEs,
		URLPrefix:    cfg.APIPrefix,
	}, logr)

	academyRepo := repository.NewAcademyRepository(db)
	userRepo := repository.NewUserRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	volunteerRepo := repository.NewVolunteerRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	academySvc := service.NewAcademyService(academyRepo, cacheSvc, files, validate, logr, cfg.Academy.DefaultTimezone)
	scheduleSvc := service.NewScheduleService(scheduleRepo, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	volunteerSvc := service.NewVolunteerService(volunteerRepo, hub, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, courseRepo, studentRepo, academySvc, metrics, validate, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, enrollmentRepo, files, nil, metrics, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, enrollmentRepo, courseRepo, academySvc, metrics, logr)
	publicSvc := service.NewPublicService(academySvc, courseSvc, studentSvc, enrollmentSvc, volunteerSvc, logr)
	badgeSvc := service.NewBadgeService(enrollmentRepo, volunteerRepo, academySvc, export.NewBadgeRenderer(), logr)
	reportSvc := service.NewReportService(paymentRepo, attendanceSvc, courseRepo, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	thumbnails := jobs.NewQueue(service.JobReceiptThumbnail, paymentSvc.HandleThumbnailJob, jobs.QueueConfig{
		Workers:    cfg.Workers.Concurrency,
		MaxRetries: cfg.Workers.Retries,
		Logger:     logr,
	})
	paymentSvc.SetThumbnailQueue(thumbnails)
	thumbnails.Start(ctx)
	defer thumbnails.Stop()

	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		checks["redis"] = redisPinger(redisClient)
	}

	maxUpload := files.MaxFileSize()
	router := handler.NewRouter(handler.Handlers{
		Auth:        handler.NewAuthHandler(authSvc),
		Academy:     handler.NewAcademyHandler(academySvc, maxUpload),
		Courses:     handler.NewCourseHandler(courseSvc, attendanceSvc),
		Schedules:   handler.NewScheduleHandler(scheduleSvc),
		Teachers:    handler.NewTeacherHandler(teacherSvc),
		Students:    handler.NewStudentHandler(studentSvc),
		Enrollments: handler.NewEnrollmentHandler(enrollmentSvc),
		Payments:    handler.NewPaymentHandler(paymentSvc, maxUpload),
		Attendance:  handler.NewAttendanceHandler(attendanceSvc),
		Volunteers:  handler.NewVolunteerHandler(volunteerSvc, metrics),
		Reports:     handler.NewReportHandler(reportSvc),
		Public:      handler.NewPublicHandler(publicSvc, badgeSvc),
		Files:       handler.NewFileHandler(files),
		Metrics:     handler.NewMetricsHandler(metrics, checks),
	}, handler.RouterOptions{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		PublicEnabled:  cfg.Public.Enabled,
		Tokens:         authSvc,
		Observer:       metrics,
		Logger:         logr,
	})

	if cfg.Env != config.EnvProduction {
		router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown", zap.Error(err))
	}
}

func redisPinger(client *redis.Client) handler.PingFunc {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

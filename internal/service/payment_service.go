package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/pkg/jobs"
	"github.com/noah-isme/academy-api/pkg/storage"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

// JobReceiptThumbnail is the job kind that renders receipt thumbnails.
const JobReceiptThumbnail = "receipt.thumbnail"

const thumbnailSide = 256

type paymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	ListByEnrollment(ctx context.Context, academyID, enrollmentID string) ([]models.Payment, error)
	FindByID(ctx context.Context, academyID, enrollmentID, id string) (*models.Payment, error)
	Update(ctx context.Context, academyID, enrollmentID, id string, patch models.PaymentPatch) (bool, error)
	Delete(ctx context.Context, academyID, enrollmentID, id string) (*models.Payment, error)
	SetReceipt(ctx context.Context, academyID, id, receiptPath string) error
	SetThumbnail(ctx context.Context, academyID, receiptPath, thumbnailPath string) (bool, error)
}

type enrollmentFinder interface {
	FindByID(ctx context.Context, academyID, id string) (*models.EnrollmentDetail, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// AddPaymentRequest records one payment.
type AddPaymentRequest struct {
	Amount decimal.Decimal      `json:"amount"`
	Method models.PaymentMethod `json:"method" validate:"required"`
	Code   *string              `json:"code,omitempty" validate:"omitempty,max=64"`
	PaidAt *time.Time           `json:"paid_at,omitempty"`
}

// UpdatePaymentRequest patches a payment. Absent fields are left as they are; an empty code clears it.
type UpdatePaymentRequest struct {
	Amount *decimal.Decimal      `json:"amount,omitempty"`
	Method *models.PaymentMethod `json:"method,omitempty"`
	Code   *string               `json:"code,omitempty" validate:"omitempty,max=64"`
}

// PaymentService maintains the payment ledger of each enrollment.
type PaymentService struct {
	repo        paymentRepository
	enrollments enrollmentFinder
	files       *FileService
	thumbnails  jobEnqueuer
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewPaymentService constructs the payment service. thumbnails may be nil, in which case receipts keep no thumbnail.
func NewPaymentService(repo paymentRepository, enrollments enrollmentFinder, files *FileService, thumbnails jobEnqueuer, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		repo:        repo,
		enrollments: enrollments,
		files:       files,
		thumbnails:  thumbnails,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		now:         time.Now,
	}
}

// SetThumbnailQueue wires the queue once it exists; the queue handler itself lives on this service.
func (s *PaymentService) SetThumbnailQueue(q jobEnqueuer) {
	s.thumbnails = q
}

// AddPayment appends a payment. Concurrent adds are independent inserts and all persist.
func (s *PaymentService) AddPayment(ctx context.Context, academyID, enrollmentID, recorder string, req AddPaymentRequest) (*models.Ledger, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err)
	}
	if !req.Amount.IsPositive() {
		return nil, invalidField("amount", "debe ser mayor que cero")
	}
	if !req.Method.Valid() {
		return nil, invalidField("method", "método de pago no soportado")
	}
	enrollment, err := s.enrollment(ctx, academyID, enrollmentID)
	if err != nil {
		return nil, err
	}

	paidAt := s.now().UTC()
	if req.PaidAt != nil {
		paidAt = req.PaidAt.UTC()
	}
	payment := &models.Payment{
		AcademyID:    academyID,
		EnrollmentID: enrollment.ID,
		Amount:       req.Amount,
		Method:       req.Method,
		Code:         req.Code,
		RecordedBy:   recorder,
		PaidAt:       paidAt,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		s.logger.Error("create payment", zap.String("enrollment_id", enrollmentID), zap.Error(err))
		return nil, repoError(err, "inscripción no encontrada", "la inscripción ya no existe", "no se pudo registrar el pago")
	}
	s.metrics.PaymentRecorded(string(req.Method))
	s.logger.Info("payment recorded",
		zap.String("academy_id", academyID),
		zap.String("enrollment_id", enrollmentID),
		zap.String("payment_id", payment.ID),
		zap.String("amount", payment.Amount.StringFixed(2)))
	return s.ledgerFor(ctx, academyID, enrollment)
}

// UpdatePayment patches one payment. An unknown payment id leaves the ledger unchanged.
func (s *PaymentService) UpdatePayment(ctx context.Context, academyID, enrollmentID, paymentID string, req UpdatePaymentRequest) (*models.Ledger, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err)
	}
	if req.Amount != nil && !req.Amount.IsPositive() {
		return nil, invalidField("amount", "debe ser mayor que cero")
	}
	if req.Method != nil && !req.Method.Valid() {
		return nil, invalidField("method", "método de pago no soportado")
	}
	enrollment, err := s.enrollment(ctx, academyID, enrollmentID)
	if err != nil {
		return nil, err
	}
	var code *string
	if req.Code != nil {
		trimmed := strings.TrimSpace(*req.Code)
		code = &trimmed
	}
	updated, err := s.repo.Update(ctx, academyID, enrollmentID, paymentID, models.PaymentPatch{
		Amount: req.Amount,
		Method: req.Method,
		Code:   code,
	})
	if err != nil {
		s.logger.Error("update payment", zap.String("payment_id", paymentID), zap.Error(err))
		return nil, appErrors.Backend(err, "no se pudo actualizar el pago")
	}
	if !updated {
		s.logger.Debug("payment update matched nothing", zap.String("enrollment_id", enrollmentID), zap.String("payment_id", paymentID))
	}
	return s.ledgerFor(ctx, academyID, enrollment)
}

// RemovePayment deletes one payment and its stored receipt. An unknown id is a no-op.
func (s *PaymentService) RemovePayment(ctx context.Context, academyID, enrollmentID, paymentID string) (*models.Ledger, error) {
	enrollment, err := s.enrollment(ctx, academyID, enrollmentID)
	if err != nil {
		return nil, err
	}
	removed, err := s.repo.Delete(ctx, academyID, enrollmentID, paymentID)
	if err != nil {
		s.logger.Error("delete payment", zap.String("payment_id", paymentID), zap.Error(err))
		return nil, appErrors.Backend(err, "no se pudo eliminar el pago")
	}
	if removed != nil {
		s.removeReceiptFiles(removed)
		s.logger.Info("payment removed", zap.String("enrollment_id", enrollmentID), zap.String("payment_id", paymentID))
	}
	return s.ledgerFor(ctx, academyID, enrollment)
}

// Ledger returns the payments of an enrollment with paid total and balance.
func (s *PaymentService) Ledger(ctx context.Context, academyID, enrollmentID string) (*models.Ledger, error) {
	enrollment, err := s.enrollment(ctx, academyID, enrollmentID)
	if err != nil {
		return nil, err
	}
	return s.ledgerFor(ctx, academyID, enrollment)
}

// AttachReceipt stores a receipt image for a payment and schedules its thumbnail.
func (s *PaymentService) AttachReceipt(ctx context.Context, academyID, enrollmentID, paymentID string, data []byte) (*models.Payment, error) {
	mime, err := s.files.CheckUpload(data)
	if err != nil {
		return nil, err
	}
	payment, err := s.repo.FindByID(ctx, academyID, enrollmentID, paymentID)
	if err != nil {
		return nil, repoError(err, "pago no encontrado", "", "no se pudo cargar el pago")
	}
	key := fmt.Sprintf("receipts/%s/%s/%s%s", academyID, enrollmentID, uuid.NewString(), extensionFor(mime))
	if _, err := s.files.Store(key, data); err != nil {
		return nil, err
	}
	if err := s.repo.SetReceipt(ctx, academyID, paymentID, key); err != nil {
		s.files.Remove(key)
		return nil, repoError(err, "pago no encontrado", "", "no se pudo guardar el comprobante")
	}
	s.removeReceiptFiles(payment)

	payment.ReceiptPath = &key
	payment.ThumbnailPath = nil
	s.enqueueThumbnail(academyID, key)
	s.decorate(payment)
	return payment, nil
}

// HandleThumbnailJob renders the thumbnail of a stored receipt.
func (s *PaymentService) HandleThumbnailJob(ctx context.Context, job jobs.Job) (err error) {
	defer func() { s.metrics.JobProcessed(job.Kind, err) }()

	data, err := s.files.Read(job.Key)
	if err != nil {
		return err
	}
	thumb, mime, err := storage.Thumbnail(data, thumbnailSide)
	if err != nil {
		return fmt.Errorf("render thumbnail: %w", err)
	}
	thumbKey := thumbnailKey(job.Key, mime)
	if _, err = s.files.Store(thumbKey, thumb); err != nil {
		return err
	}
	linked, err := s.repo.SetThumbnail(ctx, job.AcademyID, job.Key, thumbKey)
	if err != nil {
		s.files.Remove(thumbKey)
		return fmt.Errorf("link thumbnail: %w", err)
	}
	if !linked {
		// receipt was replaced or the payment removed while the job was queued
		s.files.Remove(thumbKey)
	}
	return nil
}

func (s *PaymentService) enqueueThumbnail(academyID, key string) {
	if s.thumbnails == nil {
		return
	}
	err := s.thumbnails.Enqueue(jobs.Job{Kind: JobReceiptThumbnail, AcademyID: academyID, Key: key})
	if err != nil {
		s.logger.Warn("enqueue receipt thumbnail", zap.String("key", key), zap.Error(err))
	}
}

func (s *PaymentService) enrollment(ctx context.Context, academyID, enrollmentID string) (*models.EnrollmentDetail, error) {
	enrollment, err := s.enrollments.FindByID(ctx, academyID, enrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "inscripción no encontrada")
		}
		s.logger.Error("load enrollment", zap.String("enrollment_id", enrollmentID), zap.Error(err))
		return nil, appErrors.Backend(err, "no se pudo cargar la inscripción")
	}
	return enrollment, nil
}

func (s *PaymentService) ledgerFor(ctx context.Context, academyID string, enrollment *models.EnrollmentDetail) (*models.Ledger, error) {
	payments, err := s.repo.ListByEnrollment(ctx, academyID, enrollment.ID)
	if err != nil {
		s.logger.Error("list payments", zap.String("enrollment_id", enrollment.ID), zap.Error(err))
		return nil, appErrors.Backend(err, "no se pudieron cargar los pagos")
	}
	for i := range payments {
		s.decorate(&payments[i])
	}
	ledger := BuildLedger(enrollment.ID, enrollment.PriceCharged, payments)
	return &ledger, nil
}

func (s *PaymentService) decorate(p *models.Payment) {
	if s.files == nil {
		return
	}
	if p.ReceiptPath != nil {
		p.ReceiptURL = s.files.SignedURL(*p.ReceiptPath)
	}
	if p.ThumbnailPath != nil {
		p.ThumbnailURL = s.files.SignedURL(*p.ThumbnailPath)
	}
}

func (s *PaymentService) removeReceiptFiles(p *models.Payment) {
	if s.files == nil || p == nil {
		return
	}
	if p.ReceiptPath != nil {
		s.files.Remove(*p.ReceiptPath)
	}
	if p.ThumbnailPath != nil {
		s.files.Remove(*p.ThumbnailPath)
	}
}

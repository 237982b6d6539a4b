package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-api/internal/models"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
	"github.com/noah-isme/academy-api/pkg/jobs"
	"github.com/noah-isme/academy-api/pkg/storage"
)

type paymentFixture struct {
	store   *fakeStore
	objects *memoryObjects
	queue   *recordingQueue
	svc     *PaymentService
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	store := newFakeStore()
	store.enrollments["enr-1"] = &models.Enrollment{ID: "enr-1", AcademyID: testAcademy, PriceCharged: dec("180.00"), IsActive: true}
	objects := newMemoryObjects()
	files := NewFileService(objects, storage.NewSignedURLSigner("secret", time.Hour), FileServiceConfig{URLPrefix: "/api/v1"}, nil)
	queue := &recordingQueue{}
	svc := NewPaymentService(fakePayments{store}, store, files, queue, nil, nil, nil)
	return &paymentFixture{store: store, objects: objects, queue: queue, svc: svc}
}

func addPayment(t *testing.T, svc *PaymentService, amount string, method models.PaymentMethod) *models.Ledger {
	t.Helper()
	ledger, err := svc.AddPayment(context.Background(), testAcademy, "enr-1", "admin-1", AddPaymentRequest{Amount: dec(amount), Method: method})
	require.NoError(t, err)
	return ledger
}

func TestLedgerAfterTwoPayments(t *testing.T) {
	f := newPaymentFixture(t)

	addPayment(t, f.svc, "100.00", models.PaymentMethodEfectivo)
	ledger := addPayment(t, f.svc, "50.00", models.PaymentMethodYape)

	assert.Len(t, ledger.Payments, 2)
	assert.True(t, dec("150.00").Equal(ledger.TotalPaid))
	assert.True(t, dec("30.00").Equal(ledger.Balance))
	assert.Equal(t, "admin-1", ledger.Payments[0].RecordedBy)
}

func TestAddPaymentUnknownEnrollment(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.AddPayment(context.Background(), testAcademy, "missing", "admin-1", AddPaymentRequest{Amount: dec("10"), Method: models.PaymentMethodYape})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Empty(t, f.store.payments)
}

func TestAddPaymentRejectsBadInput(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddPayment(ctx, testAcademy, "enr-1", "admin-1", AddPaymentRequest{Amount: decimal.Zero, Method: models.PaymentMethodYape})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = f.svc.AddPayment(ctx, testAcademy, "enr-1", "admin-1", AddPaymentRequest{Amount: dec("10"), Method: "tarjeta"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, "método de pago no soportado", appErrors.FromError(err).Details["method"])
}

func TestRemoveUnknownPaymentIsNoop(t *testing.T) {
	f := newPaymentFixture(t)
	addPayment(t, f.svc, "100.00", models.PaymentMethodEfectivo)
	addPayment(t, f.svc, "50.00", models.PaymentMethodYape)

	ledger, err := f.svc.RemovePayment(context.Background(), testAcademy, "enr-1", "does-not-exist")
	require.NoError(t, err)
	assert.Len(t, ledger.Payments, 2)
	assert.True(t, dec("150.00").Equal(ledger.TotalPaid))
}

func TestRemovePaymentDeletesRow(t *testing.T) {
	f := newPaymentFixture(t)
	first := addPayment(t, f.svc, "100.00", models.PaymentMethodEfectivo)

	ledger, err := f.svc.RemovePayment(context.Background(), testAcademy, "enr-1", first.Payments[0].ID)
	require.NoError(t, err)
	assert.Empty(t, ledger.Payments)
	assert.True(t, dec("180.00").Equal(ledger.Balance))
}

func TestUpdatePaymentPatchesAndIgnoresUnknown(t *testing.T) {
	f := newPaymentFixture(t)
	ledger := addPayment(t, f.svc, "100.00", models.PaymentMethodEfectivo)
	id := ledger.Payments[0].ID
	amount := dec("120.00")
	yape := models.PaymentMethodYape

	ledger, err := f.svc.UpdatePayment(context.Background(), testAcademy, "enr-1", id, UpdatePaymentRequest{Amount: &amount, Method: &yape})
	require.NoError(t, err)
	assert.True(t, dec("120.00").Equal(ledger.TotalPaid))
	assert.Equal(t, models.PaymentMethodYape, ledger.Payments[0].Method)

	ledger, err = f.svc.UpdatePayment(context.Background(), testAcademy, "enr-1", "ghost", UpdatePaymentRequest{Amount: &amount})
	require.NoError(t, err)
	assert.Len(t, ledger.Payments, 1)
}

func TestUpdatePaymentSetsAndClearsCode(t *testing.T) {
	f := newPaymentFixture(t)
	ledger := addPayment(t, f.svc, "100.00", models.PaymentMethodYape)
	id := ledger.Payments[0].ID

	code := " OP-7781 "
	ledger, err := f.svc.UpdatePayment(context.Background(), testAcademy, "enr-1", id, UpdatePaymentRequest{Code: &code})
	require.NoError(t, err)
	require.NotNil(t, ledger.Payments[0].Code)
	assert.Equal(t, "OP-7781", *ledger.Payments[0].Code)

	amount := dec("90.00")
	ledger, err = f.svc.UpdatePayment(context.Background(), testAcademy, "enr-1", id, UpdatePaymentRequest{Amount: &amount})
	require.NoError(t, err)
	require.NotNil(t, ledger.Payments[0].Code)

	empty := ""
	ledger, err = f.svc.UpdatePayment(context.Background(), testAcademy, "enr-1", id, UpdatePaymentRequest{Code: &empty})
	require.NoError(t, err)
	assert.Nil(t, ledger.Payments[0].Code)
}

func TestConcurrentAddsAllPersist(t *testing.T) {
	f := newPaymentFixture(t)
	const n = 20

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.AddPayment(context.Background(), testAcademy, "enr-1", "admin-1", AddPaymentRequest{Amount: dec("5.00"), Method: models.PaymentMethodYape})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	ledger, err := f.svc.Ledger(context.Background(), testAcademy, "enr-1")
	require.NoError(t, err)
	assert.Len(t, ledger.Payments, n)
	assert.True(t, dec("100.00").Equal(ledger.TotalPaid))
}

func TestOverpaymentGivesNegativeBalance(t *testing.T) {
	f := newPaymentFixture(t)
	ledger := addPayment(t, f.svc, "200.00", models.PaymentMethodEfectivo)
	assert.True(t, dec("-20.00").Equal(ledger.Balance))
}

func pngFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestAttachReceiptAndThumbnailJob(t *testing.T) {
	f := newPaymentFixture(t)
	ledger := addPayment(t, f.svc, "100.00", models.PaymentMethodYape)
	id := ledger.Payments[0].ID

	payment, err := f.svc.AttachReceipt(context.Background(), testAcademy, "enr-1", id, pngFixture(t, 400, 300))
	require.NoError(t, err)
	require.NotNil(t, payment.ReceiptPath)
	assert.Contains(t, *payment.ReceiptPath, "receipts/"+testAcademy+"/enr-1/")
	assert.Contains(t, payment.ReceiptURL, "/api/v1/files/")
	assert.True(t, f.objects.has(*payment.ReceiptPath))

	require.Len(t, f.queue.jobs, 1)
	job := f.queue.jobs[0]
	assert.Equal(t, JobReceiptThumbnail, job.Kind)
	assert.Equal(t, *payment.ReceiptPath, job.Key)

	require.NoError(t, f.svc.HandleThumbnailJob(context.Background(), job))
	stored, err := fakePayments{f.store}.FindByID(context.Background(), testAcademy, "enr-1", id)
	require.NoError(t, err)
	require.NotNil(t, stored.ThumbnailPath)
	assert.True(t, f.objects.has(*stored.ThumbnailPath))

	// removing the payment removes both files
	_, err = f.svc.RemovePayment(context.Background(), testAcademy, "enr-1", id)
	require.NoError(t, err)
	assert.False(t, f.objects.has(*stored.ReceiptPath))
	assert.False(t, f.objects.has(*stored.ThumbnailPath))
}

func TestAttachReceiptRejectsNonImage(t *testing.T) {
	f := newPaymentFixture(t)
	ledger := addPayment(t, f.svc, "100.00", models.PaymentMethodYape)

	_, err := f.svc.AttachReceipt(context.Background(), testAcademy, "enr-1", ledger.Payments[0].ID, []byte("%PDF-1.4 not an image"))
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, f.queue.jobs)
}

func TestStaleThumbnailIsDiscarded(t *testing.T) {
	f := newPaymentFixture(t)
	_, err := f.objects.Save("receipts/old.png", pngFixture(t, 50, 50))
	require.NoError(t, err)

	err = f.svc.HandleThumbnailJob(context.Background(), jobs.Job{Kind: JobReceiptThumbnail, AcademyID: testAcademy, Key: "receipts/old.png"})
	require.NoError(t, err)
	assert.False(t, f.objects.has("receipts/thumb_old.png"))
}

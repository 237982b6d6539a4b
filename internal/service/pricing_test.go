package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/academy-api/internal/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeSnapshotWithRegistration(t *testing.T) {
	snap := ComputeSnapshot(PricingInput{
		CoursePrice:          dec("150.00"),
		CourseTotalClasses:   12,
		RegistrationFee:      dec("30.00"),
		IncludesRegistration: true,
	})
	assert.True(t, dec("180.00").Equal(snap.PriceCharged))
	assert.True(t, dec("30.00").Equal(snap.RegistrationPrice))
	assert.Equal(t, 12, snap.TotalClasses)
	assert.False(t, snap.IsPersonalized)
}

func TestComputeSnapshotWithoutRegistration(t *testing.T) {
	snap := ComputeSnapshot(PricingInput{CoursePrice: dec("150.00"), RegistrationFee: dec("30.00")})
	assert.True(t, dec("150.00").Equal(snap.PriceCharged))
	assert.True(t, snap.RegistrationPrice.IsZero())
}

func TestComputeSnapshotPersonalized(t *testing.T) {
	price := dec("100.00")
	classes := 6
	snap := ComputeSnapshot(PricingInput{
		CoursePrice:          dec("150.00"),
		CourseTotalClasses:   12,
		RegistrationFee:      dec("30.00"),
		IncludesRegistration: true,
		PersonalizedPrice:    &price,
		PersonalizedClasses:  &classes,
	})
	assert.True(t, snap.IsPersonalized)
	assert.True(t, dec("130.00").Equal(snap.PriceCharged))
	assert.Equal(t, 6, snap.TotalClasses)
}

func TestBuildLedger(t *testing.T) {
	ledger := BuildLedger("enr-1", dec("180.00"), []models.Payment{
		{ID: "p1", Amount: dec("100.00"), Method: models.PaymentMethodEfectivo},
		{ID: "p2", Amount: dec("50.00"), Method: models.PaymentMethodYape},
	})
	assert.True(t, dec("150.00").Equal(ledger.TotalPaid))
	assert.True(t, dec("30.00").Equal(ledger.Balance))

	overpaid := BuildLedger("enr-1", dec("100.00"), []models.Payment{{Amount: dec("120.00")}})
	assert.True(t, dec("-20.00").Equal(overpaid.Balance))

	empty := BuildLedger("enr-1", dec("100.00"), nil)
	assert.NotNil(t, empty.Payments)
	assert.True(t, dec("100.00").Equal(empty.Balance))
}

func TestAdminCheckDelta(t *testing.T) {
	assert.Equal(t, 1, AdminCheckDelta(false, true))
	assert.Equal(t, -1, AdminCheckDelta(true, false))
	assert.Equal(t, 0, AdminCheckDelta(true, true))
	assert.Equal(t, 0, AdminCheckDelta(false, false))
}

package service

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/academy-api/internal/models"
)

// PricingInput carries everything the enrollment snapshot depends on.
type PricingInput struct {
	CoursePrice          decimal.Decimal
	CourseTotalClasses   int
	RegistrationFee      decimal.Decimal
	IncludesRegistration bool
	PersonalizedPrice    *decimal.Decimal
	PersonalizedClasses  *int
}

// PriceSnapshot is the frozen charge stored on a new enrollment.
type PriceSnapshot struct {
	CoursePrice       decimal.Decimal
	RegistrationPrice decimal.Decimal
	PriceCharged      decimal.Decimal
	TotalClasses      int
	IsPersonalized    bool
}

// ComputeSnapshot applies price_charged = course_price + registration_price, where the
// registration price is the academy fee only when includes_registration is set.
func ComputeSnapshot(in PricingInput) PriceSnapshot {
	snap := PriceSnapshot{
		CoursePrice:       in.CoursePrice,
		RegistrationPrice: decimal.Zero,
		TotalClasses:      in.CourseTotalClasses,
	}
	if in.PersonalizedPrice != nil {
		snap.CoursePrice = *in.PersonalizedPrice
		snap.IsPersonalized = true
	}
	if in.PersonalizedClasses != nil {
		snap.TotalClasses = *in.PersonalizedClasses
		snap.IsPersonalized = true
	}
	if in.IncludesRegistration {
		snap.RegistrationPrice = in.RegistrationFee
	}
	snap.PriceCharged = snap.CoursePrice.Add(snap.RegistrationPrice)
	return snap
}

// BuildLedger folds payments into paid total and balance. A negative balance means overpaid.
func BuildLedger(enrollmentID string, priceCharged decimal.Decimal, payments []models.Payment) models.Ledger {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	return models.Ledger{
		EnrollmentID: enrollmentID,
		PriceCharged: priceCharged,
		TotalPaid:    total,
		Balance:      priceCharged.Sub(total),
		Payments:     payments,
	}
}

// AdminCheckDelta is the class_count movement caused by an admin_check transition.
func AdminCheckDelta(previous, next bool) int {
	switch {
	case !previous && next:
		return 1
	case previous && !next:
		return -1
	default:
		return 0
	}
}

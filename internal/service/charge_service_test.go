package service

import (
	"errors"
	"testing"
	"time"

	"github.com/coprogest/coprogest-backend/internal/domain"
	"github.com/coprogest/coprogest-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

func validWaterChargeInput() ChargeInput {
	periodStart := date(2025, time.January, 1)
	periodEnd := date(2025, time.June, 30)
	price := decimal.NewFromFloat(2.9)
	return ChargeInput{
		Category:       domain.ChargeCategoryWater,
		Amount:         decimal.NewFromInt(500),
		BillingDate:    date(2025, time.March, 15),
		PeriodStart:    &periodStart,
		PeriodEnd:      &periodEnd,
		WaterUnitPrice: &price,
	}
}

func TestChargeService_CreateCharge_Success(t *testing.T) {
	service := NewChargeService(testutil.NewMockChargeRepository())

	charge, err := service.CreateCharge(1, validWaterChargeInput())

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if charge.ID == 0 {
		t.Error("expected non-zero charge ID")
	}
	if charge.Category != domain.ChargeCategoryWater {
		t.Errorf("expected water category, got %s", charge.Category)
	}
	if charge.WaterUnitPrice == nil || !charge.WaterUnitPrice.Equal(decimal.NewFromFloat(2.9)) {
		t.Error("expected water unit price to be persisted")
	}
}

func TestChargeService_CreateCharge_Validation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(input *ChargeInput)
		expected error
	}{
		{
			name:     "unknown category",
			mutate:   func(input *ChargeInput) { input.Category = "gardening" },
			expected: domain.ErrInvalidCategory,
		},
		{
			name:     "negative amount",
			mutate:   func(input *ChargeInput) { input.Amount = decimal.NewFromInt(-10) },
			expected: domain.ErrNegativeAmount,
		},
		{
			name:     "missing billing date",
			mutate:   func(input *ChargeInput) { input.BillingDate = time.Time{} },
			expected: domain.ErrBillingDateRequired,
		},
		{
			name:     "missing service period",
			mutate:   func(input *ChargeInput) { input.PeriodStart = nil },
			expected: domain.ErrPeriodRequired,
		},
		{
			name: "period end before start",
			mutate: func(input *ChargeInput) {
				start := date(2025, time.June, 30)
				end := date(2025, time.January, 1)
				input.PeriodStart = &start
				input.PeriodEnd = &end
			},
			expected: domain.ErrInvalidPeriod,
		},
		{
			name:     "water charge without unit price",
			mutate:   func(input *ChargeInput) { input.WaterUnitPrice = nil },
			expected: domain.ErrWaterPriceRequired,
		},
		{
			name: "water charge with zero unit price",
			mutate: func(input *ChargeInput) {
				zero := decimal.Zero
				input.WaterUnitPrice = &zero
			},
			expected: domain.ErrWaterPriceRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewChargeService(testutil.NewMockChargeRepository())
			input := validWaterChargeInput()
			tt.mutate(&input)

			_, err := service.CreateCharge(1, input)

			if !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestChargeService_CreateCharge_OtherCategoryWithoutPeriod(t *testing.T) {
	service := NewChargeService(testutil.NewMockChargeRepository())

	charge, err := service.CreateCharge(1, ChargeInput{
		Category:    domain.ChargeCategoryOther,
		Amount:      decimal.NewFromInt(80),
		BillingDate: date(2025, time.April, 2),
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if charge.PeriodStart != nil || charge.PeriodEnd != nil {
		t.Error("expected no service period on other-category charge")
	}
}

func TestChargeService_CreateCharge_DropsPriceForNonWater(t *testing.T) {
	service := NewChargeService(testutil.NewMockChargeRepository())

	input := validWaterChargeInput()
	input.Category = domain.ChargeCategoryInsurance

	charge, err := service.CreateCharge(1, input)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if charge.WaterUnitPrice != nil {
		t.Error("expected water unit price to be dropped for non-water charge")
	}
}

func TestChargeService_GetCharges_PeriodFilter(t *testing.T) {
	chargeRepo := testutil.NewMockChargeRepository()
	service := NewChargeService(chargeRepo)

	if _, err := service.CreateCharge(1, validWaterChargeInput()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	outStart := date(2024, time.July, 1)
	outEnd := date(2024, time.December, 31)
	price := decimal.NewFromFloat(2.5)
	if _, err := service.CreateCharge(1, ChargeInput{
		Category:       domain.ChargeCategoryWater,
		Amount:         decimal.NewFromInt(300),
		BillingDate:    date(2024, time.November, 1),
		PeriodStart:    &outStart,
		PeriodEnd:      &outEnd,
		WaterUnitPrice: &price,
	}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	all, err := service.GetCharges(1, nil, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 charges without filter, got %d", len(all))
	}

	filterStart := date(2025, time.January, 1)
	filterEnd := date(2025, time.June, 30)
	filtered, err := service.GetCharges(1, &filterStart, &filterEnd)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(filtered) != 1 {
		t.Errorf("expected 1 charge in period, got %d", len(filtered))
	}

	_, err = service.GetCharges(1, &filterEnd, &filterStart)
	if !errors.Is(err, domain.ErrInvalidPeriod) {
		t.Errorf("expected ErrInvalidPeriod for reversed filter, got %v", err)
	}
}

func TestChargeService_UpdateCharge_PreservesInvoicePath(t *testing.T) {
	chargeRepo := testutil.NewMockChargeRepository()
	service := NewChargeService(chargeRepo)

	charge, err := service.CreateCharge(1, validWaterChargeInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	invoicePath := "condos/1/invoices/1/abc"
	if err := chargeRepo.SetInvoicePath(1, charge.ID, &invoicePath); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	input := validWaterChargeInput()
	input.Amount = decimal.NewFromInt(600)
	updated, err := service.UpdateCharge(1, charge.ID, input)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !updated.Amount.Equal(decimal.NewFromInt(600)) {
		t.Errorf("expected amount 600, got %s", updated.Amount)
	}
	if updated.InvoicePath == nil || *updated.InvoicePath != invoicePath {
		t.Error("expected invoice path to survive update")
	}
}

func TestChargeService_DeleteCharge_NotFound(t *testing.T) {
	service := NewChargeService(testutil.NewMockChargeRepository())

	err := service.DeleteCharge(1, 42)

	if !errors.Is(err, domain.ErrChargeNotFound) {
		t.Errorf("expected ErrChargeNotFound, got %v", err)
	}
}

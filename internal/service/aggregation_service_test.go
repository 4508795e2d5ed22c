package service

import (
	"errors"
	"testing"
	"time"

	"github.com/coprogest/coprogest-backend/internal/domain"
	"github.com/coprogest/coprogest-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

func newAggregationFixture() (*AggregationService, *testutil.MockChargeRepository) {
	condominiumRepo := testutil.NewMockCondominiumRepository()
	condominiumRepo.AddCondominium(&domain.Condominium{ID: 1, Name: "Résidence des Lilas"})
	chargeRepo := testutil.NewMockChargeRepository()
	return NewAggregationService(condominiumRepo, chargeRepo), chargeRepo
}

func waterCharge(id int32, amount float64, billingDate, periodStart, periodEnd time.Time, unitPrice float64) *domain.Charge {
	price := decimal.NewFromFloat(unitPrice)
	return &domain.Charge{
		ID:             id,
		CondominiumID:  1,
		Category:       domain.ChargeCategoryWater,
		Amount:         decimal.NewFromFloat(amount),
		BillingDate:    billingDate,
		PeriodStart:    &periodStart,
		PeriodEnd:      &periodEnd,
		WaterUnitPrice: &price,
	}
}

func TestAggregationService_AggregateCharges_SumsByCategory(t *testing.T) {
	service, chargeRepo := newAggregationFixture()
	periodStart := date(2025, time.January, 1)
	periodEnd := date(2025, time.June, 30)

	chargeRepo.AddCharge(waterCharge(1, 300, date(2025, time.February, 10), periodStart, periodEnd, 2.9))
	chargeRepo.AddCharge(waterCharge(2, 200, date(2025, time.May, 10), periodStart, periodEnd, 3.1))
	chargeRepo.AddCharge(&domain.Charge{
		ID: 3, CondominiumID: 1, Category: domain.ChargeCategoryInsurance,
		Amount: decimal.NewFromInt(1000), BillingDate: date(2025, time.January, 5),
		PeriodStart: &periodStart, PeriodEnd: &periodEnd,
	})
	chargeRepo.AddCharge(&domain.Charge{
		ID: 4, CondominiumID: 1, Category: domain.ChargeCategoryBank,
		Amount: decimal.NewFromInt(100), BillingDate: date(2025, time.March, 1),
		PeriodStart: &periodStart, PeriodEnd: &periodEnd,
	})
	// Category "other" is not part of settlement totals
	chargeRepo.AddCharge(&domain.Charge{
		ID: 5, CondominiumID: 1, Category: domain.ChargeCategoryOther,
		Amount: decimal.NewFromInt(9999), BillingDate: date(2025, time.March, 1),
		PeriodStart: &periodStart, PeriodEnd: &periodEnd,
	})

	totals, err := service.AggregateCharges(1, periodStart, periodEnd)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !totals.TotalWaterBill.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected total water bill 500, got %s", totals.TotalWaterBill)
	}
	if !totals.TotalInsurance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected total insurance 1000, got %s", totals.TotalInsurance)
	}
	if !totals.TotalBankFees.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected total bank fees 100, got %s", totals.TotalBankFees)
	}
	// Most recently billed water charge wins the unit price
	if !totals.WaterUnitPrice.Equal(decimal.NewFromFloat(3.1)) {
		t.Errorf("expected water unit price 3.1, got %s", totals.WaterUnitPrice)
	}
}

func TestAggregationService_AggregateCharges_Additivity(t *testing.T) {
	service, chargeRepo := newAggregationFixture()
	periodStart := date(2025, time.January, 1)
	periodEnd := date(2025, time.June, 30)

	chargeRepo.AddCharge(waterCharge(1, 300, date(2025, time.February, 10), periodStart, periodEnd, 2.9))

	before, err := service.AggregateCharges(1, periodStart, periodEnd)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// An out-of-range water charge must not change the total
	chargeRepo.AddCharge(waterCharge(2, 777, date(2024, time.November, 1),
		date(2024, time.July, 1), date(2024, time.December, 31), 2.5))

	after, err := service.AggregateCharges(1, periodStart, periodEnd)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !after.TotalWaterBill.Equal(before.TotalWaterBill) {
		t.Errorf("out-of-range charge changed total: %s -> %s", before.TotalWaterBill, after.TotalWaterBill)
	}

	// An in-range one must increase it by exactly its amount
	chargeRepo.AddCharge(waterCharge(3, 120.5, date(2025, time.April, 1), periodStart, periodEnd, 2.9))

	after, err = service.AggregateCharges(1, periodStart, periodEnd)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	expected := before.TotalWaterBill.Add(decimal.NewFromFloat(120.5))
	if !after.TotalWaterBill.Equal(expected) {
		t.Errorf("expected total %s after in-range charge, got %s", expected, after.TotalWaterBill)
	}
}

func TestAggregationService_AggregateCharges_WaterPriceTieBreak(t *testing.T) {
	service, chargeRepo := newAggregationFixture()
	periodStart := date(2025, time.January, 1)
	periodEnd := date(2025, time.December, 31)
	sameDay := date(2025, time.June, 1)

	// Same billing date: the higher charge id wins
	chargeRepo.AddCharge(waterCharge(10, 100, sameDay, periodStart, periodEnd, 2.5))
	chargeRepo.AddCharge(waterCharge(11, 100, sameDay, periodStart, periodEnd, 2.8))

	totals, err := service.AggregateCharges(1, periodStart, periodEnd)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !totals.WaterUnitPrice.Equal(decimal.NewFromFloat(2.8)) {
		t.Errorf("expected water unit price 2.8, got %s", totals.WaterUnitPrice)
	}
}

func TestAggregationService_AggregateCharges_NoMatchingCharges(t *testing.T) {
	service, chargeRepo := newAggregationFixture()

	// Water charge whose period ends before the query range starts
	chargeRepo.AddCharge(waterCharge(1, 400, date(2024, time.November, 1),
		date(2024, time.July, 1), date(2024, time.December, 31), 2.9))

	totals, err := service.AggregateCharges(1, date(2025, time.January, 1), date(2025, time.June, 30))

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !totals.TotalWaterBill.IsZero() {
		t.Errorf("expected zero total water bill, got %s", totals.TotalWaterBill)
	}
	if !totals.WaterUnitPrice.IsZero() {
		t.Errorf("expected zero water unit price, got %s", totals.WaterUnitPrice)
	}
	if !totals.TotalInsurance.IsZero() || !totals.TotalBankFees.IsZero() {
		t.Error("expected all-zero totals for a period with no matching charges")
	}
}

func TestAggregationService_AggregateCharges_InvalidPeriod(t *testing.T) {
	service, _ := newAggregationFixture()

	_, err := service.AggregateCharges(1, date(2025, time.June, 30), date(2025, time.January, 1))

	if !errors.Is(err, domain.ErrInvalidPeriod) {
		t.Errorf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestAggregationService_AggregateCharges_CondominiumNotFound(t *testing.T) {
	service, _ := newAggregationFixture()

	_, err := service.AggregateCharges(42, date(2025, time.January, 1), date(2025, time.June, 30))

	if !errors.Is(err, domain.ErrCondominiumNotFound) {
		t.Errorf("expected ErrCondominiumNotFound, got %v", err)
	}
}

package service

import (
	"errors"
	"testing"
	"time"

	"github.com/coprogest/coprogest-backend/internal/domain"
	"github.com/coprogest/coprogest-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestSettlementService_ComputeSettlements_Basic(t *testing.T) {
	// Unit: 20.1 tantièmes, 50/month advance, 100 m³ consumed
	unit := &domain.Unit{
		ID:              1,
		CondominiumID:   1,
		Label:           "Apt 1",
		OwnershipShare:  decimal.NewFromFloat(20.1),
		MonthlyAdvance:  decimal.NewFromInt(50),
		WaterMeterStart: decimal.NewFromInt(800),
		WaterMeterEnd:   decimal.NewFromInt(900),
	}
	totals := &domain.AggregateTotals{
		TotalWaterBill: decimal.NewFromInt(500),
		WaterUnitPrice: decimal.NewFromFloat(2.9),
		TotalInsurance: decimal.NewFromInt(1000),
		TotalBankFees:  decimal.NewFromInt(100),
	}

	service := NewSettlementService(testutil.NewMockUnitRepository(), nil)
	results, err := service.ComputeSettlements([]*domain.Unit{unit}, totals, 3)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	result := results[0]
	checks := []struct {
		name     string
		got      decimal.Decimal
		expected string
	}{
		{"advanceContribution", result.AdvanceContribution, "150"},
		{"waterConsumptionShare", result.WaterConsumptionShare, "290"},
		{"insuranceShare", result.InsuranceShare, "201"},
		{"bankFeesShare", result.BankFeesShare, "20.1"},
		{"totalCharges", result.TotalCharges, "511.1"},
		{"finalBalance", result.FinalBalance, "-361.1"},
	}
	for _, check := range checks {
		expected, _ := decimal.NewFromString(check.expected)
		if !check.got.Equal(expected) {
			t.Errorf("%s: expected %s, got %s", check.name, check.expected, check.got)
		}
	}
	if result.Status != domain.SettlementStatusToPay {
		t.Errorf("expected status %s, got %s", domain.SettlementStatusToPay, result.Status)
	}
}

func TestSettlementService_ComputeSettlements_NoConsumptionNoCharges(t *testing.T) {
	// No water consumed and no insurance/bank charges: the advances come back
	unit := &domain.Unit{
		ID:              1,
		CondominiumID:   1,
		Label:           "Apt 1",
		OwnershipShare:  decimal.NewFromFloat(20.1),
		MonthlyAdvance:  decimal.NewFromInt(50),
		WaterMeterStart: decimal.NewFromInt(800),
		WaterMeterEnd:   decimal.NewFromInt(800),
	}
	totals := &domain.AggregateTotals{
		WaterUnitPrice: decimal.NewFromFloat(2.9),
	}

	service := NewSettlementService(testutil.NewMockUnitRepository(), nil)
	results, err := service.ComputeSettlements([]*domain.Unit{unit}, totals, 3)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	result := results[0]
	if !result.TotalCharges.IsZero() {
		t.Errorf("expected zero total charges, got %s", result.TotalCharges)
	}
	if !result.FinalBalance.Equal(decimal.NewFromInt(150)) {
		t.Errorf("expected final balance 150, got %s", result.FinalBalance)
	}
	if result.Status != domain.SettlementStatusToReimburse {
		t.Errorf("expected status %s, got %s", domain.SettlementStatusToReimburse, result.Status)
	}
}

func TestSettlementService_ComputeSettlements_ExactlyBalanced(t *testing.T) {
	// Advances of 100 over 1 month against insurance of 1000 at 10 tantièmes:
	// insuranceShare = 1000/100*10 = 100, balance exactly zero
	unit := &domain.Unit{
		ID:             1,
		CondominiumID:  1,
		Label:          "Apt 1",
		OwnershipShare: decimal.NewFromInt(10),
		MonthlyAdvance: decimal.NewFromInt(100),
	}
	totals := &domain.AggregateTotals{
		TotalInsurance: decimal.NewFromInt(1000),
	}

	service := NewSettlementService(testutil.NewMockUnitRepository(), nil)
	results, err := service.ComputeSettlements([]*domain.Unit{unit}, totals, 1)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	result := results[0]
	if !result.FinalBalance.IsZero() {
		t.Errorf("expected zero final balance, got %s", result.FinalBalance)
	}
	if result.Status != domain.SettlementStatusBalanced {
		t.Errorf("expected status %s, got %s", domain.SettlementStatusBalanced, result.Status)
	}
}

func TestSettlementService_ComputeSettlements_BalanceIdentity(t *testing.T) {
	units := []*domain.Unit{
		{
			ID:              1,
			Label:           "Apt 1",
			OwnershipShare:  decimal.NewFromFloat(33.33),
			MonthlyAdvance:  decimal.NewFromFloat(75.50),
			WaterMeterStart: decimal.NewFromFloat(123.4),
			WaterMeterEnd:   decimal.NewFromFloat(156.7),
		},
		{
			ID:              2,
			Label:           "Apt 2",
			OwnershipShare:  decimal.NewFromFloat(66.67),
			MonthlyAdvance:  decimal.NewFromFloat(120),
			WaterMeterStart: decimal.NewFromInt(0),
			WaterMeterEnd:   decimal.NewFromFloat(98.2),
		},
	}
	totals := &domain.AggregateTotals{
		TotalWaterBill: decimal.NewFromFloat(431.77),
		WaterUnitPrice: decimal.NewFromFloat(3.17),
		TotalInsurance: decimal.NewFromFloat(1234.56),
		TotalBankFees:  decimal.NewFromFloat(78.9),
	}

	service := NewSettlementService(testutil.NewMockUnitRepository(), nil)
	results, err := service.ComputeSettlements(units, totals, 12)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for _, result := range results {
		charges := result.WaterConsumptionShare.Add(result.InsuranceShare).Add(result.BankFeesShare)
		identity := result.AdvanceContribution.Sub(charges)
		if !result.FinalBalance.Equal(identity) {
			t.Errorf("unit %d: balance %s does not equal advance - charges %s", result.UnitID, result.FinalBalance, identity)
		}
		switch {
		case result.FinalBalance.IsNegative():
			if result.Status != domain.SettlementStatusToPay {
				t.Errorf("unit %d: negative balance with status %s", result.UnitID, result.Status)
			}
		case result.FinalBalance.IsPositive():
			if result.Status != domain.SettlementStatusToReimburse {
				t.Errorf("unit %d: positive balance with status %s", result.UnitID, result.Status)
			}
		default:
			if result.Status != domain.SettlementStatusBalanced {
				t.Errorf("unit %d: zero balance with status %s", result.UnitID, result.Status)
			}
		}
	}
}

func TestSettlementService_ComputeSettlements_ZeroOwnershipShare(t *testing.T) {
	unit := &domain.Unit{
		ID:             1,
		Label:          "Cave",
		OwnershipShare: decimal.Zero,
		MonthlyAdvance: decimal.NewFromInt(10),
	}
	totals := &domain.AggregateTotals{
		TotalInsurance: decimal.NewFromInt(99999),
		TotalBankFees:  decimal.NewFromInt(12345),
	}

	service := NewSettlementService(testutil.NewMockUnitRepository(), nil)
	results, err := service.ComputeSettlements([]*domain.Unit{unit}, totals, 6)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	result := results[0]
	if !result.InsuranceShare.IsZero() {
		t.Errorf("expected zero insurance share, got %s", result.InsuranceShare)
	}
	if !result.BankFeesShare.IsZero() {
		t.Errorf("expected zero bank fees share, got %s", result.BankFeesShare)
	}
}

func TestSettlementService_ComputeSettlements_EmptyUnits(t *testing.T) {
	service := NewSettlementService(testutil.NewMockUnitRepository(), nil)
	results, err := service.ComputeSettlements([]*domain.Unit{}, &domain.AggregateTotals{}, 12)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty results, got %d", len(results))
	}
}

func TestSettlementService_ComputeSettlements_InvalidMonths(t *testing.T) {
	service := NewSettlementService(testutil.NewMockUnitRepository(), nil)

	for _, months := range []int{0, -1} {
		_, err := service.ComputeSettlements([]*domain.Unit{}, &domain.AggregateTotals{}, months)
		if !errors.Is(err, domain.ErrInvalidMonths) {
			t.Errorf("months=%d: expected ErrInvalidMonths, got %v", months, err)
		}
	}
}

func TestSettlementService_ComputeSettlements_InvalidMeterReading(t *testing.T) {
	units := []*domain.Unit{
		{
			ID:              1,
			Label:           "Apt 1",
			WaterMeterStart: decimal.NewFromInt(100),
			WaterMeterEnd:   decimal.NewFromInt(200),
		},
		{
			ID:              7,
			Label:           "Apt 7",
			WaterMeterStart: decimal.NewFromInt(900),
			WaterMeterEnd:   decimal.NewFromInt(800),
		},
	}

	service := NewSettlementService(testutil.NewMockUnitRepository(), nil)
	results, err := service.ComputeSettlements(units, &domain.AggregateTotals{}, 3)

	if !errors.Is(err, domain.ErrInvalidMeterReading) {
		t.Fatalf("expected ErrInvalidMeterReading, got %v", err)
	}
	if results != nil {
		t.Error("expected no partial results on meter reading failure")
	}
}

func TestSettlementService_RunForPeriod(t *testing.T) {
	condominiumRepo := testutil.NewMockCondominiumRepository()
	condominiumRepo.AddCondominium(&domain.Condominium{ID: 1, Name: "Résidence des Lilas"})

	chargeRepo := testutil.NewMockChargeRepository()
	periodStart := date(2025, time.January, 1)
	periodEnd := date(2025, time.June, 30)
	waterPrice := decimal.NewFromFloat(2.9)
	chargeRepo.AddCharge(&domain.Charge{
		ID:             1,
		CondominiumID:  1,
		Category:       domain.ChargeCategoryWater,
		Amount:         decimal.NewFromInt(500),
		BillingDate:    date(2025, time.March, 15),
		PeriodStart:    &periodStart,
		PeriodEnd:      &periodEnd,
		WaterUnitPrice: &waterPrice,
	})
	chargeRepo.AddCharge(&domain.Charge{
		ID:            2,
		CondominiumID: 1,
		Category:      domain.ChargeCategoryInsurance,
		Amount:        decimal.NewFromInt(1000),
		BillingDate:   date(2025, time.February, 1),
		PeriodStart:   &periodStart,
		PeriodEnd:     &periodEnd,
	})

	unitRepo := testutil.NewMockUnitRepository()
	unitRepo.AddUnit(&domain.Unit{
		ID:              1,
		CondominiumID:   1,
		Label:           "Apt 1",
		OwnershipShare:  decimal.NewFromInt(50),
		MonthlyAdvance:  decimal.NewFromInt(100),
		WaterMeterStart: decimal.NewFromInt(0),
		WaterMeterEnd:   decimal.NewFromInt(10),
	})

	aggregationService := NewAggregationService(condominiumRepo, chargeRepo)
	service := NewSettlementService(unitRepo, aggregationService)

	run, err := service.RunForPeriod(1, periodStart, periodEnd)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// January through June inclusive
	if run.MonthsInPeriod != 6 {
		t.Errorf("expected 6 months in period, got %d", run.MonthsInPeriod)
	}
	if len(run.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(run.Results))
	}
	result := run.Results[0]
	// advance = 100*6, water = 10*2.9, insurance = 1000/100*50
	if !result.AdvanceContribution.Equal(decimal.NewFromInt(600)) {
		t.Errorf("expected advance 600, got %s", result.AdvanceContribution)
	}
	if !result.WaterConsumptionShare.Equal(decimal.NewFromInt(29)) {
		t.Errorf("expected water share 29, got %s", result.WaterConsumptionShare)
	}
	if !result.InsuranceShare.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected insurance share 500, got %s", result.InsuranceShare)
	}
	if !result.FinalBalance.Equal(decimal.NewFromInt(71)) {
		t.Errorf("expected final balance 71, got %s", result.FinalBalance)
	}
	if result.Status != domain.SettlementStatusToReimburse {
		t.Errorf("expected status %s, got %s", domain.SettlementStatusToReimburse, result.Status)
	}
}

func TestSettlementService_RunForPeriod_CondominiumNotFound(t *testing.T) {
	aggregationService := NewAggregationService(testutil.NewMockCondominiumRepository(), testutil.NewMockChargeRepository())
	service := NewSettlementService(testutil.NewMockUnitRepository(), aggregationService)

	_, err := service.RunForPeriod(42, date(2025, time.January, 1), date(2025, time.December, 31))

	if !errors.Is(err, domain.ErrCondominiumNotFound) {
		t.Errorf("expected ErrCondominiumNotFound, got %v", err)
	}
}

package service

import (
	"time"

	"github.com/coprogest/coprogest-backend/internal/domain"
)

// AggregationService folds the charge records of a billing period into
// per-category totals for the settlement calculation
type AggregationService struct {
	condominiumRepo domain.CondominiumRepository
	chargeRepo      domain.ChargeRepository
}

// NewAggregationService creates a new AggregationService
func NewAggregationService(condominiumRepo domain.CondominiumRepository, chargeRepo domain.ChargeRepository) *AggregationService {
	return &AggregationService{
		condominiumRepo: condominiumRepo,
		chargeRepo:      chargeRepo,
	}
}

// AggregateCharges sums the charges of the condominium whose service period
// overlaps [periodStart, periodEnd] into per-category totals.
//
// A period with no matching charges yields zero totals, not an error.
// Charges of category "other" are not part of the settlement categories and
// are skipped. When several water charges overlap the period, the unit price
// of the most recently billed one wins; ties on billing date break to the
// highest charge id.
func (s *AggregationService) AggregateCharges(condominiumID int32, periodStart, periodEnd time.Time) (*domain.AggregateTotals, error) {
	if periodStart.IsZero() || periodEnd.IsZero() || periodEnd.Before(periodStart) {
		return nil, domain.ErrInvalidPeriod
	}

	// An unknown condominium is an error; an empty one is not.
	if _, err := s.condominiumRepo.GetByID(condominiumID); err != nil {
		return nil, err
	}

	charges, err := s.chargeRepo.GetByPeriod(condominiumID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	totals := &domain.AggregateTotals{}
	var priceBilledAt time.Time
	var priceChargeID int32

	for _, charge := range charges {
		switch charge.Category {
		case domain.ChargeCategoryWater:
			totals.TotalWaterBill = totals.TotalWaterBill.Add(charge.Amount)
			if charge.WaterUnitPrice == nil {
				continue
			}
			if charge.BillingDate.After(priceBilledAt) ||
				(charge.BillingDate.Equal(priceBilledAt) && charge.ID > priceChargeID) {
				totals.WaterUnitPrice = *charge.WaterUnitPrice
				priceBilledAt = charge.BillingDate
				priceChargeID = charge.ID
			}
		case domain.ChargeCategoryInsurance:
			totals.TotalInsurance = totals.TotalInsurance.Add(charge.Amount)
		case domain.ChargeCategoryBank:
			totals.TotalBankFees = totals.TotalBankFees.Add(charge.Amount)
		case domain.ChargeCategoryOther:
			// Not a settlement category.
		}
	}

	return totals, nil
}

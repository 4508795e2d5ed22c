package service

import (
	"fmt"
	"time"

	"github.com/coprogest/coprogest-backend/internal/domain"
	"github.com/coprogest/coprogest-backend/internal/metrics"
	"github.com/coprogest/coprogest-backend/internal/util"
	"github.com/coprogest/coprogest-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// SettlementService computes per-unit settlements: each unit's share of the
// period's charges netted against its advance payments
type SettlementService struct {
	unitRepo           domain.UnitRepository
	aggregationService *AggregationService
	eventPublisher     websocket.EventPublisher
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(unitRepo domain.UnitRepository, aggregationService *AggregationService) *SettlementService {
	return &SettlementService{
		unitRepo:           unitRepo,
		aggregationService: aggregationService,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *SettlementService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// SettlementRun is one full settlement computation for a billing period
type SettlementRun struct {
	PeriodStart    time.Time
	PeriodEnd      time.Time
	MonthsInPeriod int
	Totals         *domain.AggregateTotals
	Results        []*domain.SettlementResult
}

// ComputeSettlements produces one SettlementResult per unit from the
// aggregated category totals and the number of advance months.
//
// The computation is pure: inputs are not mutated and nothing is persisted.
// Field order is fixed (advance, water, insurance, bank fees, total,
// balance, status) and no intermediate rounding happens; amounts are rounded
// once, at the presentation edge.
//
// A unit whose water meter end reading precedes its start reading fails the
// whole run with ErrInvalidMeterReading (wrapped with the unit id): a
// statement containing one nonsense row must never be issued. The source
// system computed the negative share silently; this is deliberately stricter.
func (s *SettlementService) ComputeSettlements(units []*domain.Unit, totals *domain.AggregateTotals, monthsInPeriod int) ([]*domain.SettlementResult, error) {
	if monthsInPeriod < 1 {
		return nil, domain.ErrInvalidMonths
	}
	if totals == nil {
		return nil, domain.ErrInvalidInput
	}

	months := decimal.NewFromInt(int64(monthsInPeriod))
	results := make([]*domain.SettlementResult, 0, len(units))

	for _, unit := range units {
		if unit.WaterMeterEnd.LessThan(unit.WaterMeterStart) {
			return nil, fmt.Errorf("unit %d: %w", unit.ID, domain.ErrInvalidMeterReading)
		}

		advance := unit.MonthlyAdvance.Mul(months)
		waterShare := unit.WaterMeterEnd.Sub(unit.WaterMeterStart).Mul(totals.WaterUnitPrice)
		insuranceShare := totals.TotalInsurance.Div(oneHundred).Mul(unit.OwnershipShare)
		bankFeesShare := totals.TotalBankFees.Div(oneHundred).Mul(unit.OwnershipShare)
		totalCharges := waterShare.Add(insuranceShare).Add(bankFeesShare)
		balance := advance.Sub(totalCharges)

		results = append(results, &domain.SettlementResult{
			UnitID:          unit.ID,
			UnitLabel:       unit.Label,
			OwnershipShare:  unit.OwnershipShare,
			MonthlyAdvance:  unit.MonthlyAdvance,
			WaterMeterStart: unit.WaterMeterStart,
			WaterMeterEnd:   unit.WaterMeterEnd,

			MonthsInPeriod: monthsInPeriod,
			TotalWaterBill: totals.TotalWaterBill,
			TotalInsurance: totals.TotalInsurance,
			TotalBankFees:  totals.TotalBankFees,
			WaterUnitPrice: totals.WaterUnitPrice,

			AdvanceContribution:   advance,
			WaterConsumptionShare: waterShare,
			InsuranceShare:        insuranceShare,
			BankFeesShare:         bankFeesShare,
			TotalCharges:          totalCharges,
			FinalBalance:          balance,
			Status:                domain.StatusForBalance(balance),
		})
	}

	return results, nil
}

// RunForPeriod aggregates the condominium's charges over [periodStart,
// periodEnd], derives the number of advance months from the calendar span,
// and computes the settlement for every unit.
func (s *SettlementService) RunForPeriod(condominiumID int32, periodStart, periodEnd time.Time) (*SettlementRun, error) {
	totals, err := s.aggregationService.AggregateCharges(condominiumID, periodStart, periodEnd)
	if err != nil {
		metrics.SettlementRunErrors.Inc()
		return nil, err
	}

	months := util.MonthsBetween(periodStart, periodEnd)

	units, err := s.unitRepo.GetAllByCondominium(condominiumID)
	if err != nil {
		metrics.SettlementRunErrors.Inc()
		return nil, err
	}

	results, err := s.ComputeSettlements(units, totals, months)
	if err != nil {
		metrics.SettlementRunErrors.Inc()
		return nil, err
	}

	metrics.SettlementRuns.Inc()

	run := &SettlementRun{
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
		MonthsInPeriod: months,
		Totals:         totals,
		Results:        results,
	}

	s.publishEvent(condominiumID, websocket.SettlementComputed(run.Results))

	return run, nil
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *SettlementService) publishEvent(condominiumID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(condominiumID, event)
	}
}

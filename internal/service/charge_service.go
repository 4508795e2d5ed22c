package service

import (
	"time"

	"github.com/coprogest/coprogest-backend/internal/domain"
	"github.com/coprogest/coprogest-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// ChargeService handles charge record business logic
type ChargeService struct {
	chargeRepo     domain.ChargeRepository
	eventPublisher websocket.EventPublisher
}

// NewChargeService creates a new ChargeService
func NewChargeService(chargeRepo domain.ChargeRepository) *ChargeService {
	return &ChargeService{chargeRepo: chargeRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ChargeService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// ChargeInput carries the writable attributes of a charge record
type ChargeInput struct {
	Category       domain.ChargeCategory
	Amount         decimal.Decimal
	BillingDate    time.Time
	PeriodStart    *time.Time
	PeriodEnd      *time.Time
	WaterUnitPrice *decimal.Decimal
	Description    *string
}

func validateChargeInput(input ChargeInput) error {
	if !domain.ValidCategories[input.Category] {
		return domain.ErrInvalidCategory
	}
	if input.Amount.IsNegative() {
		return domain.ErrNegativeAmount
	}
	if input.BillingDate.IsZero() {
		return domain.ErrBillingDateRequired
	}

	// The service period is what the settlement overlap query selects on, so
	// every settlement category must carry one. "other" may omit it.
	if input.Category != domain.ChargeCategoryOther {
		if input.PeriodStart == nil || input.PeriodEnd == nil {
			return domain.ErrPeriodRequired
		}
	}
	if input.PeriodStart != nil && input.PeriodEnd != nil && input.PeriodEnd.Before(*input.PeriodStart) {
		return domain.ErrInvalidPeriod
	}

	if input.Category == domain.ChargeCategoryWater {
		if input.WaterUnitPrice == nil || !input.WaterUnitPrice.IsPositive() {
			return domain.ErrWaterPriceRequired
		}
	}

	return nil
}

func chargeFromInput(condominiumID int32, input ChargeInput) *domain.Charge {
	charge := &domain.Charge{
		CondominiumID: condominiumID,
		Category:      input.Category,
		Amount:        input.Amount,
		BillingDate:   input.BillingDate,
		PeriodStart:   input.PeriodStart,
		PeriodEnd:     input.PeriodEnd,
		Description:   input.Description,
	}
	// The unit price is meaningless outside the water category; drop it
	// rather than persisting a stray value.
	if input.Category == domain.ChargeCategoryWater {
		charge.WaterUnitPrice = input.WaterUnitPrice
	}
	return charge
}

// CreateCharge creates a new charge record
func (s *ChargeService) CreateCharge(condominiumID int32, input ChargeInput) (*domain.Charge, error) {
	if err := validateChargeInput(input); err != nil {
		return nil, err
	}

	charge, err := s.chargeRepo.Create(chargeFromInput(condominiumID, input))
	if err != nil {
		return nil, err
	}

	s.publishEvent(condominiumID, websocket.ChargeCreated(charge))
	return charge, nil
}

// GetCharge retrieves a single charge
func (s *ChargeService) GetCharge(condominiumID, id int32) (*domain.Charge, error) {
	return s.chargeRepo.GetByID(condominiumID, id)
}

// GetCharges retrieves charges of the condominium; when both period bounds
// are set only charges whose service period overlaps the range are returned
func (s *ChargeService) GetCharges(condominiumID int32, periodStart, periodEnd *time.Time) ([]*domain.Charge, error) {
	if periodStart != nil && periodEnd != nil {
		if periodEnd.Before(*periodStart) {
			return nil, domain.ErrInvalidPeriod
		}
		return s.chargeRepo.GetByPeriod(condominiumID, *periodStart, *periodEnd)
	}
	return s.chargeRepo.GetAllByCondominium(condominiumID)
}

// UpdateCharge updates a charge record. Charges remain editable even after
// statements were generated; archived statements keep their own snapshot.
func (s *ChargeService) UpdateCharge(condominiumID, id int32, input ChargeInput) (*domain.Charge, error) {
	if err := validateChargeInput(input); err != nil {
		return nil, err
	}

	existing, err := s.chargeRepo.GetByID(condominiumID, id)
	if err != nil {
		return nil, err
	}

	updated := chargeFromInput(condominiumID, input)
	updated.ID = existing.ID
	updated.InvoicePath = existing.InvoicePath

	charge, err := s.chargeRepo.Update(updated)
	if err != nil {
		return nil, err
	}

	s.publishEvent(condominiumID, websocket.ChargeUpdated(charge))
	return charge, nil
}

// DeleteCharge permanently removes a charge record
func (s *ChargeService) DeleteCharge(condominiumID, id int32) error {
	if _, err := s.chargeRepo.GetByID(condominiumID, id); err != nil {
		return err
	}
	if err := s.chargeRepo.Delete(condominiumID, id); err != nil {
		return err
	}

	s.publishEvent(condominiumID, websocket.ChargeDeleted(map[string]int32{"id": id}))
	return nil
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *ChargeService) publishEvent(condominiumID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(condominiumID, event)
	}
}

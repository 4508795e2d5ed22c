package service

import (
	"github.com/coprogest/coprogest-backend/internal/domain"
	"github.com/coprogest/coprogest-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// UnitService handles unit (logement) business logic
type UnitService struct {
	unitRepo       domain.UnitRepository
	eventPublisher websocket.EventPublisher
}

// NewUnitService creates a new UnitService
func NewUnitService(unitRepo domain.UnitRepository) *UnitService {
	return &UnitService{unitRepo: unitRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *UnitService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// UnitInput carries the writable attributes of a unit
type UnitInput struct {
	Label           string
	OwnershipShare  decimal.Decimal
	MonthlyAdvance  decimal.Decimal
	WaterMeterStart decimal.Decimal
	WaterMeterEnd   decimal.Decimal
}

func validateUnitInput(input UnitInput) error {
	if input.Label == "" {
		return domain.ErrLabelRequired
	}
	if len(input.Label) > domain.MaxUnitLabelLength {
		return domain.ErrLabelTooLong
	}
	if input.OwnershipShare.IsNegative() {
		return domain.ErrNegativeShare
	}
	if input.MonthlyAdvance.IsNegative() {
		return domain.ErrNegativeAdvance
	}
	if input.WaterMeterStart.IsNegative() || input.WaterMeterEnd.IsNegative() {
		return domain.ErrNegativeReading
	}
	// Rejected at write time so settlement runs never see reversed readings.
	if input.WaterMeterEnd.LessThan(input.WaterMeterStart) {
		return domain.ErrInvalidMeterReading
	}
	return nil
}

// CreateUnit creates a new unit in the condominium
func (s *UnitService) CreateUnit(condominiumID int32, input UnitInput) (*domain.Unit, error) {
	if err := validateUnitInput(input); err != nil {
		return nil, err
	}

	unit, err := s.unitRepo.Create(&domain.Unit{
		CondominiumID:   condominiumID,
		Label:           input.Label,
		OwnershipShare:  input.OwnershipShare,
		MonthlyAdvance:  input.MonthlyAdvance,
		WaterMeterStart: input.WaterMeterStart,
		WaterMeterEnd:   input.WaterMeterEnd,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(condominiumID, websocket.UnitCreated(unit))
	return unit, nil
}

// GetUnit retrieves a single unit
func (s *UnitService) GetUnit(condominiumID, id int32) (*domain.Unit, error) {
	return s.unitRepo.GetByID(condominiumID, id)
}

// GetUnits retrieves all units of the condominium ordered by label
func (s *UnitService) GetUnits(condominiumID int32) ([]*domain.Unit, error) {
	return s.unitRepo.GetAllByCondominium(condominiumID)
}

// UpdateUnit updates a unit's attributes
func (s *UnitService) UpdateUnit(condominiumID, id int32, input UnitInput) (*domain.Unit, error) {
	if err := validateUnitInput(input); err != nil {
		return nil, err
	}

	existing, err := s.unitRepo.GetByID(condominiumID, id)
	if err != nil {
		return nil, err
	}

	existing.Label = input.Label
	existing.OwnershipShare = input.OwnershipShare
	existing.MonthlyAdvance = input.MonthlyAdvance
	existing.WaterMeterStart = input.WaterMeterStart
	existing.WaterMeterEnd = input.WaterMeterEnd

	unit, err := s.unitRepo.Update(existing)
	if err != nil {
		return nil, err
	}

	s.publishEvent(condominiumID, websocket.UnitUpdated(unit))
	return unit, nil
}

// DeleteUnit soft-deletes a unit
func (s *UnitService) DeleteUnit(condominiumID, id int32) error {
	if _, err := s.unitRepo.GetByID(condominiumID, id); err != nil {
		return err
	}
	if err := s.unitRepo.SoftDelete(condominiumID, id); err != nil {
		return err
	}

	s.publishEvent(condominiumID, websocket.UnitDeleted(map[string]int32{"id": id}))
	return nil
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *UnitService) publishEvent(condominiumID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(condominiumID, event)
	}
}

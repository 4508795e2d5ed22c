package service

import "github.com/coprogest/coprogest-backend/internal/domain"

// CondominiumService handles condominium business logic
type CondominiumService struct {
	condominiumRepo domain.CondominiumRepository
}

// NewCondominiumService creates a new CondominiumService
func NewCondominiumService(condominiumRepo domain.CondominiumRepository) *CondominiumService {
	return &CondominiumService{condominiumRepo: condominiumRepo}
}

// GetCondominium retrieves a condominium by id
func (s *CondominiumService) GetCondominium(id int32) (*domain.Condominium, error) {
	return s.condominiumRepo.GetByID(id)
}

// UpdateCondominium updates the condominium's name and address
func (s *CondominiumService) UpdateCondominium(id int32, name, address string) (*domain.Condominium, error) {
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxCondominiumNameLength {
		return nil, domain.ErrNameTooLong
	}
	return s.condominiumRepo.Update(id, name, address)
}

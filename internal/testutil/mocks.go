package testutil

import (
	"time"

	"github.com/coprogest/coprogest-backend/internal/domain"
	"github.com/google/uuid"
)

// MockCondominiumRepository is a mock implementation of domain.CondominiumRepository
type MockCondominiumRepository struct {
	Condominiums map[int32]*domain.Condominium
	NextID       int32
	GetByIDFn    func(id int32) (*domain.Condominium, error)
}

// NewMockCondominiumRepository creates a new MockCondominiumRepository
func NewMockCondominiumRepository() *MockCondominiumRepository {
	return &MockCondominiumRepository{
		Condominiums: make(map[int32]*domain.Condominium),
		NextID:       1,
	}
}

// Create creates a new condominium
func (m *MockCondominiumRepository) Create(condominium *domain.Condominium) (*domain.Condominium, error) {
	condominium.ID = m.NextID
	m.NextID++
	m.Condominiums[condominium.ID] = condominium
	return condominium, nil
}

// GetByID retrieves a condominium by ID
func (m *MockCondominiumRepository) GetByID(id int32) (*domain.Condominium, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(id)
	}
	condominium, ok := m.Condominiums[id]
	if !ok || condominium.DeletedAt != nil {
		return nil, domain.ErrCondominiumNotFound
	}
	return condominium, nil
}

// Update updates a condominium's name and address
func (m *MockCondominiumRepository) Update(id int32, name, address string) (*domain.Condominium, error) {
	condominium, ok := m.Condominiums[id]
	if !ok || condominium.DeletedAt != nil {
		return nil, domain.ErrCondominiumNotFound
	}
	condominium.Name = name
	condominium.Address = address
	return condominium, nil
}

// SoftDelete marks a condominium as deleted
func (m *MockCondominiumRepository) SoftDelete(id int32) error {
	condominium, ok := m.Condominiums[id]
	if !ok || condominium.DeletedAt != nil {
		return domain.ErrCondominiumNotFound
	}
	now := time.Now()
	condominium.DeletedAt = &now
	return nil
}

// AddCondominium adds a condominium to the mock repository (helper for tests)
func (m *MockCondominiumRepository) AddCondominium(condominium *domain.Condominium) {
	m.Condominiums[condominium.ID] = condominium
	if condominium.ID >= m.NextID {
		m.NextID = condominium.ID + 1
	}
}

// MockUnitRepository is a mock implementation of domain.UnitRepository
type MockUnitRepository struct {
	Units         map[int32]*domain.Unit
	ByCondominium map[int32][]*domain.Unit
	NextID        int32
	CreateFn      func(unit *domain.Unit) (*domain.Unit, error)
	GetByIDFn     func(condominiumID, id int32) (*domain.Unit, error)
	GetAllFn      func(condominiumID int32) ([]*domain.Unit, error)
	UpdateFn      func(unit *domain.Unit) (*domain.Unit, error)
	SoftDeleteFn  func(condominiumID, id int32) error
}

// NewMockUnitRepository creates a new MockUnitRepository
func NewMockUnitRepository() *MockUnitRepository {
	return &MockUnitRepository{
		Units:         make(map[int32]*domain.Unit),
		ByCondominium: make(map[int32][]*domain.Unit),
		NextID:        1,
	}
}

// Create creates a new unit
func (m *MockUnitRepository) Create(unit *domain.Unit) (*domain.Unit, error) {
	if m.CreateFn != nil {
		return m.CreateFn(unit)
	}
	unit.ID = m.NextID
	m.NextID++
	m.Units[unit.ID] = unit
	m.ByCondominium[unit.CondominiumID] = append(m.ByCondominium[unit.CondominiumID], unit)
	return unit, nil
}

// GetByID retrieves a unit by its ID within a condominium
func (m *MockUnitRepository) GetByID(condominiumID, id int32) (*domain.Unit, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(condominiumID, id)
	}
	unit, ok := m.Units[id]
	if !ok || unit.CondominiumID != condominiumID || unit.DeletedAt != nil {
		return nil, domain.ErrUnitNotFound
	}
	return unit, nil
}

// GetAllByCondominium retrieves all active units of a condominium
func (m *MockUnitRepository) GetAllByCondominium(condominiumID int32) ([]*domain.Unit, error) {
	if m.GetAllFn != nil {
		return m.GetAllFn(condominiumID)
	}
	var active []*domain.Unit
	for _, unit := range m.ByCondominium[condominiumID] {
		if unit.DeletedAt == nil {
			active = append(active, unit)
		}
	}
	if active == nil {
		return []*domain.Unit{}, nil
	}
	return active, nil
}

// Update updates a unit
func (m *MockUnitRepository) Update(unit *domain.Unit) (*domain.Unit, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(unit)
	}
	existing, ok := m.Units[unit.ID]
	if !ok || existing.CondominiumID != unit.CondominiumID || existing.DeletedAt != nil {
		return nil, domain.ErrUnitNotFound
	}
	existing.Label = unit.Label
	existing.OwnershipShare = unit.OwnershipShare
	existing.MonthlyAdvance = unit.MonthlyAdvance
	existing.WaterMeterStart = unit.WaterMeterStart
	existing.WaterMeterEnd = unit.WaterMeterEnd
	return existing, nil
}

// SoftDelete marks a unit as deleted
func (m *MockUnitRepository) SoftDelete(condominiumID, id int32) error {
	if m.SoftDeleteFn != nil {
		return m.SoftDeleteFn(condominiumID, id)
	}
	unit, ok := m.Units[id]
	if !ok || unit.CondominiumID != condominiumID || unit.DeletedAt != nil {
		return domain.ErrUnitNotFound
	}
	now := time.Now()
	unit.DeletedAt = &now
	return nil
}

// AddUnit adds a unit to the mock repository (helper for tests)
func (m *MockUnitRepository) AddUnit(unit *domain.Unit) {
	m.Units[unit.ID] = unit
	m.ByCondominium[unit.CondominiumID] = append(m.ByCondominium[unit.CondominiumID], unit)
	if unit.ID >= m.NextID {
		m.NextID = unit.ID + 1
	}
}

// MockChargeRepository is a mock implementation of domain.ChargeRepository
type MockChargeRepository struct {
	Charges       map[int32]*domain.Charge
	ByCondominium map[int32][]*domain.Charge
	NextID        int32
	CreateFn      func(charge *domain.Charge) (*domain.Charge, error)
	GetByIDFn     func(condominiumID, id int32) (*domain.Charge, error)
	GetByPeriodFn func(condominiumID int32, periodStart, periodEnd time.Time) ([]*domain.Charge, error)
	UpdateFn      func(charge *domain.Charge) (*domain.Charge, error)
	DeleteFn      func(condominiumID, id int32) error
}

// NewMockChargeRepository creates a new MockChargeRepository
func NewMockChargeRepository() *MockChargeRepository {
	return &MockChargeRepository{
		Charges:       make(map[int32]*domain.Charge),
		ByCondominium: make(map[int32][]*domain.Charge),
		NextID:        1,
	}
}

// Create creates a new charge
func (m *MockChargeRepository) Create(charge *domain.Charge) (*domain.Charge, error) {
	if m.CreateFn != nil {
		return m.CreateFn(charge)
	}
	charge.ID = m.NextID
	m.NextID++
	m.Charges[charge.ID] = charge
	m.ByCondominium[charge.CondominiumID] = append(m.ByCondominium[charge.CondominiumID], charge)
	return charge, nil
}

// GetByID retrieves a charge by its ID within a condominium
func (m *MockChargeRepository) GetByID(condominiumID, id int32) (*domain.Charge, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(condominiumID, id)
	}
	charge, ok := m.Charges[id]
	if !ok || charge.CondominiumID != condominiumID {
		return nil, domain.ErrChargeNotFound
	}
	return charge, nil
}

// GetAllByCondominium retrieves all charges of a condominium
func (m *MockChargeRepository) GetAllByCondominium(condominiumID int32) ([]*domain.Charge, error) {
	charges := m.ByCondominium[condominiumID]
	if charges == nil {
		return []*domain.Charge{}, nil
	}
	return charges, nil
}

// GetByPeriod retrieves charges whose billing period overlaps the given range
func (m *MockChargeRepository) GetByPeriod(condominiumID int32, periodStart, periodEnd time.Time) ([]*domain.Charge, error) {
	if m.GetByPeriodFn != nil {
		return m.GetByPeriodFn(condominiumID, periodStart, periodEnd)
	}
	var matched []*domain.Charge
	for _, charge := range m.ByCondominium[condominiumID] {
		if charge.PeriodStart == nil || charge.PeriodEnd == nil {
			continue
		}
		if !charge.PeriodStart.After(periodEnd) && !charge.PeriodEnd.Before(periodStart) {
			matched = append(matched, charge)
		}
	}
	if matched == nil {
		return []*domain.Charge{}, nil
	}
	return matched, nil
}

// Update updates a charge
func (m *MockChargeRepository) Update(charge *domain.Charge) (*domain.Charge, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(charge)
	}
	existing, ok := m.Charges[charge.ID]
	if !ok || existing.CondominiumID != charge.CondominiumID {
		return nil, domain.ErrChargeNotFound
	}
	existing.Category = charge.Category
	existing.Amount = charge.Amount
	existing.BillingDate = charge.BillingDate
	existing.PeriodStart = charge.PeriodStart
	existing.PeriodEnd = charge.PeriodEnd
	existing.WaterUnitPrice = charge.WaterUnitPrice
	existing.Description = charge.Description
	return existing, nil
}

// Delete permanently removes a charge
func (m *MockChargeRepository) Delete(condominiumID, id int32) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(condominiumID, id)
	}
	charge, ok := m.Charges[id]
	if !ok || charge.CondominiumID != condominiumID {
		return domain.ErrChargeNotFound
	}
	delete(m.Charges, id)
	charges := m.ByCondominium[condominiumID]
	for i, c := range charges {
		if c.ID == id {
			m.ByCondominium[condominiumID] = append(charges[:i], charges[i+1:]...)
			break
		}
	}
	return nil
}

// SetInvoicePath updates the invoice scan path of a charge
func (m *MockChargeRepository) SetInvoicePath(condominiumID, id int32, path *string) error {
	charge, ok := m.Charges[id]
	if !ok || charge.CondominiumID != condominiumID {
		return domain.ErrChargeNotFound
	}
	charge.InvoicePath = path
	return nil
}

// AddCharge adds a charge to the mock repository (helper for tests)
func (m *MockChargeRepository) AddCharge(charge *domain.Charge) {
	m.Charges[charge.ID] = charge
	m.ByCondominium[charge.CondominiumID] = append(m.ByCondominium[charge.CondominiumID], charge)
	if charge.ID >= m.NextID {
		m.NextID = charge.ID + 1
	}
}

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users    map[string]*domain.User
	ByID     map[uuid.UUID]*domain.User
	CreateFn func(user *domain.User) (*domain.User, error)
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*domain.User),
		ByID:  make(map[uuid.UUID]*domain.User),
	}
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByAuth0ID retrieves a user by Auth0 ID
func (m *MockUserRepository) GetByAuth0ID(auth0ID string) (*domain.User, error) {
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// Create creates a new user
func (m *MockUserRepository) Create(user *domain.User) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(user)
	}
	user.ID = uuid.New()
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
	return user, nil
}

// UpdateName updates only the user's name by Auth0 ID
func (m *MockUserRepository) UpdateName(auth0ID string, name string) (*domain.User, error) {
	user, ok := m.Users[auth0ID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user.Name = &name
	return user, nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
}

// MockStatementRepository is a mock implementation of domain.StatementRepository
type MockStatementRepository struct {
	Statements    map[int32]*domain.Statement
	ByCondominium map[int32][]*domain.Statement
	NextID        int32
	CreateFn      func(statement *domain.Statement) (*domain.Statement, error)
}

// NewMockStatementRepository creates a new MockStatementRepository
func NewMockStatementRepository() *MockStatementRepository {
	return &MockStatementRepository{
		Statements:    make(map[int32]*domain.Statement),
		ByCondominium: make(map[int32][]*domain.Statement),
		NextID:        1,
	}
}

// Create records a generated statement
func (m *MockStatementRepository) Create(statement *domain.Statement) (*domain.Statement, error) {
	if m.CreateFn != nil {
		return m.CreateFn(statement)
	}
	statement.ID = m.NextID
	m.NextID++
	m.Statements[statement.ID] = statement
	m.ByCondominium[statement.CondominiumID] = append(m.ByCondominium[statement.CondominiumID], statement)
	return statement, nil
}

// GetByID retrieves a statement by its ID within a condominium
func (m *MockStatementRepository) GetByID(condominiumID, id int32) (*domain.Statement, error) {
	statement, ok := m.Statements[id]
	if !ok || statement.CondominiumID != condominiumID {
		return nil, domain.ErrStatementNotFound
	}
	return statement, nil
}

// GetAllByCondominium retrieves all statements of a condominium
func (m *MockStatementRepository) GetAllByCondominium(condominiumID int32) ([]*domain.Statement, error) {
	statements := m.ByCondominium[condominiumID]
	if statements == nil {
		return []*domain.Statement{}, nil
	}
	return statements, nil
}

// AddStatement adds a statement to the mock repository (helper for tests)
func (m *MockStatementRepository) AddStatement(statement *domain.Statement) {
	m.Statements[statement.ID] = statement
	m.ByCondominium[statement.CondominiumID] = append(m.ByCondominium[statement.CondominiumID], statement)
	if statement.ID >= m.NextID {
		m.NextID = statement.ID + 1
	}
}

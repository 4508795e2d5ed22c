package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unit is a billable lot (logement) of a condominium.
// OwnershipShare is the tantième, expressed out of 100 (20.1 means 20.1%).
// WaterMeterStart/WaterMeterEnd bound the consumption of the current billing
// period; a valid record always has end >= start.
type Unit struct {
	ID              int32           `json:"id"`
	CondominiumID   int32           `json:"condominiumId"`
	Label           string          `json:"label"`
	OwnershipShare  decimal.Decimal `json:"ownershipShare"`
	MonthlyAdvance  decimal.Decimal `json:"monthlyAdvance"`
	WaterMeterStart decimal.Decimal `json:"waterMeterStart"`
	WaterMeterEnd   decimal.Decimal `json:"waterMeterEnd"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	DeletedAt       *time.Time      `json:"deletedAt,omitempty"`
}

type UnitRepository interface {
	Create(unit *Unit) (*Unit, error)
	GetByID(condominiumID, id int32) (*Unit, error)
	GetAllByCondominium(condominiumID int32) ([]*Unit, error)
	Update(unit *Unit) (*Unit, error)
	SoftDelete(condominiumID, id int32) error
}

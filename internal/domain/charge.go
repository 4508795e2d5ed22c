package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ChargeCategory string

const (
	ChargeCategoryWater     ChargeCategory = "water"
	ChargeCategoryInsurance ChargeCategory = "insurance"
	ChargeCategoryBank      ChargeCategory = "bank"
	ChargeCategoryOther     ChargeCategory = "other"
)

// ValidCategories is the closed set of charge categories
var ValidCategories = map[ChargeCategory]bool{
	ChargeCategoryWater:     true,
	ChargeCategoryInsurance: true,
	ChargeCategoryBank:      true,
	ChargeCategoryOther:     true,
}

// Charge is one billed expense of a condominium.
// PeriodStart/PeriodEnd delimit the service period the charge covers; they are
// required for water/insurance/bank charges and optional for "other".
// WaterUnitPrice is the €-per-unit consumption price and is set (positive)
// exactly when Category is water.
type Charge struct {
	ID             int32            `json:"id"`
	CondominiumID  int32            `json:"condominiumId"`
	Category       ChargeCategory   `json:"category"`
	Amount         decimal.Decimal  `json:"amount"`
	BillingDate    time.Time        `json:"billingDate"`
	PeriodStart    *time.Time       `json:"periodStart,omitempty"`
	PeriodEnd      *time.Time       `json:"periodEnd,omitempty"`
	WaterUnitPrice *decimal.Decimal `json:"waterUnitPrice,omitempty"`
	Description    *string          `json:"description,omitempty"`
	InvoicePath    *string          `json:"invoicePath,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

type ChargeRepository interface {
	Create(charge *Charge) (*Charge, error)
	GetByID(condominiumID, id int32) (*Charge, error)
	GetAllByCondominium(condominiumID int32) ([]*Charge, error)
	// GetByPeriod returns the charges whose service period overlaps
	// [periodStart, periodEnd]. Charges without a period never match.
	GetByPeriod(condominiumID int32, periodStart, periodEnd time.Time) ([]*Charge, error)
	Update(charge *Charge) (*Charge, error)
	Delete(condominiumID, id int32) error
	SetInvoicePath(condominiumID, id int32, path *string) error
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Statement is an archived settlement run: the rendered document lives in
// object storage under ObjectPath, this row keeps the period and totals
// snapshot so past runs stay reproducible even after charges change.
type Statement struct {
	ID             int32           `json:"id"`
	CondominiumID  int32           `json:"condominiumId"`
	PeriodStart    time.Time       `json:"periodStart"`
	PeriodEnd      time.Time       `json:"periodEnd"`
	MonthsInPeriod int             `json:"monthsInPeriod"`
	TotalWaterBill decimal.Decimal `json:"totalWaterBill"`
	TotalInsurance decimal.Decimal `json:"totalInsurance"`
	TotalBankFees  decimal.Decimal `json:"totalBankFees"`
	UnitCount      int             `json:"unitCount"`
	ObjectPath     string          `json:"objectPath"`
	GeneratedAt    time.Time       `json:"generatedAt"`
	CreatedAt      time.Time       `json:"createdAt"`
}

type StatementRepository interface {
	Create(statement *Statement) (*Statement, error)
	GetByID(condominiumID, id int32) (*Statement, error)
	GetAllByCondominium(condominiumID int32) ([]*Statement, error)
}

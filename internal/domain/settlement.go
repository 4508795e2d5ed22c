package domain

import "github.com/shopspring/decimal"

// AggregateTotals holds the per-category charge totals for a billing period,
// shared across all units of a settlement run. WaterUnitPrice is the unit
// price of the most recently billed water charge in the period.
type AggregateTotals struct {
	TotalWaterBill decimal.Decimal `json:"totalWaterBill"`
	WaterUnitPrice decimal.Decimal `json:"waterUnitPrice"`
	TotalInsurance decimal.Decimal `json:"totalInsurance"`
	TotalBankFees  decimal.Decimal `json:"totalBankFees"`
}

type SettlementStatus string

const (
	// SettlementStatusToPay means the unit owes money (negative balance)
	SettlementStatusToPay SettlementStatus = "to_pay"
	// SettlementStatusToReimburse means the unit overpaid (positive balance)
	SettlementStatusToReimburse SettlementStatus = "to_reimburse"
	// SettlementStatusBalanced means advances exactly cover the charges
	SettlementStatusBalanced SettlementStatus = "balanced"
)

// StatusForBalance derives the tri-state settlement status from the sign of
// the final balance.
func StatusForBalance(balance decimal.Decimal) SettlementStatus {
	switch balance.Sign() {
	case -1:
		return SettlementStatusToPay
	case 1:
		return SettlementStatusToReimburse
	default:
		return SettlementStatusBalanced
	}
}

// SettlementResult is the reconciled balance of one unit for a billing
// period. It is a computed projection, never persisted as a unit of truth:
// it carries the unit's static attributes and the shared totals as of
// computation time so a rendered statement is auditable.
type SettlementResult struct {
	UnitID          int32           `json:"unitId"`
	UnitLabel       string          `json:"unitLabel"`
	OwnershipShare  decimal.Decimal `json:"ownershipShare"`
	MonthlyAdvance  decimal.Decimal `json:"monthlyAdvance"`
	WaterMeterStart decimal.Decimal `json:"waterMeterStart"`
	WaterMeterEnd   decimal.Decimal `json:"waterMeterEnd"`

	MonthsInPeriod int             `json:"monthsInPeriod"`
	TotalWaterBill decimal.Decimal `json:"totalWaterBill"`
	TotalInsurance decimal.Decimal `json:"totalInsurance"`
	TotalBankFees  decimal.Decimal `json:"totalBankFees"`
	WaterUnitPrice decimal.Decimal `json:"waterUnitPrice"`

	AdvanceContribution   decimal.Decimal  `json:"advanceContribution"`
	WaterConsumptionShare decimal.Decimal  `json:"waterConsumptionShare"`
	InsuranceShare        decimal.Decimal  `json:"insuranceShare"`
	BankFeesShare         decimal.Decimal  `json:"bankFeesShare"`
	TotalCharges          decimal.Decimal  `json:"totalCharges"`
	FinalBalance          decimal.Decimal  `json:"finalBalance"`
	Status                SettlementStatus `json:"status"`
}

package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/coprogest/coprogest-backend/internal/domain"
	"github.com/coprogest/coprogest-backend/internal/middleware"
	"github.com/coprogest/coprogest-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// SettlementHandler handles settlement computation HTTP requests
type SettlementHandler struct {
	settlementService *service.SettlementService
	statementService  *service.StatementService
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(settlementService *service.SettlementService, statementService *service.StatementService) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
		statementService:  statementService,
	}
}

// SettlementResultResponse represents one unit's settlement in API responses.
// All amounts are rounded here, at the presentation edge.
type SettlementResultResponse struct {
	UnitID          int32  `json:"unitId"`
	UnitLabel       string `json:"unitLabel"`
	OwnershipShare  string `json:"ownershipShare"`
	MonthlyAdvance  string `json:"monthlyAdvance"`
	WaterMeterStart string `json:"waterMeterStart"`
	WaterMeterEnd   string `json:"waterMeterEnd"`

	MonthsInPeriod int    `json:"monthsInPeriod"`
	WaterUnitPrice string `json:"waterUnitPrice"`

	AdvanceContribution   string `json:"advanceContribution"`
	WaterConsumptionShare string `json:"waterConsumptionShare"`
	InsuranceShare        string `json:"insuranceShare"`
	BankFeesShare         string `json:"bankFeesShare"`
	TotalCharges          string `json:"totalCharges"`
	FinalBalance          string `json:"finalBalance"`
	Status                string `json:"status"`
}

// SettlementRunResponse represents a full settlement run in API responses
type SettlementRunResponse struct {
	PeriodStart    string                     `json:"periodStart"`
	PeriodEnd      string                     `json:"periodEnd"`
	MonthsInPeriod int                        `json:"monthsInPeriod"`
	TotalWaterBill string                     `json:"totalWaterBill"`
	WaterUnitPrice string                     `json:"waterUnitPrice"`
	TotalInsurance string                     `json:"totalInsurance"`
	TotalBankFees  string                     `json:"totalBankFees"`
	Results        []SettlementResultResponse `json:"results"`
}

func toSettlementRunResponse(run *service.SettlementRun) SettlementRunResponse {
	results := make([]SettlementResultResponse, len(run.Results))
	for i, result := range run.Results {
		results[i] = SettlementResultResponse{
			UnitID:          result.UnitID,
			UnitLabel:       result.UnitLabel,
			OwnershipShare:  result.OwnershipShare.StringFixed(2),
			MonthlyAdvance:  result.MonthlyAdvance.StringFixed(2),
			WaterMeterStart: result.WaterMeterStart.String(),
			WaterMeterEnd:   result.WaterMeterEnd.String(),

			MonthsInPeriod: result.MonthsInPeriod,
			WaterUnitPrice: result.WaterUnitPrice.String(),

			AdvanceContribution:   result.AdvanceContribution.StringFixed(2),
			WaterConsumptionShare: result.WaterConsumptionShare.StringFixed(2),
			InsuranceShare:        result.InsuranceShare.StringFixed(2),
			BankFeesShare:         result.BankFeesShare.StringFixed(2),
			TotalCharges:          result.TotalCharges.StringFixed(2),
			FinalBalance:          result.FinalBalance.StringFixed(2),
			Status:                string(result.Status),
		}
	}
	return SettlementRunResponse{
		PeriodStart:    run.PeriodStart.Format(dateLayout),
		PeriodEnd:      run.PeriodEnd.Format(dateLayout),
		MonthsInPeriod: run.MonthsInPeriod,
		TotalWaterBill: run.Totals.TotalWaterBill.StringFixed(2),
		WaterUnitPrice: run.Totals.WaterUnitPrice.String(),
		TotalInsurance: run.Totals.TotalInsurance.StringFixed(2),
		TotalBankFees:  run.Totals.TotalBankFees.StringFixed(2),
		Results:        results,
	}
}

func parsePeriodParams(c echo.Context) (time.Time, time.Time, error) {
	startRaw := c.QueryParam("startDate")
	endRaw := c.QueryParam("endDate")
	if startRaw == "" || endRaw == "" {
		return time.Time{}, time.Time{}, errors.New("startDate and endDate are required")
	}
	periodStart, err := time.Parse(dateLayout, startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("startDate must be a date in YYYY-MM-DD format")
	}
	periodEnd, err := time.Parse(dateLayout, endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("endDate must be a date in YYYY-MM-DD format")
	}
	return periodStart, periodEnd, nil
}

// GetSettlements handles GET /api/v1/settlements?startDate=...&endDate=...
func (h *SettlementHandler) GetSettlements(c echo.Context) error {
	condominiumID := middleware.GetCondominiumID(c)
	if condominiumID == 0 {
		return NewUnauthorizedError(c, "Condominium required")
	}

	periodStart, periodEnd, err := parsePeriodParams(c)
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}

	run, err := h.settlementService.RunForPeriod(condominiumID, periodStart, periodEnd)
	if err != nil {
		return h.settlementErrorResponse(c, condominiumID, err)
	}

	return c.JSON(http.StatusOK, toSettlementRunResponse(run))
}

// ExportSettlements handles GET /api/v1/settlements/export?startDate=...&endDate=...&format=pdf|xlsx
func (h *SettlementHandler) ExportSettlements(c echo.Context) error {
	condominiumID := middleware.GetCondominiumID(c)
	if condominiumID == 0 {
		return NewUnauthorizedError(c, "Condominium required")
	}

	periodStart, periodEnd, err := parsePeriodParams(c)
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}

	format := c.QueryParam("format")
	if format == "" {
		format = "pdf"
	}

	doc, err := h.statementService.Export(condominiumID, periodStart, periodEnd, format)
	if err != nil {
		if errors.Is(err, service.ErrUnknownExportFormat) {
			return NewValidationError(c, "format must be pdf or xlsx", nil)
		}
		return h.settlementErrorResponse(c, condominiumID, err)
	}

	c.Response().Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	return c.Blob(http.StatusOK, doc.ContentType, doc.Data)
}

// settlementErrorResponse maps settlement run failures to problem responses
func (h *SettlementHandler) settlementErrorResponse(c echo.Context, condominiumID int32, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidPeriod):
		return NewValidationError(c, "endDate must not precede startDate", nil)
	case errors.Is(err, domain.ErrCondominiumNotFound):
		return NewNotFoundError(c, "Condominium not found")
	case errors.Is(err, domain.ErrInvalidMeterReading):
		// Stored unit data violates the meter invariant; the run is refused
		// rather than issuing a statement with a nonsense row.
		return NewUnprocessableError(c, err.Error())
	case errors.Is(err, domain.ErrInvalidMonths):
		return NewValidationError(c, "Period must span at least one month", nil)
	}
	log.Error().Err(err).Int32("condominium_id", condominiumID).Msg("Settlement run failed")
	return NewInternalError(c, "Failed to compute settlements")
}

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
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ChargeHandler handles charge-related HTTP requests
type ChargeHandler struct {
	chargeService *service.ChargeService
}

// NewChargeHandler creates a new ChargeHandler
func NewChargeHandler(chargeService *service.ChargeService) *ChargeHandler {
	return &ChargeHandler{chargeService: chargeService}
}

// ChargeRequest represents the create/update charge request body.
// Dates use the YYYY-MM-DD layout; amounts are decimal strings.
type ChargeRequest struct {
	Category       string  `json:"category"`
	Amount         string  `json:"amount"`
	BillingDate    string  `json:"billingDate"`
	PeriodStart    *string `json:"periodStart,omitempty"`
	PeriodEnd      *string `json:"periodEnd,omitempty"`
	WaterUnitPrice *string `json:"waterUnitPrice,omitempty"`
	Description    *string `json:"description,omitempty"`
}

// ChargeResponse represents a charge in API responses
type ChargeResponse struct {
	ID             int32   `json:"id"`
	CondominiumID  int32   `json:"condominiumId"`
	Category       string  `json:"category"`
	Amount         string  `json:"amount"`
	BillingDate    string  `json:"billingDate"`
	PeriodStart    *string `json:"periodStart,omitempty"`
	PeriodEnd      *string `json:"periodEnd,omitempty"`
	WaterUnitPrice *string `json:"waterUnitPrice,omitempty"`
	Description    *string `json:"description,omitempty"`
	HasInvoice     bool    `json:"hasInvoice"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

func toChargeResponse(charge *domain.Charge) ChargeResponse {
	resp := ChargeResponse{
		ID:            charge.ID,
		CondominiumID: charge.CondominiumID,
		Category:      string(charge.Category),
		Amount:        charge.Amount.StringFixed(2),
		BillingDate:   charge.BillingDate.Format(dateLayout),
		Description:   charge.Description,
		HasInvoice:    charge.InvoicePath != nil,
		CreatedAt:     charge.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:     charge.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if charge.PeriodStart != nil {
		s := charge.PeriodStart.Format(dateLayout)
		resp.PeriodStart = &s
	}
	if charge.PeriodEnd != nil {
		s := charge.PeriodEnd.Format(dateLayout)
		resp.PeriodEnd = &s
	}
	if charge.WaterUnitPrice != nil {
		s := charge.WaterUnitPrice.String()
		resp.WaterUnitPrice = &s
	}
	return resp
}

func parseChargeInput(req ChargeRequest) (service.ChargeInput, []ValidationError) {
	input := service.ChargeInput{
		Category:    domain.ChargeCategory(req.Category),
		Description: req.Description,
	}
	var fieldErrors []ValidationError

	if req.Amount != "" {
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			fieldErrors = append(fieldErrors, ValidationError{Field: "amount", Message: "Must be a valid decimal number"})
		} else {
			input.Amount = amount
		}
	}

	if req.BillingDate != "" {
		billingDate, err := time.Parse(dateLayout, req.BillingDate)
		if err != nil {
			fieldErrors = append(fieldErrors, ValidationError{Field: "billingDate", Message: "Must be a date in YYYY-MM-DD format"})
		} else {
			input.BillingDate = billingDate
		}
	}

	if req.PeriodStart != nil {
		periodStart, err := time.Parse(dateLayout, *req.PeriodStart)
		if err != nil {
			fieldErrors = append(fieldErrors, ValidationError{Field: "periodStart", Message: "Must be a date in YYYY-MM-DD format"})
		} else {
			input.PeriodStart = &periodStart
		}
	}
	if req.PeriodEnd != nil {
		periodEnd, err := time.Parse(dateLayout, *req.PeriodEnd)
		if err != nil {
			fieldErrors = append(fieldErrors, ValidationError{Field: "periodEnd", Message: "Must be a date in YYYY-MM-DD format"})
		} else {
			input.PeriodEnd = &periodEnd
		}
	}

	if req.WaterUnitPrice != nil {
		price, err := decimal.NewFromString(*req.WaterUnitPrice)
		if err != nil {
			fieldErrors = append(fieldErrors, ValidationError{Field: "waterUnitPrice", Message: "Must be a valid decimal number"})
		} else {
			input.WaterUnitPrice = &price
		}
	}

	return input, fieldErrors
}

func chargeValidationResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidCategory):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "category", Message: "Category must be one of: water, insurance, bank, other"},
		})
	case errors.Is(err, domain.ErrNegativeAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amount must not be negative"},
		})
	case errors.Is(err, domain.ErrBillingDateRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "billingDate", Message: "Billing date is required"},
		})
	case errors.Is(err, domain.ErrPeriodRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "periodStart", Message: "Service period is required for this category"},
		})
	case errors.Is(err, domain.ErrInvalidPeriod):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "periodEnd", Message: "Period end must not precede period start"},
		})
	case errors.Is(err, domain.ErrWaterPriceRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "waterUnitPrice", Message: "A positive water unit price is required for water charges"},
		})
	}
	return nil
}

// CreateCharge handles POST /api/v1/charges
func (h *ChargeHandler) CreateCharge(c echo.Context) error {
	condominiumID := middleware.GetCondominiumID(c)
	if condominiumID == 0 {
		return NewUnauthorizedError(c, "Condominium required")
	}

	var req ChargeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, fieldErrors := parseChargeInput(req)
	if len(fieldErrors) > 0 {
		return NewValidationError(c, "Invalid field values", fieldErrors)
	}

	charge, err := h.chargeService.CreateCharge(condominiumID, input)
	if err != nil {
		if resp := chargeValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("condominium_id", condominiumID).Msg("Failed to create charge")
		return NewInternalError(c, "Failed to create charge")
	}

	log.Info().
		Int32("condominium_id", condominiumID).
		Int32("charge_id", charge.ID).
		Str("category", string(charge.Category)).
		Msg("Charge created")

	return c.JSON(http.StatusCreated, toChargeResponse(charge))
}

// GetCharges handles GET /api/v1/charges with optional startDate/endDate filter
func (h *ChargeHandler) GetCharges(c echo.Context) error {
	condominiumID := middleware.GetCondominiumID(c)
	if condominiumID == 0 {
		return NewUnauthorizedError(c, "Condominium required")
	}

	var periodStart, periodEnd *time.Time
	if raw := c.QueryParam("startDate"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return NewValidationError(c, "Invalid startDate", []ValidationError{
				{Field: "startDate", Message: "Must be a date in YYYY-MM-DD format"},
			})
		}
		periodStart = &parsed
	}
	if raw := c.QueryParam("endDate"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return NewValidationError(c, "Invalid endDate", []ValidationError{
				{Field: "endDate", Message: "Must be a date in YYYY-MM-DD format"},
			})
		}
		periodEnd = &parsed
	}

	charges, err := h.chargeService.GetCharges(condominiumID, periodStart, periodEnd)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPeriod) {
			return NewValidationError(c, "endDate must not precede startDate", nil)
		}
		log.Error().Err(err).Int32("condominium_id", condominiumID).Msg("Failed to get charges")
		return NewInternalError(c, "Failed to get charges")
	}

	responses := make([]ChargeResponse, len(charges))
	for i, charge := range charges {
		responses[i] = toChargeResponse(charge)
	}
	return c.JSON(http.StatusOK, responses)
}

// GetCharge handles GET /api/v1/charges/:id
func (h *ChargeHandler) GetCharge(c echo.Context) error {
	condominiumID := middleware.GetCondominiumID(c)
	if condominiumID == 0 {
		return NewUnauthorizedError(c, "Condominium required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid charge ID", nil)
	}

	charge, err := h.chargeService.GetCharge(condominiumID, id)
	if err != nil {
		if errors.Is(err, domain.ErrChargeNotFound) {
			return NewNotFoundError(c, "Charge not found")
		}
		log.Error().Err(err).Int32("condominium_id", condominiumID).Int32("charge_id", id).Msg("Failed to get charge")
		return NewInternalError(c, "Failed to get charge")
	}
	return c.JSON(http.StatusOK, toChargeResponse(charge))
}

// UpdateCharge handles PUT /api/v1/charges/:id
func (h *ChargeHandler) UpdateCharge(c echo.Context) error {
	condominiumID := middleware.GetCondominiumID(c)
	if condominiumID == 0 {
		return NewUnauthorizedError(c, "Condominium required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid charge ID", nil)
	}

	var req ChargeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, fieldErrors := parseChargeInput(req)
	if len(fieldErrors) > 0 {
		return NewValidationError(c, "Invalid field values", fieldErrors)
	}

	charge, err := h.chargeService.UpdateCharge(condominiumID, id, input)
	if err != nil {
		if resp := chargeValidationResponse(c, err); resp != nil {
			return resp
		}
		if errors.Is(err, domain.ErrChargeNotFound) {
			return NewNotFoundError(c, "Charge not found")
		}
		log.Error().Err(err).Int32("condominium_id", condominiumID).Int32("charge_id", id).Msg("Failed to update charge")
		return NewInternalError(c, "Failed to update charge")
	}

	return c.JSON(http.StatusOK, toChargeResponse(charge))
}

// DeleteCharge handles DELETE /api/v1/charges/:id
func (h *ChargeHandler) DeleteCharge(c echo.Context) error {
	condominiumID := middleware.GetCondominiumID(c)
	if condominiumID == 0 {
		return NewUnauthorizedError(c, "Condominium required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid charge ID", nil)
	}

	if err := h.chargeService.DeleteCharge(condominiumID, id); err != nil {
		if errors.Is(err, domain.ErrChargeNotFound) {
			return NewNotFoundError(c, "Charge not found")
		}
		log.Error().Err(err).Int32("condominium_id", condominiumID).Int32("charge_id", id).Msg("Failed to delete charge")
		return NewInternalError(c, "Failed to delete charge")
	}

	log.Info().Int32("condominium_id", condominiumID).Int32("charge_id", id).Msg("Charge deleted")

	return c.NoContent(http.StatusNoContent)
}

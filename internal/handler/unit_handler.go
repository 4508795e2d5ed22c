package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/coprogest/coprogest-backend/internal/domain"
	"github.com/coprogest/coprogest-backend/internal/middleware"
	"github.com/coprogest/coprogest-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// UnitHandler handles unit-related HTTP requests
type UnitHandler struct {
	unitService *service.UnitService
}

// NewUnitHandler creates a new UnitHandler
func NewUnitHandler(unitService *service.UnitService) *UnitHandler {
	return &UnitHandler{unitService: unitService}
}

// UnitRequest represents the create/update unit request body.
// Money and meter fields are decimal strings.
type UnitRequest struct {
	Label           string `json:"label"`
	OwnershipShare  string `json:"ownershipShare"`
	MonthlyAdvance  string `json:"monthlyAdvance"`
	WaterMeterStart string `json:"waterMeterStart"`
	WaterMeterEnd   string `json:"waterMeterEnd"`
}

// UnitResponse represents a unit in API responses
type UnitResponse struct {
	ID              int32  `json:"id"`
	CondominiumID   int32  `json:"condominiumId"`
	Label           string `json:"label"`
	OwnershipShare  string `json:"ownershipShare"`
	MonthlyAdvance  string `json:"monthlyAdvance"`
	WaterMeterStart string `json:"waterMeterStart"`
	WaterMeterEnd   string `json:"waterMeterEnd"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

func toUnitResponse(unit *domain.Unit) UnitResponse {
	return UnitResponse{
		ID:              unit.ID,
		CondominiumID:   unit.CondominiumID,
		Label:           unit.Label,
		OwnershipShare:  unit.OwnershipShare.StringFixed(2),
		MonthlyAdvance:  unit.MonthlyAdvance.StringFixed(2),
		WaterMeterStart: unit.WaterMeterStart.String(),
		WaterMeterEnd:   unit.WaterMeterEnd.String(),
		CreatedAt:       unit.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:       unit.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func parseUnitInput(req UnitRequest) (service.UnitInput, []ValidationError) {
	input := service.UnitInput{Label: req.Label}
	var fieldErrors []ValidationError

	fields := []struct {
		name  string
		value string
		dst   *decimal.Decimal
	}{
		{"ownershipShare", req.OwnershipShare, &input.OwnershipShare},
		{"monthlyAdvance", req.MonthlyAdvance, &input.MonthlyAdvance},
		{"waterMeterStart", req.WaterMeterStart, &input.WaterMeterStart},
		{"waterMeterEnd", req.WaterMeterEnd, &input.WaterMeterEnd},
	}
	for _, field := range fields {
		if field.value == "" {
			continue
		}
		parsed, err := decimal.NewFromString(field.value)
		if err != nil {
			fieldErrors = append(fieldErrors, ValidationError{Field: field.name, Message: "Must be a valid decimal number"})
			continue
		}
		*field.dst = parsed
	}
	return input, fieldErrors
}

func unitValidationResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrLabelRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "label", Message: "Label is required"},
		})
	case errors.Is(err, domain.ErrLabelTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "label", Message: fmt.Sprintf("Label must be %d characters or less", domain.MaxUnitLabelLength)},
		})
	case errors.Is(err, domain.ErrNegativeShare):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "ownershipShare", Message: "Ownership share must not be negative"},
		})
	case errors.Is(err, domain.ErrNegativeAdvance):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "monthlyAdvance", Message: "Monthly advance must not be negative"},
		})
	case errors.Is(err, domain.ErrNegativeReading):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "waterMeterStart", Message: "Meter readings must not be negative"},
		})
	case errors.Is(err, domain.ErrInvalidMeterReading):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "waterMeterEnd", Message: "End reading must not precede start reading"},
		})
	}
	return nil
}

// CreateUnit handles POST /api/v1/units
func (h *UnitHandler) CreateUnit(c echo.Context) error {
	condominiumID := middleware.GetCondominiumID(c)
	if condominiumID == 0 {
		return NewUnauthorizedError(c, "Condominium required")
	}

	var req UnitRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, fieldErrors := parseUnitInput(req)
	if len(fieldErrors) > 0 {
		return NewValidationError(c, "Invalid decimal values", fieldErrors)
	}

	unit, err := h.unitService.CreateUnit(condominiumID, input)
	if err != nil {
		if resp := unitValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("condominium_id", condominiumID).Msg("Failed to create unit")
		return NewInternalError(c, "Failed to create unit")
	}

	log.Info().Int32("condominium_id", condominiumID).Int32("unit_id", unit.ID).Str("label", unit.Label).Msg("Unit created")

	return c.JSON(http.StatusCreated, toUnitResponse(unit))
}

// GetUnits handles GET /api/v1/units
func (h *UnitHandler) GetUnits(c echo.Context) error {
	condominiumID := middleware.GetCondominiumID(c)
	if condominiumID == 0 {
		return NewUnauthorizedError(c, "Condominium required")
	}

	units, err := h.unitService.GetUnits(condominiumID)
	if err != nil {
		log.Error().Err(err).Int32("condominium_id", condominiumID).Msg("Failed to get units")
		return NewInternalError(c, "Failed to get units")
	}

	responses := make([]UnitResponse, len(units))
	for i, unit := range units {
		responses[i] = toUnitResponse(unit)
	}
	return c.JSON(http.StatusOK, responses)
}

// GetUnit handles GET /api/v1/units/:id
func (h *UnitHandler) GetUnit(c echo.Context) error {
	condominiumID := middleware.GetCondominiumID(c)
	if condominiumID == 0 {
		return NewUnauthorizedError(c, "Condominium required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid unit ID", nil)
	}

	unit, err := h.unitService.GetUnit(condominiumID, id)
	if err != nil {
		if errors.Is(err, domain.ErrUnitNotFound) {
			return NewNotFoundError(c, "Unit not found")
		}
		log.Error().Err(err).Int32("condominium_id", condominiumID).Int32("unit_id", id).Msg("Failed to get unit")
		return NewInternalError(c, "Failed to get unit")
	}
	return c.JSON(http.StatusOK, toUnitResponse(unit))
}

// UpdateUnit handles PUT /api/v1/units/:id
func (h *UnitHandler) UpdateUnit(c echo.Context) error {
	condominiumID := middleware.GetCondominiumID(c)
	if condominiumID == 0 {
		return NewUnauthorizedError(c, "Condominium required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid unit ID", nil)
	}

	var req UnitRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, fieldErrors := parseUnitInput(req)
	if len(fieldErrors) > 0 {
		return NewValidationError(c, "Invalid decimal values", fieldErrors)
	}

	unit, err := h.unitService.UpdateUnit(condominiumID, id, input)
	if err != nil {
		if resp := unitValidationResponse(c, err); resp != nil {
			return resp
		}
		if errors.Is(err, domain.ErrUnitNotFound) {
			return NewNotFoundError(c, "Unit not found")
		}
		log.Error().Err(err).Int32("condominium_id", condominiumID).Int32("unit_id", id).Msg("Failed to update unit")
		return NewInternalError(c, "Failed to update unit")
	}

	return c.JSON(http.StatusOK, toUnitResponse(unit))
}

// DeleteUnit handles DELETE /api/v1/units/:id
func (h *UnitHandler) DeleteUnit(c echo.Context) error {
	condominiumID := middleware.GetCondominiumID(c)
	if condominiumID == 0 {
		return NewUnauthorizedError(c, "Condominium required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid unit ID", nil)
	}

	if err := h.unitService.DeleteUnit(condominiumID, id); err != nil {
		if errors.Is(err, domain.ErrUnitNotFound) {
			return NewNotFoundError(c, "Unit not found")
		}
		log.Error().Err(err).Int32("condominium_id", condominiumID).Int32("unit_id", id).Msg("Failed to delete unit")
		return NewInternalError(c, "Failed to delete unit")
	}

	log.Info().Int32("condominium_id", condominiumID).Int32("unit_id", id).Msg("Unit deleted")

	return c.NoContent(http.StatusNoContent)
}

func parseIDParam(c echo.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id")
	}
	return int32(id), nil
}

package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/coprogest/coprogest-backend/internal/domain"
	"github.com/coprogest/coprogest-backend/internal/middleware"
	"github.com/coprogest/coprogest-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CondominiumHandler handles condominium-related HTTP requests
type CondominiumHandler struct {
	condominiumService *service.CondominiumService
}

// NewCondominiumHandler creates a new CondominiumHandler
func NewCondominiumHandler(condominiumService *service.CondominiumService) *CondominiumHandler {
	return &CondominiumHandler{condominiumService: condominiumService}
}

// CondominiumRequest represents the update condominium request body
type CondominiumRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// CondominiumResponse represents a condominium in API responses
type CondominiumResponse struct {
	ID        int32  `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toCondominiumResponse(condominium *domain.Condominium) CondominiumResponse {
	return CondominiumResponse{
		ID:        condominium.ID,
		Name:      condominium.Name,
		Address:   condominium.Address,
		CreatedAt: condominium.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: condominium.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// GetCondominium handles GET /api/v1/condominium: returns the caller's condominium
func (h *CondominiumHandler) GetCondominium(c echo.Context) error {
	condominiumID := middleware.GetCondominiumID(c)
	if condominiumID == 0 {
		return NewUnauthorizedError(c, "Condominium required")
	}

	condominium, err := h.condominiumService.GetCondominium(condominiumID)
	if err != nil {
		if errors.Is(err, domain.ErrCondominiumNotFound) {
			return NewNotFoundError(c, "Condominium not found")
		}
		log.Error().Err(err).Int32("condominium_id", condominiumID).Msg("Failed to get condominium")
		return NewInternalError(c, "Failed to get condominium")
	}
	return c.JSON(http.StatusOK, toCondominiumResponse(condominium))
}

// UpdateCondominium handles PUT /api/v1/condominium
func (h *CondominiumHandler) UpdateCondominium(c echo.Context) error {
	condominiumID := middleware.GetCondominiumID(c)
	if condominiumID == 0 {
		return NewUnauthorizedError(c, "Condominium required")
	}

	var req CondominiumRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	condominium, err := h.condominiumService.UpdateCondominium(condominiumID, req.Name, req.Address)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNameRequired):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name is required"},
			})
		case errors.Is(err, domain.ErrNameTooLong):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: fmt.Sprintf("Name must be %d characters or less", domain.MaxCondominiumNameLength)},
			})
		case errors.Is(err, domain.ErrCondominiumNotFound):
			return NewNotFoundError(c, "Condominium not found")
		}
		log.Error().Err(err).Int32("condominium_id", condominiumID).Msg("Failed to update condominium")
		return NewInternalError(c, "Failed to update condominium")
	}

	log.Info().Int32("condominium_id", condominiumID).Msg("Condominium updated")

	return c.JSON(http.StatusOK, toCondominiumResponse(condominium))
}

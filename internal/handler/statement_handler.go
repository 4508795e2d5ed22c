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

// StatementHandler handles archived statement HTTP requests
type StatementHandler struct {
	statementService *service.StatementService
}

// NewStatementHandler creates a new StatementHandler
func NewStatementHandler(statementService *service.StatementService) *StatementHandler {
	return &StatementHandler{statementService: statementService}
}

// GenerateStatementRequest represents the async generation request body
type GenerateStatementRequest struct {
	PeriodStart string `json:"periodStart"`
	PeriodEnd   string `json:"periodEnd"`
}

// StatementResponse represents an archived statement in API responses
type StatementResponse struct {
	ID             int32  `json:"id"`
	PeriodStart    string `json:"periodStart"`
	PeriodEnd      string `json:"periodEnd"`
	MonthsInPeriod int    `json:"monthsInPeriod"`
	TotalWaterBill string `json:"totalWaterBill"`
	TotalInsurance string `json:"totalInsurance"`
	TotalBankFees  string `json:"totalBankFees"`
	UnitCount      int    `json:"unitCount"`
	GeneratedAt    string `json:"generatedAt"`
}

func toStatementResponse(statement *domain.Statement) StatementResponse {
	return StatementResponse{
		ID:             statement.ID,
		PeriodStart:    statement.PeriodStart.Format(dateLayout),
		PeriodEnd:      statement.PeriodEnd.Format(dateLayout),
		MonthsInPeriod: statement.MonthsInPeriod,
		TotalWaterBill: statement.TotalWaterBill.StringFixed(2),
		TotalInsurance: statement.TotalInsurance.StringFixed(2),
		TotalBankFees:  statement.TotalBankFees.StringFixed(2),
		UnitCount:      statement.UnitCount,
		GeneratedAt:    statement.GeneratedAt.Format(time.RFC3339),
	}
}

// GenerateStatement handles POST /api/v1/statements: queues asynchronous
// generation and archiving of the statement document
func (h *StatementHandler) GenerateStatement(c echo.Context) error {
	condominiumID := middleware.GetCondominiumID(c)
	if condominiumID == 0 {
		return NewUnauthorizedError(c, "Condominium required")
	}

	var req GenerateStatementRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	periodStart, err := time.Parse(dateLayout, req.PeriodStart)
	if err != nil {
		return NewValidationError(c, "periodStart must be a date in YYYY-MM-DD format", nil)
	}
	periodEnd, err := time.Parse(dateLayout, req.PeriodEnd)
	if err != nil {
		return NewValidationError(c, "periodEnd must be a date in YYYY-MM-DD format", nil)
	}

	err = h.statementService.EnqueueGeneration(c.Request().Context(), condominiumID, periodStart, periodEnd, middleware.GetAuth0ID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStatementJobsNotConfigured):
			return NewUnavailableError(c, "Statement generation is not configured")
		case errors.Is(err, domain.ErrInvalidPeriod):
			return NewValidationError(c, "periodEnd must not precede periodStart", nil)
		case errors.Is(err, domain.ErrCondominiumNotFound):
			return NewNotFoundError(c, "Condominium not found")
		}
		log.Error().Err(err).Int32("condominium_id", condominiumID).Msg("Failed to enqueue statement generation")
		return NewInternalError(c, "Failed to enqueue statement generation")
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"status": "queued",
	})
}

// GetStatements handles GET /api/v1/statements
func (h *StatementHandler) GetStatements(c echo.Context) error {
	condominiumID := middleware.GetCondominiumID(c)
	if condominiumID == 0 {
		return NewUnauthorizedError(c, "Condominium required")
	}

	statements, err := h.statementService.GetStatements(condominiumID)
	if err != nil {
		log.Error().Err(err).Int32("condominium_id", condominiumID).Msg("Failed to get statements")
		return NewInternalError(c, "Failed to get statements")
	}

	responses := make([]StatementResponse, len(statements))
	for i, statement := range statements {
		responses[i] = toStatementResponse(statement)
	}
	return c.JSON(http.StatusOK, responses)
}

// DownloadStatement handles GET /api/v1/statements/:id/download: returns a
// short-lived presigned URL for the archived document
func (h *StatementHandler) DownloadStatement(c echo.Context) error {
	condominiumID := middleware.GetCondominiumID(c)
	if condominiumID == 0 {
		return NewUnauthorizedError(c, "Condominium required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid statement ID", nil)
	}

	url, err := h.statementService.GetDownloadURL(c.Request().Context(), condominiumID, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStatementStorageNotConfigured):
			return NewUnavailableError(c, "Statement storage is not configured")
		case errors.Is(err, domain.ErrStatementNotFound):
			return NewNotFoundError(c, "Statement not found")
		}
		log.Error().Err(err).Int32("condominium_id", condominiumID).Int32("statement_id", id).Msg("Failed to generate download URL")
		return NewInternalError(c, "Failed to generate download URL")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"url": url,
	})
}

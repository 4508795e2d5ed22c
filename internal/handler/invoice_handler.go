package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/coprogest/coprogest-backend/internal/domain"
	"github.com/coprogest/coprogest-backend/internal/middleware"
	"github.com/coprogest/coprogest-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// InvoiceHandler handles invoice scan HTTP requests on charges
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// AttachInvoice handles POST /api/v1/charges/:id/invoice with a multipart scan upload
func (h *InvoiceHandler) AttachInvoice(c echo.Context) error {
	condominiumID := middleware.GetCondominiumID(c)
	if condominiumID == 0 {
		return NewUnauthorizedError(c, "Condominium required")
	}

	if !h.invoiceService.IsEnabled() {
		return NewUnavailableError(c, "Invoice storage is not configured")
	}

	chargeID, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid charge ID", nil)
	}

	file, err := c.FormFile("invoice")
	if err != nil {
		return NewValidationError(c, "Invoice file is required", []ValidationError{
			{Field: "invoice", Message: "A multipart file named 'invoice' is required"},
		})
	}

	if file.Size > service.MaxScanSize {
		return NewValidationError(c, "Invoice scan is too large", []ValidationError{
			{Field: "invoice", Message: fmt.Sprintf("File must be %d bytes or less", service.MaxScanSize)},
		})
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded invoice scan")
		return NewInternalError(c, "Failed to read uploaded file")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, service.MaxScanSize+1))
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded invoice scan")
		return NewInternalError(c, "Failed to read uploaded file")
	}

	charge, err := h.invoiceService.AttachInvoice(c.Request().Context(), condominiumID, chargeID, data, file.Filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrScanTooLarge):
			return NewValidationError(c, "Invoice scan is too large", []ValidationError{
				{Field: "invoice", Message: fmt.Sprintf("File must be %d bytes or less", service.MaxScanSize)},
			})
		case errors.Is(err, service.ErrInvalidScanFormat):
			return NewValidationError(c, "Unsupported scan format", []ValidationError{
				{Field: "invoice", Message: "File must be a JPEG, PNG or WebP image"},
			})
		case errors.Is(err, service.ErrScanTooSmall):
			return NewValidationError(c, "Invoice scan is too small", []ValidationError{
				{Field: "invoice", Message: fmt.Sprintf("Image must be at least %dx%d pixels", service.MinScanWidth, service.MinScanHeight)},
			})
		case errors.Is(err, service.ErrInvalidScanData):
			return NewValidationError(c, "Invoice scan could not be decoded", []ValidationError{
				{Field: "invoice", Message: "File is not a valid image"},
			})
		case errors.Is(err, service.ErrInvoiceStorageNotConfigured):
			return NewUnavailableError(c, "Invoice storage is not configured")
		case errors.Is(err, domain.ErrChargeNotFound):
			return NewNotFoundError(c, "Charge not found")
		}
		log.Error().Err(err).Int32("condominium_id", condominiumID).Int32("charge_id", chargeID).Msg("Failed to attach invoice")
		return NewInternalError(c, "Failed to attach invoice")
	}

	log.Info().Int32("condominium_id", condominiumID).Int32("charge_id", chargeID).Msg("Invoice attached")

	return c.JSON(http.StatusOK, toChargeResponse(charge))
}

// DetachInvoice handles DELETE /api/v1/charges/:id/invoice
func (h *InvoiceHandler) DetachInvoice(c echo.Context) error {
	condominiumID := middleware.GetCondominiumID(c)
	if condominiumID == 0 {
		return NewUnauthorizedError(c, "Condominium required")
	}

	chargeID, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid charge ID", nil)
	}

	if err := h.invoiceService.DetachInvoice(c.Request().Context(), condominiumID, chargeID); err != nil {
		switch {
		case errors.Is(err, service.ErrInvoiceStorageNotConfigured):
			return NewUnavailableError(c, "Invoice storage is not configured")
		case errors.Is(err, domain.ErrChargeNotFound):
			return NewNotFoundError(c, "Charge not found")
		}
		log.Error().Err(err).Int32("condominium_id", condominiumID).Int32("charge_id", chargeID).Msg("Failed to detach invoice")
		return NewInternalError(c, "Failed to detach invoice")
	}

	log.Info().Int32("condominium_id", condominiumID).Int32("charge_id", chargeID).Msg("Invoice detached")

	return c.NoContent(http.StatusNoContent)
}

// GetInvoiceURL handles GET /api/v1/charges/:id/invoice?variant=thumb|display|original:
// returns a short-lived presigned URL for the requested variant
func (h *InvoiceHandler) GetInvoiceURL(c echo.Context) error {
	condominiumID := middleware.GetCondominiumID(c)
	if condominiumID == 0 {
		return NewUnauthorizedError(c, "Condominium required")
	}

	chargeID, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid charge ID", nil)
	}

	variant := c.QueryParam("variant")

	url, err := h.invoiceService.GetInvoiceURL(c.Request().Context(), condominiumID, chargeID, variant)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvoiceStorageNotConfigured):
			return NewUnavailableError(c, "Invoice storage is not configured")
		case errors.Is(err, domain.ErrChargeNotFound):
			return NewNotFoundError(c, "Charge not found")
		case errors.Is(err, domain.ErrNotFound):
			return NewNotFoundError(c, "Charge has no invoice attached")
		}
		log.Error().Err(err).Int32("condominium_id", condominiumID).Int32("charge_id", chargeID).Msg("Failed to generate invoice URL")
		return NewInternalError(c, "Failed to generate invoice URL")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"url": url,
	})
}

package handler

import (
	"github.com/coprogest/coprogest-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes. Mutating endpoints are restricted
// to the syndic role; owners get read-only access.
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, authHandler *AuthHandler, condominiumHandler *CondominiumHandler, unitHandler *UnitHandler, chargeHandler *ChargeHandler, invoiceHandler *InvoiceHandler, settlementHandler *SettlementHandler, statementHandler *StatementHandler) {
	// API version 1
	api := e.Group("/api/v1")
	api.Use(authMiddleware.Authenticate())
	if rateLimiter != nil {
		api.Use(middleware.RateLimitMiddleware(rateLimiter))
	}

	// Auth routes
	auth := api.Group("/auth")
	auth.POST("/callback", authHandler.Callback)
	auth.GET("/me", authHandler.Me)
	auth.POST("/logout", authHandler.Logout)

	// Condominium routes
	api.GET("/condominium", condominiumHandler.GetCondominium)
	api.PUT("/condominium", condominiumHandler.UpdateCondominium, middleware.RequireSyndic())

	// Unit routes
	units := api.Group("/units")
	units.POST("", unitHandler.CreateUnit, middleware.RequireSyndic())
	units.GET("", unitHandler.GetUnits)
	units.GET("/:id", unitHandler.GetUnit)
	units.PUT("/:id", unitHandler.UpdateUnit, middleware.RequireSyndic())
	units.DELETE("/:id", unitHandler.DeleteUnit, middleware.RequireSyndic())

	// Charge routes
	charges := api.Group("/charges")
	charges.POST("", chargeHandler.CreateCharge, middleware.RequireSyndic())
	charges.GET("", chargeHandler.GetCharges)
	charges.GET("/:id", chargeHandler.GetCharge)
	charges.PUT("/:id", chargeHandler.UpdateCharge, middleware.RequireSyndic())
	charges.DELETE("/:id", chargeHandler.DeleteCharge, middleware.RequireSyndic())

	// Invoice scan routes on charges
	charges.POST("/:id/invoice", invoiceHandler.AttachInvoice, middleware.RequireSyndic())
	charges.GET("/:id/invoice", invoiceHandler.GetInvoiceURL)
	charges.DELETE("/:id/invoice", invoiceHandler.DetachInvoice, middleware.RequireSyndic())

	// Settlement routes
	settlements := api.Group("/settlements")
	settlements.GET("", settlementHandler.GetSettlements)
	settlements.GET("/export", settlementHandler.ExportSettlements)

	// Archived statement routes
	statements := api.Group("/statements")
	statements.POST("", statementHandler.GenerateStatement, middleware.RequireSyndic())
	statements.GET("", statementHandler.GetStatements)
	statements.GET("/:id/download", statementHandler.DownloadStatement)
}

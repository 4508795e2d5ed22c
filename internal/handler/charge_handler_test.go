package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/coprogest/coprogest-backend/internal/domain"
	"github.com/coprogest/coprogest-backend/internal/service"
	"github.com/coprogest/coprogest-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }

func TestChargeHandler_CreateCharge_Water(t *testing.T) {
	chargeRepo := testutil.NewMockChargeRepository()
	chargeService := service.NewChargeService(chargeRepo)
	handler := NewChargeHandler(chargeService)

	reqBody := ChargeRequest{
		Category:       "water",
		Amount:         "400.00",
		BillingDate:    "2025-03-15",
		PeriodStart:    strPtr("2025-01-01"),
		PeriodEnd:      strPtr("2025-06-30"),
		WaterUnitPrice: strPtr("2.9"),
	}
	body, _ := json.Marshal(reqBody)

	c, rec := newAuthedContext(http.MethodPost, "/api/v1/charges", bytes.NewReader(body), 1, domain.RoleSyndic)

	if err := handler.CreateCharge(c); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, rec.Code)
	}

	var response ChargeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if response.Category != "water" {
		t.Errorf("expected category water, got %s", response.Category)
	}
	if response.Amount != "400.00" {
		t.Errorf("expected amount 400.00, got %s", response.Amount)
	}
	if response.WaterUnitPrice == nil || *response.WaterUnitPrice != "2.9" {
		t.Errorf("expected water unit price 2.9, got %v", response.WaterUnitPrice)
	}
	if response.HasInvoice {
		t.Error("expected no invoice on a fresh charge")
	}
}

func TestChargeHandler_CreateCharge_WaterWithoutPrice(t *testing.T) {
	chargeRepo := testutil.NewMockChargeRepository()
	chargeService := service.NewChargeService(chargeRepo)
	handler := NewChargeHandler(chargeService)

	reqBody := ChargeRequest{
		Category:    "water",
		Amount:      "400.00",
		BillingDate: "2025-03-15",
		PeriodStart: strPtr("2025-01-01"),
		PeriodEnd:   strPtr("2025-06-30"),
	}
	body, _ := json.Marshal(reqBody)

	c, rec := newAuthedContext(http.MethodPost, "/api/v1/charges", bytes.NewReader(body), 1, domain.RoleSyndic)

	if err := handler.CreateCharge(c); err != nil {
		t.Fatalf("expected nil error (error in response), got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(problem.Errors) != 1 || problem.Errors[0].Field != "waterUnitPrice" {
		t.Errorf("expected a field error on waterUnitPrice, got %+v", problem.Errors)
	}
}

func TestChargeHandler_CreateCharge_InvalidCategory(t *testing.T) {
	chargeRepo := testutil.NewMockChargeRepository()
	chargeService := service.NewChargeService(chargeRepo)
	handler := NewChargeHandler(chargeService)

	reqBody := ChargeRequest{
		Category:    "gardening",
		Amount:      "100.00",
		BillingDate: "2025-03-15",
	}
	body, _ := json.Marshal(reqBody)

	c, rec := newAuthedContext(http.MethodPost, "/api/v1/charges", bytes.NewReader(body), 1, domain.RoleSyndic)

	if err := handler.CreateCharge(c); err != nil {
		t.Fatalf("expected nil error (error in response), got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestChargeHandler_GetCharges_PeriodFilter(t *testing.T) {
	chargeRepo := testutil.NewMockChargeRepository()

	janStart := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	junEnd := time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)
	chargeRepo.AddCharge(&domain.Charge{
		ID:            1,
		CondominiumID: 1,
		Category:      domain.ChargeCategoryInsurance,
		Amount:        decimal.RequireFromString("1000"),
		BillingDate:   time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
		PeriodStart:   &janStart,
		PeriodEnd:     &junEnd,
	})
	julStart := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	decEnd := time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)
	chargeRepo.AddCharge(&domain.Charge{
		ID:            2,
		CondominiumID: 1,
		Category:      domain.ChargeCategoryInsurance,
		Amount:        decimal.RequireFromString("1000"),
		BillingDate:   time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC),
		PeriodStart:   &julStart,
		PeriodEnd:     &decEnd,
	})

	chargeService := service.NewChargeService(chargeRepo)
	handler := NewChargeHandler(chargeService)

	c, rec := newAuthedContext(http.MethodGet, "/api/v1/charges?startDate=2025-01-01&endDate=2025-06-30", nil, 1, domain.RoleOwner)

	if err := handler.GetCharges(c); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response []ChargeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(response) != 1 {
		t.Fatalf("expected 1 charge, got %d", len(response))
	}
	if response[0].ID != 1 {
		t.Errorf("expected charge 1, got %d", response[0].ID)
	}
}

func TestChargeHandler_GetCharges_BadDate(t *testing.T) {
	chargeRepo := testutil.NewMockChargeRepository()
	chargeService := service.NewChargeService(chargeRepo)
	handler := NewChargeHandler(chargeService)

	c, rec := newAuthedContext(http.MethodGet, "/api/v1/charges?startDate=01-01-2025", nil, 1, domain.RoleOwner)

	if err := handler.GetCharges(c); err != nil {
		t.Fatalf("expected nil error (error in response), got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestChargeHandler_DeleteCharge_NotFound(t *testing.T) {
	chargeRepo := testutil.NewMockChargeRepository()
	chargeService := service.NewChargeService(chargeRepo)
	handler := NewChargeHandler(chargeService)

	c, rec := newAuthedContext(http.MethodDelete, "/api/v1/charges/999", nil, 1, domain.RoleSyndic)
	c.SetParamNames("id")
	c.SetParamValues("999")

	if err := handler.DeleteCharge(c); err != nil {
		t.Fatalf("expected nil error (error in response), got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

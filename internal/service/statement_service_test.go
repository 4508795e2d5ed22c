package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/coprogest/coprogest-backend/internal/amqp"
	"github.com/coprogest/coprogest-backend/internal/domain"
	"github.com/coprogest/coprogest-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

// fakeDocumentRepository is an in-memory DocumentRepository
type fakeDocumentRepository struct {
	objects map[string][]byte
}

func newFakeDocumentRepository() *fakeDocumentRepository {
	return &fakeDocumentRepository{objects: make(map[string][]byte)}
}

func (f *fakeDocumentRepository) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	body, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	f.objects[objectPath] = body
	return objectPath, nil
}

func (f *fakeDocumentRepository) Delete(ctx context.Context, objectPath string) error {
	delete(f.objects, objectPath)
	return nil
}

func (f *fakeDocumentRepository) GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	if _, ok := f.objects[objectPath]; !ok {
		return "", errors.New("object not found")
	}
	return "https://storage.test/" + objectPath + "?signed", nil
}

// fakeJobPublisher captures published statement jobs
type fakeJobPublisher struct {
	published []*amqp.StatementJobMessage
	err       error
}

func (f *fakeJobPublisher) PublishStatementJob(ctx context.Context, msg *amqp.StatementJobMessage) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

func newStatementFixture() (*testutil.MockCondominiumRepository, *testutil.MockUnitRepository, *testutil.MockChargeRepository, *testutil.MockStatementRepository, *SettlementService) {
	condominiumRepo := testutil.NewMockCondominiumRepository()
	condominiumRepo.AddCondominium(&domain.Condominium{ID: 1, Name: "Résidence des Lilas"})

	unitRepo := testutil.NewMockUnitRepository()
	unitRepo.AddUnit(&domain.Unit{
		ID:              1,
		CondominiumID:   1,
		Label:           "Apt 3B",
		OwnershipShare:  decimal.RequireFromString("20.1"),
		MonthlyAdvance:  decimal.RequireFromString("25"),
		WaterMeterStart: decimal.RequireFromString("100"),
		WaterMeterEnd:   decimal.RequireFromString("200"),
	})

	chargeRepo := testutil.NewMockChargeRepository()
	price := decimal.RequireFromString("2.9")
	periodStart := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)
	chargeRepo.AddCharge(&domain.Charge{
		ID:             1,
		CondominiumID:  1,
		Category:       domain.ChargeCategoryWater,
		Amount:         decimal.RequireFromString("400"),
		BillingDate:    time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC),
		PeriodStart:    &periodStart,
		PeriodEnd:      &periodEnd,
		WaterUnitPrice: &price,
	})

	statementRepo := testutil.NewMockStatementRepository()

	aggregationService := NewAggregationService(condominiumRepo, chargeRepo)
	settlementService := NewSettlementService(unitRepo, aggregationService)
	return condominiumRepo, unitRepo, chargeRepo, statementRepo, settlementService
}

func TestStatementService_Export_PDF(t *testing.T) {
	condominiumRepo, _, _, statementRepo, settlementService := newStatementFixture()
	service := NewStatementService(condominiumRepo, statementRepo, settlementService, nil, nil)

	doc, err := service.Export(1, date(2025, time.January, 1), date(2025, time.June, 30), "pdf")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if doc.ContentType != "application/pdf" {
		t.Errorf("expected application/pdf, got %s", doc.ContentType)
	}
	if doc.Filename != "decompte_2025-01-01_2025-06-30.pdf" {
		t.Errorf("unexpected filename %s", doc.Filename)
	}
	if len(doc.Data) == 0 {
		t.Error("expected non-empty PDF data")
	}
	if !strings.HasPrefix(string(doc.Data[:5]), "%PDF-") {
		t.Error("expected PDF magic header")
	}
}

func TestStatementService_Export_XLSX(t *testing.T) {
	condominiumRepo, _, _, statementRepo, settlementService := newStatementFixture()
	service := NewStatementService(condominiumRepo, statementRepo, settlementService, nil, nil)

	doc, err := service.Export(1, date(2025, time.January, 1), date(2025, time.June, 30), "xlsx")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if doc.Filename != "decompte_2025-01-01_2025-06-30.xlsx" {
		t.Errorf("unexpected filename %s", doc.Filename)
	}
	// XLSX files are zip archives
	if len(doc.Data) < 2 || doc.Data[0] != 'P' || doc.Data[1] != 'K' {
		t.Error("expected zip magic header")
	}
}

func TestStatementService_Export_UnknownFormat(t *testing.T) {
	condominiumRepo, _, _, statementRepo, settlementService := newStatementFixture()
	service := NewStatementService(condominiumRepo, statementRepo, settlementService, nil, nil)

	_, err := service.Export(1, date(2025, time.January, 1), date(2025, time.June, 30), "csv")
	if !errors.Is(err, ErrUnknownExportFormat) {
		t.Fatalf("expected ErrUnknownExportFormat, got %v", err)
	}
}

func TestStatementService_EnqueueGeneration(t *testing.T) {
	condominiumRepo, _, _, statementRepo, settlementService := newStatementFixture()
	documents := newFakeDocumentRepository()
	jobs := &fakeJobPublisher{}
	service := NewStatementService(condominiumRepo, statementRepo, settlementService, documents, jobs)

	err := service.EnqueueGeneration(context.Background(), 1, date(2025, time.January, 1), date(2025, time.June, 30), "auth0|syndic")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(jobs.published) != 1 {
		t.Fatalf("expected 1 published job, got %d", len(jobs.published))
	}
	msg := jobs.published[0]
	if msg.CondominiumID != 1 {
		t.Errorf("expected condominium 1, got %d", msg.CondominiumID)
	}
	if msg.RequestedBy != "auth0|syndic" {
		t.Errorf("expected requestedBy auth0|syndic, got %s", msg.RequestedBy)
	}
}

func TestStatementService_EnqueueGeneration_NotConfigured(t *testing.T) {
	condominiumRepo, _, _, statementRepo, settlementService := newStatementFixture()
	service := NewStatementService(condominiumRepo, statementRepo, settlementService, nil, nil)

	err := service.EnqueueGeneration(context.Background(), 1, date(2025, time.January, 1), date(2025, time.June, 30), "auth0|syndic")
	if !errors.Is(err, ErrStatementJobsNotConfigured) {
		t.Fatalf("expected ErrStatementJobsNotConfigured, got %v", err)
	}
}

func TestStatementService_EnqueueGeneration_ReversedPeriod(t *testing.T) {
	condominiumRepo, _, _, statementRepo, settlementService := newStatementFixture()
	service := NewStatementService(condominiumRepo, statementRepo, settlementService, newFakeDocumentRepository(), &fakeJobPublisher{})

	err := service.EnqueueGeneration(context.Background(), 1, date(2025, time.June, 30), date(2025, time.January, 1), "auth0|syndic")
	if !errors.Is(err, domain.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestStatementService_GenerateAndArchive(t *testing.T) {
	condominiumRepo, _, _, statementRepo, settlementService := newStatementFixture()
	documents := newFakeDocumentRepository()
	service := NewStatementService(condominiumRepo, statementRepo, settlementService, documents, nil)

	statement, err := service.GenerateAndArchive(context.Background(), 1, date(2025, time.January, 1), date(2025, time.June, 30))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if statement.MonthsInPeriod != 6 {
		t.Errorf("expected 6 months, got %d", statement.MonthsInPeriod)
	}
	if statement.TotalWaterBill.StringFixed(2) != "400.00" {
		t.Errorf("expected total water bill 400.00, got %s", statement.TotalWaterBill.StringFixed(2))
	}
	if statement.UnitCount != 1 {
		t.Errorf("expected unit count 1, got %d", statement.UnitCount)
	}
	if !strings.HasPrefix(statement.ObjectPath, "condos/1/statements/2025-01-01_2025-06-30_") {
		t.Errorf("unexpected object path %s", statement.ObjectPath)
	}
	if _, ok := documents.objects[statement.ObjectPath]; !ok {
		t.Error("expected PDF uploaded to object storage")
	}

	// Snapshot row must be retrievable
	statements, err := service.GetStatements(1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(statements) != 1 {
		t.Fatalf("expected 1 archived statement, got %d", len(statements))
	}
}

func TestStatementService_GenerateAndArchive_StorageNotConfigured(t *testing.T) {
	condominiumRepo, _, _, statementRepo, settlementService := newStatementFixture()
	service := NewStatementService(condominiumRepo, statementRepo, settlementService, nil, nil)

	_, err := service.GenerateAndArchive(context.Background(), 1, date(2025, time.January, 1), date(2025, time.June, 30))
	if !errors.Is(err, ErrStatementStorageNotConfigured) {
		t.Fatalf("expected ErrStatementStorageNotConfigured, got %v", err)
	}
}

func TestStatementService_GetDownloadURL(t *testing.T) {
	condominiumRepo, _, _, statementRepo, settlementService := newStatementFixture()
	documents := newFakeDocumentRepository()
	service := NewStatementService(condominiumRepo, statementRepo, settlementService, documents, nil)

	statement, err := service.GenerateAndArchive(context.Background(), 1, date(2025, time.January, 1), date(2025, time.June, 30))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	url, err := service.GetDownloadURL(context.Background(), 1, statement.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(url, statement.ObjectPath) {
		t.Errorf("expected URL to reference object path, got %s", url)
	}
}

func TestStatementService_GetDownloadURL_NotFound(t *testing.T) {
	condominiumRepo, _, _, statementRepo, settlementService := newStatementFixture()
	service := NewStatementService(condominiumRepo, statementRepo, settlementService, newFakeDocumentRepository(), nil)

	_, err := service.GetDownloadURL(context.Background(), 1, 999)
	if !errors.Is(err, domain.ErrStatementNotFound) {
		t.Fatalf("expected ErrStatementNotFound, got %v", err)
	}
}

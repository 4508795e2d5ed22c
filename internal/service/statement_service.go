package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coprogest/coprogest-backend/internal/amqp"
	"github.com/coprogest/coprogest-backend/internal/domain"
	"github.com/coprogest/coprogest-backend/internal/metrics"
	"github.com/coprogest/coprogest-backend/internal/repository/storage"
	"github.com/coprogest/coprogest-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

var (
	ErrStatementStorageNotConfigured = errors.New("statement storage not configured")
	ErrStatementJobsNotConfigured    = errors.New("statement generation jobs not configured")
	ErrUnknownExportFormat           = errors.New("unknown export format")
)

// PresignedURLExpiry is how long statement download links stay valid
const PresignedURLExpiry = 15 * time.Minute

// StatementJobPublisher publishes asynchronous statement generation jobs
type StatementJobPublisher interface {
	PublishStatementJob(ctx context.Context, msg *amqp.StatementJobMessage) error
}

// StatementService renders settlement runs into statement documents
// (décompte de charges) and archives them
type StatementService struct {
	condominiumRepo   domain.CondominiumRepository
	statementRepo     domain.StatementRepository
	settlementService *SettlementService
	documents         storage.DocumentRepository
	jobs              StatementJobPublisher
	eventPublisher    websocket.EventPublisher
}

// NewStatementService creates a new StatementService. documents and jobs may
// be nil; the corresponding features report themselves as not configured.
func NewStatementService(condominiumRepo domain.CondominiumRepository, statementRepo domain.StatementRepository, settlementService *SettlementService, documents storage.DocumentRepository, jobs StatementJobPublisher) *StatementService {
	return &StatementService{
		condominiumRepo:   condominiumRepo,
		statementRepo:     statementRepo,
		settlementService: settlementService,
		documents:         documents,
		jobs:              jobs,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *StatementService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// ArchiveEnabled reports whether statement archiving (S3 + worker) is available
func (s *StatementService) ArchiveEnabled() bool {
	return s.documents != nil
}

// ExportDocument is a rendered statement ready to be sent to the client
type ExportDocument struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Export computes the settlement for the period and renders it synchronously
// in the requested format ("pdf" or "xlsx")
func (s *StatementService) Export(condominiumID int32, periodStart, periodEnd time.Time, format string) (*ExportDocument, error) {
	run, err := s.settlementService.RunForPeriod(condominiumID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	condominium, err := s.condominiumRepo.GetByID(condominiumID)
	if err != nil {
		return nil, err
	}

	base := fmt.Sprintf("decompte_%s_%s", periodStart.Format("2006-01-02"), periodEnd.Format("2006-01-02"))

	switch format {
	case "pdf":
		data, err := BuildStatementPDF(condominium, run)
		if err != nil {
			return nil, err
		}
		return &ExportDocument{Data: data, ContentType: "application/pdf", Filename: base + ".pdf"}, nil
	case "xlsx":
		data, err := BuildStatementXLSX(condominium, run)
		if err != nil {
			return nil, err
		}
		return &ExportDocument{
			Data:        data,
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Filename:    base + ".xlsx",
		}, nil
	default:
		return nil, ErrUnknownExportFormat
	}
}

// EnqueueGeneration publishes an asynchronous statement generation job
func (s *StatementService) EnqueueGeneration(ctx context.Context, condominiumID int32, periodStart, periodEnd time.Time, requestedBy string) error {
	if s.jobs == nil || s.documents == nil {
		return ErrStatementJobsNotConfigured
	}
	if periodStart.IsZero() || periodEnd.IsZero() || periodEnd.Before(periodStart) {
		return domain.ErrInvalidPeriod
	}
	if _, err := s.condominiumRepo.GetByID(condominiumID); err != nil {
		return err
	}

	return s.jobs.PublishStatementJob(ctx, amqp.NewStatementJobMessage(condominiumID, periodStart, periodEnd, requestedBy))
}

// GenerateAndArchive recomputes the settlement, renders the PDF, uploads it
// to object storage and records the statement row. Called by the worker.
func (s *StatementService) GenerateAndArchive(ctx context.Context, condominiumID int32, periodStart, periodEnd time.Time) (*domain.Statement, error) {
	if s.documents == nil {
		return nil, ErrStatementStorageNotConfigured
	}

	run, err := s.settlementService.RunForPeriod(condominiumID, periodStart, periodEnd)
	if err != nil {
		metrics.StatementJobs.WithLabelValues("failed").Inc()
		return nil, err
	}

	condominium, err := s.condominiumRepo.GetByID(condominiumID)
	if err != nil {
		metrics.StatementJobs.WithLabelValues("failed").Inc()
		return nil, err
	}

	data, err := BuildStatementPDF(condominium, run)
	if err != nil {
		metrics.StatementJobs.WithLabelValues("failed").Inc()
		return nil, err
	}

	objectPath := fmt.Sprintf("condos/%d/statements/%s_%s_%s.pdf",
		condominiumID,
		periodStart.Format("2006-01-02"),
		periodEnd.Format("2006-01-02"),
		uuid.New().String())

	if _, err := s.documents.Upload(ctx, objectPath, bytes.NewReader(data), "application/pdf", int64(len(data))); err != nil {
		metrics.StatementJobs.WithLabelValues("failed").Inc()
		return nil, err
	}

	statement, err := s.statementRepo.Create(&domain.Statement{
		CondominiumID:  condominiumID,
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
		MonthsInPeriod: run.MonthsInPeriod,
		TotalWaterBill: run.Totals.TotalWaterBill,
		TotalInsurance: run.Totals.TotalInsurance,
		TotalBankFees:  run.Totals.TotalBankFees,
		UnitCount:      len(run.Results),
		ObjectPath:     objectPath,
		GeneratedAt:    time.Now().UTC(),
	})
	if err != nil {
		metrics.StatementJobs.WithLabelValues("failed").Inc()
		return nil, err
	}

	metrics.StatementJobs.WithLabelValues("succeeded").Inc()
	log.Info().
		Int32("condominium_id", condominiumID).
		Int32("statement_id", statement.ID).
		Str("object_path", objectPath).
		Msg("Statement generated and archived")

	if s.eventPublisher != nil {
		s.eventPublisher.Publish(condominiumID, websocket.StatementGenerated(statement))
	}

	return statement, nil
}

// GetStatements lists the archived statements of the condominium
func (s *StatementService) GetStatements(condominiumID int32) ([]*domain.Statement, error) {
	return s.statementRepo.GetAllByCondominium(condominiumID)
}

// GetDownloadURL returns a short-lived presigned URL for a statement document
func (s *StatementService) GetDownloadURL(ctx context.Context, condominiumID, id int32) (string, error) {
	if s.documents == nil {
		return "", ErrStatementStorageNotConfigured
	}

	statement, err := s.statementRepo.GetByID(condominiumID, id)
	if err != nil {
		return "", err
	}

	return s.documents.GeneratePresignedURL(ctx, statement.ObjectPath, PresignedURLExpiry)
}

// BuildStatementPDF renders the settlement run as a PDF statement
func BuildStatementPDF(condominium *domain.Condominium, run *SettlementRun) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Décompte de charges")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Copropriété: %s", condominium.Name))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Période: %s - %s (%d mois)",
		run.PeriodStart.Format("02/01/2006"),
		run.PeriodEnd.Format("02/01/2006"),
		run.MonthsInPeriod))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Eau: %s EUR (prix unitaire %s)  Assurance: %s EUR  Frais bancaires: %s EUR",
		run.Totals.TotalWaterBill.StringFixed(2),
		run.Totals.WaterUnitPrice.StringFixed(2),
		run.Totals.TotalInsurance.StringFixed(2),
		run.Totals.TotalBankFees.StringFixed(2)))
	pdf.Ln(8)

	// Results table
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(40, 6, "Logement", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Tantième", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Avances", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Eau", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Assurance", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Banque", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Total charges", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Solde", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Statut", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, result := range run.Results {
		pdf.CellFormat(40, 6, result.UnitLabel, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, result.OwnershipShare.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, result.AdvanceContribution.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, result.WaterConsumptionShare.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, result.InsuranceShare.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, result.BankFeesShare.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, result.TotalCharges.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, result.FinalBalance.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, string(result.Status), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildStatementXLSX renders the settlement run as an XLSX workbook
func BuildStatementXLSX(condominium *domain.Condominium, run *SettlementRun) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	resultsSheet := "results"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(resultsSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Décompte de charges")
	_ = f.SetCellValue(summarySheet, "A3", "Copropriété")
	_ = f.SetCellValue(summarySheet, "B3", condominium.Name)
	_ = f.SetCellValue(summarySheet, "A4", "Période début")
	_ = f.SetCellValue(summarySheet, "B4", run.PeriodStart.Format("2006-01-02"))
	_ = f.SetCellValue(summarySheet, "A5", "Période fin")
	_ = f.SetCellValue(summarySheet, "B5", run.PeriodEnd.Format("2006-01-02"))
	_ = f.SetCellValue(summarySheet, "A6", "Mois d'avances")
	_ = f.SetCellValue(summarySheet, "B6", run.MonthsInPeriod)
	_ = f.SetCellValue(summarySheet, "A7", "Total eau")
	_ = f.SetCellValue(summarySheet, "B7", run.Totals.TotalWaterBill.StringFixed(2))
	_ = f.SetCellValue(summarySheet, "A8", "Prix unitaire eau")
	_ = f.SetCellValue(summarySheet, "B8", run.Totals.WaterUnitPrice.StringFixed(2))
	_ = f.SetCellValue(summarySheet, "A9", "Total assurance")
	_ = f.SetCellValue(summarySheet, "B9", run.Totals.TotalInsurance.StringFixed(2))
	_ = f.SetCellValue(summarySheet, "A10", "Total frais bancaires")
	_ = f.SetCellValue(summarySheet, "B10", run.Totals.TotalBankFees.StringFixed(2))

	headers := []string{"Logement", "Tantième", "Avances", "Eau", "Assurance", "Banque", "Total charges", "Solde", "Statut"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(resultsSheet, cell, header)
	}
	for i, result := range run.Results {
		row := i + 2
		values := []interface{}{
			result.UnitLabel,
			result.OwnershipShare.StringFixed(2),
			result.AdvanceContribution.StringFixed(2),
			result.WaterConsumptionShare.StringFixed(2),
			result.InsuranceShare.StringFixed(2),
			result.BankFeesShare.StringFixed(2),
			result.TotalCharges.StringFixed(2),
			result.FinalBalance.StringFixed(2),
			string(result.Status),
		}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			_ = f.SetCellValue(resultsSheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

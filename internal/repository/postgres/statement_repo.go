package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/coprogest/coprogest-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StatementRepository implements domain.StatementRepository using PostgreSQL
type StatementRepository struct {
	pool *pgxpool.Pool
}

// NewStatementRepository creates a new StatementRepository
func NewStatementRepository(pool *pgxpool.Pool) *StatementRepository {
	return &StatementRepository{pool: pool}
}

const statementColumns = `id, condominium_id, period_start, period_end, months_in_period, total_water_bill, total_insurance, total_bank_fees, unit_count, object_path, generated_at, created_at`

func scanStatement(row pgx.Row) (*domain.Statement, error) {
	statement := &domain.Statement{}
	var water, insurance, bank pgtype.Numeric
	err := row.Scan(
		&statement.ID, &statement.CondominiumID,
		&statement.PeriodStart, &statement.PeriodEnd, &statement.MonthsInPeriod,
		&water, &insurance, &bank,
		&statement.UnitCount, &statement.ObjectPath,
		&statement.GeneratedAt, &statement.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	statement.TotalWaterBill = pgNumericToDecimal(water)
	statement.TotalInsurance = pgNumericToDecimal(insurance)
	statement.TotalBankFees = pgNumericToDecimal(bank)
	return statement, nil
}

// Create records a generated statement
func (r *StatementRepository) Create(statement *domain.Statement) (*domain.Statement, error) {
	ctx := context.Background()
	water, err := decimalToPgNumeric(statement.TotalWaterBill)
	if err != nil {
		return nil, fmt.Errorf("invalid total water bill: %w", err)
	}
	insurance, err := decimalToPgNumeric(statement.TotalInsurance)
	if err != nil {
		return nil, fmt.Errorf("invalid total insurance: %w", err)
	}
	bank, err := decimalToPgNumeric(statement.TotalBankFees)
	if err != nil {
		return nil, fmt.Errorf("invalid total bank fees: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO statements (condominium_id, period_start, period_end, months_in_period, total_water_bill, total_insurance, total_bank_fees, unit_count, object_path, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+statementColumns,
		statement.CondominiumID, statement.PeriodStart, statement.PeriodEnd,
		statement.MonthsInPeriod, water, insurance, bank,
		statement.UnitCount, statement.ObjectPath, statement.GeneratedAt)
	return scanStatement(row)
}

// GetByID retrieves a statement by its ID within a condominium
func (r *StatementRepository) GetByID(condominiumID, id int32) (*domain.Statement, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+statementColumns+`
		FROM statements
		WHERE condominium_id = $1 AND id = $2`,
		condominiumID, id)

	statement, err := scanStatement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStatementNotFound
		}
		return nil, err
	}
	return statement, nil
}

// GetAllByCondominium retrieves the statements of a condominium, newest first
func (r *StatementRepository) GetAllByCondominium(condominiumID int32) ([]*domain.Statement, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+statementColumns+`
		FROM statements
		WHERE condominium_id = $1
		ORDER BY generated_at DESC, id DESC`,
		condominiumID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statements := []*domain.Statement{}
	for rows.Next() {
		statement, err := scanStatement(rows)
		if err != nil {
			return nil, err
		}
		statements = append(statements, statement)
	}
	return statements, rows.Err()
}

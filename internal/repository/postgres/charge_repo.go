package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coprogest/coprogest-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChargeRepository implements domain.ChargeRepository using PostgreSQL
type ChargeRepository struct {
	pool *pgxpool.Pool
}

// NewChargeRepository creates a new ChargeRepository
func NewChargeRepository(pool *pgxpool.Pool) *ChargeRepository {
	return &ChargeRepository{pool: pool}
}

const chargeColumns = `id, condominium_id, category, amount, billing_date, period_start, period_end, water_unit_price, description, invoice_path, created_at, updated_at`

func scanCharge(row pgx.Row) (*domain.Charge, error) {
	charge := &domain.Charge{}
	var amount, waterUnitPrice pgtype.Numeric
	var periodStart, periodEnd pgtype.Date
	err := row.Scan(
		&charge.ID, &charge.CondominiumID, &charge.Category,
		&amount, &charge.BillingDate, &periodStart, &periodEnd,
		&waterUnitPrice, &charge.Description, &charge.InvoicePath,
		&charge.CreatedAt, &charge.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	charge.Amount = pgNumericToDecimal(amount)
	charge.PeriodStart = pgDateToTimePtr(periodStart)
	charge.PeriodEnd = pgDateToTimePtr(periodEnd)
	charge.WaterUnitPrice = pgNumericToDecimalPtr(waterUnitPrice)
	return charge, nil
}

// Create creates a new charge record
func (r *ChargeRepository) Create(charge *domain.Charge) (*domain.Charge, error) {
	ctx := context.Background()
	amount, err := decimalToPgNumeric(charge.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	waterUnitPrice, err := decimalPtrToPgNumeric(charge.WaterUnitPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid water unit price: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO charges (condominium_id, category, amount, billing_date, period_start, period_end, water_unit_price, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+chargeColumns,
		charge.CondominiumID, string(charge.Category), amount, charge.BillingDate,
		timePtrToPgDate(charge.PeriodStart), timePtrToPgDate(charge.PeriodEnd),
		waterUnitPrice, charge.Description)
	return scanCharge(row)
}

// GetByID retrieves a charge by its ID within a condominium
func (r *ChargeRepository) GetByID(condominiumID, id int32) (*domain.Charge, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+chargeColumns+`
		FROM charges
		WHERE condominium_id = $1 AND id = $2`,
		condominiumID, id)

	charge, err := scanCharge(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChargeNotFound
		}
		return nil, err
	}
	return charge, nil
}

// GetAllByCondominium retrieves all charges of a condominium, newest billing first
func (r *ChargeRepository) GetAllByCondominium(condominiumID int32) ([]*domain.Charge, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+chargeColumns+`
		FROM charges
		WHERE condominium_id = $1
		ORDER BY billing_date DESC, id DESC`,
		condominiumID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCharges(rows)
}

// GetByPeriod retrieves charges whose service period overlaps [periodStart,
// periodEnd]. Charges without a service period never match.
func (r *ChargeRepository) GetByPeriod(condominiumID int32, periodStart, periodEnd time.Time) ([]*domain.Charge, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+chargeColumns+`
		FROM charges
		WHERE condominium_id = $1
		  AND period_start IS NOT NULL AND period_end IS NOT NULL
		  AND period_start <= $3 AND period_end >= $2
		ORDER BY billing_date, id`,
		condominiumID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCharges(rows)
}

func collectCharges(rows pgx.Rows) ([]*domain.Charge, error) {
	charges := []*domain.Charge{}
	for rows.Next() {
		charge, err := scanCharge(rows)
		if err != nil {
			return nil, err
		}
		charges = append(charges, charge)
	}
	return charges, rows.Err()
}

// Update updates a charge record
func (r *ChargeRepository) Update(charge *domain.Charge) (*domain.Charge, error) {
	ctx := context.Background()
	amount, err := decimalToPgNumeric(charge.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	waterUnitPrice, err := decimalPtrToPgNumeric(charge.WaterUnitPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid water unit price: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE charges
		SET category = $3, amount = $4, billing_date = $5, period_start = $6,
		    period_end = $7, water_unit_price = $8, description = $9, updated_at = now()
		WHERE condominium_id = $1 AND id = $2
		RETURNING `+chargeColumns,
		charge.CondominiumID, charge.ID, string(charge.Category), amount, charge.BillingDate,
		timePtrToPgDate(charge.PeriodStart), timePtrToPgDate(charge.PeriodEnd),
		waterUnitPrice, charge.Description)

	updated, err := scanCharge(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChargeNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete permanently removes a charge record
func (r *ChargeRepository) Delete(condominiumID, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM charges
		WHERE condominium_id = $1 AND id = $2`,
		condominiumID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrChargeNotFound
	}
	return nil
}

// SetInvoicePath updates the invoice scan path of a charge
func (r *ChargeRepository) SetInvoicePath(condominiumID, id int32, path *string) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		UPDATE charges
		SET invoice_path = $3, updated_at = now()
		WHERE condominium_id = $1 AND id = $2`,
		condominiumID, id, path)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrChargeNotFound
	}
	return nil
}

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

// UnitRepository implements domain.UnitRepository using PostgreSQL
type UnitRepository struct {
	pool *pgxpool.Pool
}

// NewUnitRepository creates a new UnitRepository
func NewUnitRepository(pool *pgxpool.Pool) *UnitRepository {
	return &UnitRepository{pool: pool}
}

func scanUnit(row pgx.Row) (*domain.Unit, error) {
	unit := &domain.Unit{}
	var share, advance, meterStart, meterEnd pgtype.Numeric
	err := row.Scan(
		&unit.ID, &unit.CondominiumID, &unit.Label,
		&share, &advance, &meterStart, &meterEnd,
		&unit.CreatedAt, &unit.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	unit.OwnershipShare = pgNumericToDecimal(share)
	unit.MonthlyAdvance = pgNumericToDecimal(advance)
	unit.WaterMeterStart = pgNumericToDecimal(meterStart)
	unit.WaterMeterEnd = pgNumericToDecimal(meterEnd)
	return unit, nil
}

const unitColumns = `id, condominium_id, label, ownership_share, monthly_advance, water_meter_start, water_meter_end, created_at, updated_at`

func unitNumericParams(unit *domain.Unit) (share, advance, meterStart, meterEnd pgtype.Numeric, err error) {
	if share, err = decimalToPgNumeric(unit.OwnershipShare); err != nil {
		return share, advance, meterStart, meterEnd, fmt.Errorf("invalid ownership share: %w", err)
	}
	if advance, err = decimalToPgNumeric(unit.MonthlyAdvance); err != nil {
		return share, advance, meterStart, meterEnd, fmt.Errorf("invalid monthly advance: %w", err)
	}
	if meterStart, err = decimalToPgNumeric(unit.WaterMeterStart); err != nil {
		return share, advance, meterStart, meterEnd, fmt.Errorf("invalid water meter start: %w", err)
	}
	if meterEnd, err = decimalToPgNumeric(unit.WaterMeterEnd); err != nil {
		return share, advance, meterStart, meterEnd, fmt.Errorf("invalid water meter end: %w", err)
	}
	return share, advance, meterStart, meterEnd, nil
}

// Create creates a new unit
func (r *UnitRepository) Create(unit *domain.Unit) (*domain.Unit, error) {
	ctx := context.Background()
	share, advance, meterStart, meterEnd, err := unitNumericParams(unit)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO units (condominium_id, label, ownership_share, monthly_advance, water_meter_start, water_meter_end)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+unitColumns,
		unit.CondominiumID, unit.Label, share, advance, meterStart, meterEnd)
	return scanUnit(row)
}

// GetByID retrieves a unit by its ID within a condominium
func (r *UnitRepository) GetByID(condominiumID, id int32) (*domain.Unit, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+unitColumns+`
		FROM units
		WHERE condominium_id = $1 AND id = $2 AND deleted_at IS NULL`,
		condominiumID, id)

	unit, err := scanUnit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUnitNotFound
		}
		return nil, err
	}
	return unit, nil
}

// GetAllByCondominium retrieves all active units of a condominium ordered by label
func (r *UnitRepository) GetAllByCondominium(condominiumID int32) ([]*domain.Unit, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+unitColumns+`
		FROM units
		WHERE condominium_id = $1 AND deleted_at IS NULL
		ORDER BY label, id`,
		condominiumID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	units := []*domain.Unit{}
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}

// Update updates a unit's attributes
func (r *UnitRepository) Update(unit *domain.Unit) (*domain.Unit, error) {
	ctx := context.Background()
	share, advance, meterStart, meterEnd, err := unitNumericParams(unit)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE units
		SET label = $3, ownership_share = $4, monthly_advance = $5,
		    water_meter_start = $6, water_meter_end = $7, updated_at = now()
		WHERE condominium_id = $1 AND id = $2 AND deleted_at IS NULL
		RETURNING `+unitColumns,
		unit.CondominiumID, unit.ID, unit.Label, share, advance, meterStart, meterEnd)

	updated, err := scanUnit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUnitNotFound
		}
		return nil, err
	}
	return updated, nil
}

// SoftDelete marks a unit as deleted
func (r *UnitRepository) SoftDelete(condominiumID, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		UPDATE units
		SET deleted_at = now(), updated_at = now()
		WHERE condominium_id = $1 AND id = $2 AND deleted_at IS NULL`,
		condominiumID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUnitNotFound
	}
	return nil
}

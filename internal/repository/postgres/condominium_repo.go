package postgres

import (
	"context"
	"errors"

	"github.com/coprogest/coprogest-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CondominiumRepository implements domain.CondominiumRepository using PostgreSQL
type CondominiumRepository struct {
	pool *pgxpool.Pool
}

// NewCondominiumRepository creates a new CondominiumRepository
func NewCondominiumRepository(pool *pgxpool.Pool) *CondominiumRepository {
	return &CondominiumRepository{pool: pool}
}

// Create creates a new condominium
func (r *CondominiumRepository) Create(condominium *domain.Condominium) (*domain.Condominium, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO condominiums (name, address)
		VALUES ($1, $2)
		RETURNING id, name, address, created_at, updated_at`,
		condominium.Name, condominium.Address)

	created := &domain.Condominium{}
	if err := row.Scan(&created.ID, &created.Name, &created.Address, &created.CreatedAt, &created.UpdatedAt); err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID retrieves an active condominium by its ID
func (r *CondominiumRepository) GetByID(id int32) (*domain.Condominium, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, address, created_at, updated_at
		FROM condominiums
		WHERE id = $1 AND deleted_at IS NULL`,
		id)

	condominium := &domain.Condominium{}
	if err := row.Scan(&condominium.ID, &condominium.Name, &condominium.Address, &condominium.CreatedAt, &condominium.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCondominiumNotFound
		}
		return nil, err
	}
	return condominium, nil
}

// Update updates a condominium's name and address
func (r *CondominiumRepository) Update(id int32, name, address string) (*domain.Condominium, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		UPDATE condominiums
		SET name = $2, address = $3, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING id, name, address, created_at, updated_at`,
		id, name, address)

	condominium := &domain.Condominium{}
	if err := row.Scan(&condominium.ID, &condominium.Name, &condominium.Address, &condominium.CreatedAt, &condominium.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCondominiumNotFound
		}
		return nil, err
	}
	return condominium, nil
}

// SoftDelete marks a condominium as deleted
func (r *CondominiumRepository) SoftDelete(id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		UPDATE condominiums
		SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`,
		id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCondominiumNotFound
	}
	return nil
}

package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkovac/renthub/internal/domain"
)

// PropertyRepo reads the shared properties table, referenced by
// property-scoped conversations. Read-only for this service.
type PropertyRepo struct {
	pool *pgxpool.Pool
}

func NewPropertyRepo(pool *pgxpool.Pool) *PropertyRepo {
	return &PropertyRepo{pool: pool}
}

func (r *PropertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	var p domain.Property
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, location FROM properties WHERE id = $1`, id,
	).Scan(&p.ID, &p.Title, &p.Location)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

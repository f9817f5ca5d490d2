package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists payment intent records.
type Repository interface {
	Create(ctx context.Context, intent *Intent) error
	GetByID(ctx context.Context, id string) (*Intent, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a Repository implementation using pgxpool.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, in *Intent) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.payment_intents").
		Columns("id", "gateway_id", "amount", "currency", "status").
		Values(in.ID, in.GatewayID, in.Amount, in.Currency, in.Status).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create intent query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).Scan(&in.CreatedAt, &in.UpdatedAt)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Intent, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "gateway_id", "amount", "currency", "status", "created_at", "updated_at").
		From("public.payment_intents").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get intent query failed: %w", err)
	}

	var in Intent
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&in.ID, &in.GatewayID, &in.Amount, &in.Currency, &in.Status, &in.CreatedAt, &in.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get intent failed: %w", err)
	}
	return &in, nil
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.payment_intents").
		Set("status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update intent query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update intent failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

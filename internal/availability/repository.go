package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists the busy intervals behind the in-memory Store.
// The store is the overlap authority; the repository only has to keep the
// records durable. Rows are keyed by id with a secondary index on
// (teacher_id, start_time).
type Repository interface {
	Create(ctx context.Context, iv *Interval) error
	Delete(ctx context.Context, id string) error
	UpdateRange(ctx context.Context, id string, start, end time.Time) error
	ListAll(ctx context.Context) ([]*Interval, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a Repository implementation using pgxpool.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, iv *Interval) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.availability_intervals").
		Columns("id", "teacher_id", "booking_id", "start_time", "end_time").
		Values(iv.ID, iv.TeacherID, iv.BookingID, iv.Start, iv.End).
		ToSql()
	if err != nil {
		return fmt.Errorf("build create interval query failed: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		// The table carries an exclusion constraint on
		// (teacher_id, tstzrange(start_time, end_time)) as a backstop for
		// the in-memory authority.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ExclusionViolation {
			return ErrConflict
		}
		return fmt.Errorf("create interval failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.availability_intervals").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete interval query failed: %w", err)
	}

	// Zero rows affected is fine: Release is idempotent.
	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete interval failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) UpdateRange(ctx context.Context, id string, start, end time.Time) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.availability_intervals").
		Set("start_time", start).
		Set("end_time", end).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update interval query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ExclusionViolation {
			return ErrConflict
		}
		return fmt.Errorf("update interval failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) ListAll(ctx context.Context) ([]*Interval, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "teacher_id", "booking_id", "start_time", "end_time").
		From("public.availability_intervals").
		OrderBy("teacher_id", "start_time").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list intervals query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list intervals failed: %w", err)
	}
	defer rows.Close()

	var intervals []*Interval
	for rows.Next() {
		var iv Interval
		if err := rows.Scan(&iv.ID, &iv.TeacherID, &iv.BookingID, &iv.Start, &iv.End); err != nil {
			return nil, fmt.Errorf("scan interval failed: %w", err)
		}
		intervals = append(intervals, &iv)
	}
	return intervals, nil
}

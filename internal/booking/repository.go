package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// Update rewrites a booking's mutable fields. The write is guarded on the
	// row still being scheduled, so a concurrent terminal transition makes it
	// fail with ErrTerminalState instead of resurrecting the booking.
	Update(ctx context.Context, booking *Booking) error

	// UpdateStatus transitions from exactly the given status to the new one.
	// If the row has moved on in the meantime the write affects nothing and
	// ErrTerminalState is returned, keeping terminal states terminal.
	UpdateStatus(ctx context.Context, id string, from, to Status) error

	// ListDueForCompletion returns scheduled bookings whose end time is at or
	// before now, oldest first.
	ListDueForCompletion(ctx context.Context, now time.Time, limit int) ([]*Booking, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns("id", "teacher_id", "student_id", "start_time", "end_time", "status",
			"price_amount", "currency", "payment_intent_id", "interval_id").
		Values(b.ID, b.TeacherID, b.StudentID, b.Start, b.End, b.Status,
			b.PriceAmount, b.Currency, b.PaymentIntentID, b.IntervalID).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).Scan(&b.CreatedAt, &b.UpdatedAt)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"b.id", "b.teacher_id", "t.display_name", "b.student_id", "s.display_name",
		"b.start_time", "b.end_time", "b.status",
		"b.price_amount", "b.currency", "b.payment_intent_id", "b.interval_id",
		"b.created_at", "b.updated_at",
	).
		From("public.bookings b").
		Join("public.users t ON b.teacher_id = t.id").
		Join("public.users s ON b.student_id = s.id").
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	row := r.pool.QueryRow(ctx, query, args...)

	var b Booking
	if err := scanBooking(row, &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return &b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"b.id", "b.teacher_id", "t.display_name", "b.student_id", "s.display_name",
		"b.start_time", "b.end_time", "b.status",
		"b.price_amount", "b.currency", "b.payment_intent_id", "b.interval_id",
		"b.created_at", "b.updated_at",
		"count(*) OVER() as total_count",
	).
		From("public.bookings b").
		Join("public.users t ON b.teacher_id = t.id").
		Join("public.users s ON b.student_id = s.id")

	if filter.TeacherID != "" {
		query = query.Where(squirrel.Eq{"b.teacher_id": filter.TeacherID})
	}
	if filter.StudentID != "" {
		query = query.Where(squirrel.Eq{"b.student_id": filter.StudentID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": filter.Status})
	}
	if filter.StartFrom != nil {
		query = query.Where(squirrel.GtOrEq{"b.start_time": filter.StartFrom})
	}
	if filter.StartTo != nil {
		query = query.Where(squirrel.Lt{"b.start_time": filter.StartTo})
	}

	query = query.OrderBy("b.start_time ASC")

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int

	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.TeacherID, &b.TeacherName, &b.StudentID, &b.StudentName,
			&b.Start, &b.End, &b.Status,
			&b.PriceAmount, &b.Currency, &b.PaymentIntentID, &b.IntervalID,
			&b.CreatedAt, &b.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, &b)
	}

	return bookings, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("start_time", b.Start).
		Set("end_time", b.End).
		Set("status", b.Status).
		Set("payment_intent_id", b.PaymentIntentID).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID, "status": StatusScheduled}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrTerminalState
	}
	return nil
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, id string, from, to Status) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("status", to).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update status query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update booking status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrTerminalState
	}
	return nil
}

func (r *pgxRepository) ListDueForCompletion(ctx context.Context, now time.Time, limit int) ([]*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"b.id", "b.teacher_id", "t.display_name", "b.student_id", "s.display_name",
		"b.start_time", "b.end_time", "b.status",
		"b.price_amount", "b.currency", "b.payment_intent_id", "b.interval_id",
		"b.created_at", "b.updated_at",
	).
		From("public.bookings b").
		Join("public.users t ON b.teacher_id = t.id").
		Join("public.users s ON b.student_id = s.id").
		Where(squirrel.Eq{"b.status": StatusScheduled}).
		Where(squirrel.LtOrEq{"b.end_time": now}).
		OrderBy("b.end_time ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build due bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list due bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.TeacherID, &b.TeacherName, &b.StudentID, &b.StudentName,
			&b.Start, &b.End, &b.Status,
			&b.PriceAmount, &b.Currency, &b.PaymentIntentID, &b.IntervalID,
			&b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan due booking failed: %w", err)
		}
		bookings = append(bookings, &b)
	}
	return bookings, nil
}

func scanBooking(row pgx.Row, b *Booking) error {
	return row.Scan(
		&b.ID, &b.TeacherID, &b.TeacherName, &b.StudentID, &b.StudentName,
		&b.Start, &b.End, &b.Status,
		&b.PriceAmount, &b.Currency, &b.PaymentIntentID, &b.IntervalID,
		&b.CreatedAt, &b.UpdatedAt,
	)
}

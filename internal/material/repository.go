package material

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, m *Material) error
	GetByID(ctx context.Context, id string) (*Material, error)
	ListByBooking(ctx context.Context, bookingID string) ([]*Material, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const materialColumns = "id, booking_id, uploader_id, filename, storage_path, thumbnail_path, content_type, size, created_at"

func (r *repository) Create(ctx context.Context, m *Material) error {
	query, args, err := psql.Insert("public.lesson_materials").
		Columns("id", "booking_id", "uploader_id", "filename", "storage_path", "thumbnail_path", "content_type", "size", "created_at").
		Values(m.ID, m.BookingID, m.UploaderID, m.Filename, m.StoragePath, m.ThumbnailPath, m.ContentType, m.Size, m.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create material record: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Material, error) {
	query, args, err := psql.Select(materialColumns).
		From("public.lesson_materials").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	m, err := scanMaterial(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get material: %w", err)
	}
	return m, nil
}

func (r *repository) ListByBooking(ctx context.Context, bookingID string) ([]*Material, error) {
	query, args, err := psql.Select(materialColumns).
		From("public.lesson_materials").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	defer rows.Close()

	var materials []*Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

func (r *repository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("public.lesson_materials").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete material record: %w", err)
	}
	return nil
}

func scanMaterial(row pgx.Row) (*Material, error) {
	m := &Material{}
	var thumbnailPath sql.NullString

	if err := row.Scan(
		&m.ID,
		&m.BookingID,
		&m.UploaderID,
		&m.Filename,
		&m.StoragePath,
		&thumbnailPath,
		&m.ContentType,
		&m.Size,
		&m.CreatedAt,
	); err != nil {
		return nil, err
	}
	if thumbnailPath.Valid {
		m.ThumbnailPath = &thumbnailPath.String
	}
	return m, nil
}

package material

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tutorhive/lesson-booking-backend/internal/auth"
	"github.com/tutorhive/lesson-booking-backend/internal/booking"
	"github.com/tutorhive/lesson-booking-backend/internal/pkg/storage"
)

type Service interface {
	Upload(ctx context.Context, caller auth.Identity, bookingID string, header *multipart.FileHeader) (*Material, error)
	ListByBooking(ctx context.Context, caller auth.Identity, bookingID string) ([]*Material, error)
	Download(ctx context.Context, caller auth.Identity, id string) (io.ReadCloser, *Material, error)
	DownloadThumbnail(ctx context.Context, caller auth.Identity, id string) (io.ReadCloser, *Material, error)
	Delete(ctx context.Context, caller auth.Identity, id string) error
}

type service struct {
	repo     Repository
	bookings booking.Service
	blobs    storage.Blobs
	thumbs   *storage.Thumbnailer
}

func NewService(repo Repository, bookings booking.Service, blobs storage.Blobs) Service {
	return &service{
		repo:     repo,
		bookings: bookings,
		blobs:    blobs,
		thumbs:   storage.NewThumbnailer(200, 200),
	}
}

func (s *service) Upload(ctx context.Context, caller auth.Identity, bookingID string, header *multipart.FileHeader) (*Material, error) {
	// Only the lesson's teacher or student may attach materials; the booking
	// lookup enforces that.
	if _, err := s.bookings.GetByID(ctx, caller, bookingID); err != nil {
		return nil, err
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	// Buffer the content; materials are lesson documents and small images,
	// not bulk media.
	fileBytes, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}

	contentType := header.Header.Get("Content-Type")
	ext := strings.ToLower(filepath.Ext(header.Filename))

	materialID := uuid.New().String()
	storagePath := fmt.Sprintf("materials/%s/%s%s", bookingID, materialID, ext)

	if err := s.blobs.Put(ctx, storagePath, bytes.NewReader(fileBytes)); err != nil {
		return nil, fmt.Errorf("failed to save material to storage: %w", err)
	}

	var thumbnailPath *string
	if strings.HasPrefix(contentType, "image/") {
		thumbReader, err := s.thumbs.Generate(bytes.NewReader(fileBytes))
		if err != nil {
			log.Printf("failed to generate thumbnail for material %s: %v", materialID, err)
		} else {
			tPath := fmt.Sprintf("materials/%s/%s_thumb.jpg", bookingID, materialID)
			if err := s.blobs.Put(ctx, tPath, thumbReader); err == nil {
				thumbnailPath = &tPath
			}
		}
	}

	m := &Material{
		ID:            materialID,
		BookingID:     bookingID,
		UploaderID:    caller.UserID,
		Filename:      header.Filename,
		StoragePath:   storagePath,
		ThumbnailPath: thumbnailPath,
		ContentType:   contentType,
		Size:          header.Size,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, m); err != nil {
		// Cleanup storage if the record cannot be written.
		_ = s.blobs.Remove(ctx, storagePath)
		if thumbnailPath != nil {
			_ = s.blobs.Remove(ctx, *thumbnailPath)
		}
		return nil, err
	}

	return m, nil
}

func (s *service) ListByBooking(ctx context.Context, caller auth.Identity, bookingID string) ([]*Material, error) {
	if _, err := s.bookings.GetByID(ctx, caller, bookingID); err != nil {
		return nil, err
	}
	return s.repo.ListByBooking(ctx, bookingID)
}

func (s *service) Download(ctx context.Context, caller auth.Identity, id string) (io.ReadCloser, *Material, error) {
	m, err := s.authorized(ctx, caller, id)
	if err != nil {
		return nil, nil, err
	}

	stream, err := s.blobs.Open(ctx, m.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to retrieve material from storage: %w", err)
	}
	return stream, m, nil
}

func (s *service) DownloadThumbnail(ctx context.Context, caller auth.Identity, id string) (io.ReadCloser, *Material, error) {
	m, err := s.authorized(ctx, caller, id)
	if err != nil {
		return nil, nil, err
	}
	if m.ThumbnailPath == nil {
		return nil, nil, ErrNoThumbnail
	}

	stream, err := s.blobs.Open(ctx, *m.ThumbnailPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to retrieve thumbnail from storage: %w", err)
	}
	return stream, m, nil
}

func (s *service) Delete(ctx context.Context, caller auth.Identity, id string) error {
	m, err := s.authorized(ctx, caller, id)
	if err != nil {
		return err
	}

	// Best effort storage cleanup; the record is the source of truth.
	if err := s.blobs.Remove(ctx, m.StoragePath); err != nil {
		log.Printf("failed to remove material blob %s: %v", m.StoragePath, err)
	}
	if m.ThumbnailPath != nil {
		_ = s.blobs.Remove(ctx, *m.ThumbnailPath)
	}

	return s.repo.Delete(ctx, id)
}

// authorized loads the material and verifies the caller participates in the
// lesson it belongs to.
func (s *service) authorized(ctx context.Context, caller auth.Identity, id string) (*Material, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.bookings.GetByID(ctx, caller, m.BookingID); err != nil {
		return nil, err
	}
	return m, nil
}

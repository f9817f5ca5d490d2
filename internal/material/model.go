package material

import (
	"net/http"
	"time"

	"github.com/tutorhive/lesson-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound    = apperror.New(http.StatusNotFound, "material not found")
	ErrNoThumbnail = apperror.New(http.StatusNotFound, "thumbnail not available")
)

// Material is a document or image a lesson participant attached to a booking.
type Material struct {
	ID            string    `json:"id"`
	BookingID     string    `json:"booking_id"`
	UploaderID    string    `json:"uploader_id"`
	Filename      string    `json:"filename"`
	StoragePath   string    `json:"-"`
	ThumbnailPath *string   `json:"-"`
	ContentType   string    `json:"content_type"`
	Size          int64     `json:"size"`
	CreatedAt     time.Time `json:"created_at"`
}

// DownloadURL returns the public URL for downloading a material by its ID.
func DownloadURL(id string) string {
	return "/v1/materials/" + id + "/download"
}

// ThumbnailURL returns the public URL for a material's thumbnail by its ID.
func ThumbnailURL(id string) string {
	return "/v1/materials/" + id + "/thumbnail"
}

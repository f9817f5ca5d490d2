package http

import (
	"time"

	"github.com/tutorhive/lesson-booking-backend/internal/material"
)

type MaterialResponse struct {
	ID           string    `json:"id"`
	BookingID    string    `json:"booking_id"`
	UploaderID   string    `json:"uploader_id"`
	Filename     string    `json:"filename"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	URL          string    `json:"url"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewMaterialResponse(m *material.Material) MaterialResponse {
	var thumbURL *string
	if m.ThumbnailPath != nil {
		t := material.ThumbnailURL(m.ID)
		thumbURL = &t
	}

	return MaterialResponse{
		ID:           m.ID,
		BookingID:    m.BookingID,
		UploaderID:   m.UploaderID,
		Filename:     m.Filename,
		ContentType:  m.ContentType,
		Size:         m.Size,
		URL:          material.DownloadURL(m.ID),
		ThumbnailURL: thumbURL,
		CreatedAt:    m.CreatedAt,
	}
}

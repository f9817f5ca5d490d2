package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tutorhive/lesson-booking-backend/internal/auth"
	"github.com/tutorhive/lesson-booking-backend/internal/material"
	"github.com/tutorhive/lesson-booking-backend/internal/pkg/response"
)

type Handler struct {
	materialService material.Service
}

func NewHandler(materialService material.Service) *Handler {
	return &Handler{materialService: materialService}
}

// Upload attaches a file to a booking.
func (h *Handler) Upload(c *gin.Context) {
	bookingID := c.Param("id")
	if _, err := uuid.Parse(bookingID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	m, err := h.materialService.Upload(c.Request.Context(), auth.CallerFrom(c), bookingID, fileHeader)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewMaterialResponse(m))
}

// List returns the materials attached to a booking.
func (h *Handler) List(c *gin.Context) {
	bookingID := c.Param("id")
	if _, err := uuid.Parse(bookingID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	materials, err := h.materialService.ListByBooking(c.Request.Context(), auth.CallerFrom(c), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]MaterialResponse, len(materials))
	for i, m := range materials {
		items[i] = NewMaterialResponse(m)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Download streams the material content.
func (h *Handler) Download(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	stream, m, err := h.materialService.Download(c.Request.Context(), auth.CallerFrom(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	c.Header("Content-Type", m.ContentType)
	c.Header("Content-Disposition", "inline; filename=\""+m.Filename+"\"")

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		// Response already started; nothing useful to send.
		return
	}
}

// Thumbnail streams the material's thumbnail. Thumbnails are always JPEG.
func (h *Handler) Thumbnail(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	stream, m, err := h.materialService.DownloadThumbnail(c.Request.Context(), auth.CallerFrom(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	c.Header("Content-Type", "image/jpeg")
	c.Header("Content-Disposition", "inline; filename=\""+m.Filename+"_thumb.jpg\"")

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		return
	}
}

// Delete removes a material and its stored content.
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	if err := h.materialService.Delete(c.Request.Context(), auth.CallerFrom(c), id); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

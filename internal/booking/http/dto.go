package http

import (
	"time"

	"github.com/tutorhive/lesson-booking-backend/internal/booking"
	"github.com/tutorhive/lesson-booking-backend/internal/pkg/request"
)

// CreateBookingRequest is the body for booking a lesson. Amount is in the
// currency's smallest unit; zero books a free lesson and skips payment.
type CreateBookingRequest struct {
	TeacherID       string    `json:"teacher_id" binding:"required,uuid"`
	StudentID       string    `json:"student_id" binding:"required,uuid"`
	StartTime       time.Time `json:"start_time" binding:"required"`
	EndTime         time.Time `json:"end_time" binding:"required"`
	Amount          int64     `json:"amount" binding:"omitempty,min=0"`
	Currency        string    `json:"currency" binding:"required_with=Amount"`
	PaymentMethodID string    `json:"payment_method_id"`
}

// Validate performs custom validation for CreateBookingRequest.
func (r *CreateBookingRequest) Validate() error {
	if !r.StartTime.Before(r.EndTime) {
		return booking.ErrInvalidRange
	}
	return nil
}

type RescheduleBookingRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

// Validate performs custom validation for RescheduleBookingRequest.
func (r *RescheduleBookingRequest) Validate() error {
	if !r.StartTime.Before(r.EndTime) {
		return booking.ErrInvalidRange
	}
	return nil
}

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	Status        string     `form:"status" binding:"omitempty,oneof=pending scheduled completed cancelled"`
	StartTimeFrom *time.Time `form:"start_time_from" time_format:"2006-01-02T15:04:05Z07:00"`
	StartTimeTo   *time.Time `form:"start_time_to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// Validate performs custom validation for ListBookingsRequest.
func (r *ListBookingsRequest) Validate() error {
	if r.StartTimeFrom != nil && r.StartTimeTo != nil {
		if r.StartTimeFrom.After(*r.StartTimeTo) {
			return booking.ErrInvalidRange
		}
	}
	return nil
}

type AvailabilityRequest struct {
	Date string `form:"date" binding:"required,datetime=2006-01-02"`
}

type PartyTag struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type BookingResponse struct {
	ID              string    `json:"id"`
	Teacher         PartyTag  `json:"teacher"`
	Student         PartyTag  `json:"student"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Status          string    `json:"status"`
	PriceAmount     int64     `json:"price_amount"`
	Currency        string    `json:"currency,omitempty"`
	PaymentIntentID *string   `json:"payment_intent_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:              b.ID,
		Teacher:         PartyTag{ID: b.TeacherID, Name: b.TeacherName},
		Student:         PartyTag{ID: b.StudentID, Name: b.StudentName},
		StartTime:       b.Start,
		EndTime:         b.End,
		Status:          string(b.Status),
		PriceAmount:     b.PriceAmount,
		Currency:        b.Currency,
		PaymentIntentID: b.PaymentIntentID,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

type AvailabilityResponse struct {
	TeacherID string             `json:"teacher_id"`
	Date      string             `json:"date"`
	Slots     []booking.TimeSlot `json:"slots"`
}

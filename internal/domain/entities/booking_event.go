package entities

import (
	"time"

	"github.com/google/uuid"
)

// BookingEventType represents the type of booking lifecycle event
type BookingEventType string

const (
	BookingEventTypeCreated   BookingEventType = "booking_created"
	BookingEventTypeCompleted BookingEventType = "booking_completed"
	BookingEventTypeCancelled BookingEventType = "booking_cancelled"
)

// BookingEvent is a notification published after a booking lifecycle
// transition commits
type BookingEvent struct {
	ID         string           `json:"id"`
	EventType  BookingEventType `json:"event_type"`
	BookingID  int64            `json:"booking_id"`
	CarID      int64            `json:"car_id"`
	CustomerID int64            `json:"customer_id"`
	Status     BookingStatus    `json:"status"`
	Timestamp  time.Time        `json:"timestamp"`
}

// NewBookingEvent creates a new booking event for the given booking
func NewBookingEvent(eventType BookingEventType, booking *Booking) *BookingEvent {
	return &BookingEvent{
		ID:         uuid.New().String(),
		EventType:  eventType,
		BookingID:  booking.ID,
		CarID:      booking.CarID,
		CustomerID: booking.CustomerID,
		Status:     booking.Status,
		Timestamp:  time.Now(),
	}
}

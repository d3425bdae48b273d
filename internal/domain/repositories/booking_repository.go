package repositories

import (
	"context"
	"time"

	"github.com/autorentpro/backend/internal/domain/entities"
)

// BookingRepository defines the interface for booking data operations
type BookingRepository interface {
	// Create creates a new booking and assigns its surrogate id
	Create(ctx context.Context, booking *entities.Booking) error

	// GetByID retrieves a booking by ID
	GetByID(ctx context.Context, id int64) (*entities.Booking, error)

	// GetByIDForUpdate retrieves a booking by ID holding a row lock.
	// Must be called inside a transaction.
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Booking, error)

	// Update persists the mutable fields of a booking
	Update(ctx context.Context, booking *entities.Booking) error

	// HasActiveOverlap reports whether an active booking for the car
	// shares at least one day with [pickup, ret]
	HasActiveOverlap(ctx context.Context, carID int64, pickup, ret time.Time) (bool, error)

	// ListByCustomer retrieves bookings for a customer
	ListByCustomer(ctx context.Context, customerID int64, filter BookingFilter) ([]*entities.Booking, error)

	// ListByCar retrieves bookings for a car
	ListByCar(ctx context.Context, carID int64, filter BookingFilter) ([]*entities.Booking, error)
}

// BookingFilter defines filters for listing bookings
type BookingFilter struct {
	Status entities.BookingStatus
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

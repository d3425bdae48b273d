package repositories

import (
	"context"

	"github.com/autorentpro/backend/internal/domain/entities"
)

// CarRepository defines the interface for car data operations
type CarRepository interface {
	// Create creates a new car and assigns its surrogate id
	Create(ctx context.Context, car *entities.Car) error

	// GetByID retrieves a car by ID
	GetByID(ctx context.Context, id int64) (*entities.Car, error)

	// GetByIDForUpdate retrieves a car by ID holding a row lock. Must be
	// called inside a transaction; the lock serializes concurrent booking
	// attempts on the same car.
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Car, error)

	// List retrieves cars matching the filter
	List(ctx context.Context, filter CarFilter) ([]*entities.Car, error)

	// SetAvailable updates the availability flag of a car
	SetAvailable(ctx context.Context, id int64, available bool) error

	// Count returns the total number of cars in the fleet
	Count(ctx context.Context) (int64, error)
}

// CarFilter defines filters for listing cars
type CarFilter struct {
	Type          entities.CarType
	MinPrice      *float64
	MaxPrice      *float64
	OnlyAvailable bool
	Limit         int
	Offset        int
}

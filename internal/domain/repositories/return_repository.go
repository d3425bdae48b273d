package repositories

import (
	"context"
	"time"

	"github.com/autorentpro/backend/internal/domain/entities"
)

// ReturnRepository defines the interface for return record operations.
// Return rows are immutable audit records; there is no update or delete.
type ReturnRepository interface {
	// Create creates a new return record and assigns its surrogate id
	Create(ctx context.Context, ret *entities.Return) error

	// GetByBookingID retrieves the return record for a booking
	GetByBookingID(ctx context.Context, bookingID int64) (*entities.Return, error)

	// ListByDate retrieves return records processed on the given date
	ListByDate(ctx context.Context, date time.Time) ([]*entities.Return, error)
}

package repositories

import (
	"context"

	"github.com/autorentpro/backend/internal/domain/entities"
)

// CustomerRepository defines the interface for customer data operations
type CustomerRepository interface {
	// Create creates a new customer and assigns its surrogate id
	Create(ctx context.Context, customer *entities.Customer) error

	// GetByID retrieves a customer by ID
	GetByID(ctx context.Context, id int64) (*entities.Customer, error)

	// GetByEmail retrieves the most recently registered customer with the
	// given email. Email is indexed but not unique at the schema level.
	GetByEmail(ctx context.Context, email string) (*entities.Customer, error)

	// UpdateContact updates the mutable contact fields (email, phone).
	// Identity fields (name, license number) are immutable.
	UpdateContact(ctx context.Context, id int64, email, phone string) error
}

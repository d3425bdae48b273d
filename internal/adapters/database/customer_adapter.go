package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/autorentpro/backend/internal/domain/entities"
	"github.com/autorentpro/backend/internal/domain/repositories"
	"github.com/autorentpro/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/autorentpro/backend/pkg/errors"
)

var customerColumns = []interface{}{
	"id", "name", "email", "phone", "license_number", "created_at", "updated_at",
}

// CustomerAdapter implements the CustomerRepository interface
type CustomerAdapter struct {
	client *postgres.Client
}

// NewCustomerAdapter creates a new customer adapter
func NewCustomerAdapter(client *postgres.Client) repositories.CustomerRepository {
	return &CustomerAdapter{client: client}
}

// Create creates a new customer and assigns its surrogate id
func (a *CustomerAdapter) Create(ctx context.Context, customer *entities.Customer) error {
	now := time.Now()
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = now
	}
	customer.UpdatedAt = now

	record := goqu.Record{
		"name":           customer.Name,
		"email":          customer.Email,
		"phone":          customer.Phone,
		"license_number": customer.LicenseNumber,
		"created_at":     customer.CreatedAt,
		"updated_at":     customer.UpdatedAt,
	}

	query, args, err := dialect.Insert("customers").Rows(record).Returning("id").ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if err := a.client.Executor(ctx).QueryRowContext(ctx, query, args...).Scan(&customer.ID); err != nil {
		return apperrors.NewInternalError("failed to create customer", err)
	}

	return nil
}

// GetByID retrieves a customer by ID
func (a *CustomerAdapter) GetByID(ctx context.Context, id int64) (*entities.Customer, error) {
	query, args, err := dialect.From("customers").
		Select(customerColumns...).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	customer, err := scanCustomer(a.client.Executor(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("customer with id %d not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get customer", err)
	}

	return customer, nil
}

// GetByEmail retrieves the most recently registered customer with the given
// email. The email column is indexed but not unique.
func (a *CustomerAdapter) GetByEmail(ctx context.Context, email string) (*entities.Customer, error) {
	query, args, err := dialect.From("customers").
		Select(customerColumns...).
		Where(goqu.Ex{"email": email}).
		Order(goqu.C("id").Desc()).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	customer, err := scanCustomer(a.client.Executor(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("customer with email %s not found", email))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get customer", err)
	}

	return customer, nil
}

// UpdateContact updates the mutable contact fields of a customer
func (a *CustomerAdapter) UpdateContact(ctx context.Context, id int64, email, phone string) error {
	query, args, err := dialect.Update("customers").
		Set(goqu.Record{"email": email, "phone": phone, "updated_at": time.Now()}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.Executor(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update customer", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("customer with id %d not found", id))
	}

	return nil
}

func scanCustomer(row rowScanner) (*entities.Customer, error) {
	customer := &entities.Customer{}
	err := row.Scan(
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&customer.Phone,
		&customer.LicenseNumber,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return customer, nil
}

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

var bookingColumns = []interface{}{
	"id", "car_id", "customer_id", "pickup_date", "return_date", "days",
	"total_cost", "status", "booking_date", "additional_charges",
	"return_condition", "return_notes", "actual_return_date",
	"created_at", "updated_at",
}

// BookingAdapter implements the BookingRepository interface
type BookingAdapter struct {
	client *postgres.Client
}

// NewBookingAdapter creates a new booking adapter
func NewBookingAdapter(client *postgres.Client) repositories.BookingRepository {
	return &BookingAdapter{client: client}
}

// Create creates a new booking and assigns its surrogate id
func (a *BookingAdapter) Create(ctx context.Context, booking *entities.Booking) error {
	now := time.Now()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = now

	record := goqu.Record{
		"car_id":             booking.CarID,
		"customer_id":        booking.CustomerID,
		"pickup_date":        booking.PickupDate,
		"return_date":        booking.ReturnDate,
		"days":               booking.Days,
		"total_cost":         booking.TotalCost,
		"status":             booking.Status,
		"booking_date":       booking.BookingDate,
		"additional_charges": booking.AdditionalCharges,
		"return_notes":       booking.ReturnNotes,
		"created_at":         booking.CreatedAt,
		"updated_at":         booking.UpdatedAt,
	}

	query, args, err := dialect.Insert("bookings").Rows(record).Returning("id").ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if err := a.client.Executor(ctx).QueryRowContext(ctx, query, args...).Scan(&booking.ID); err != nil {
		return apperrors.NewInternalError("failed to create booking", err)
	}

	return nil
}

// GetByID retrieves a booking by ID
func (a *BookingAdapter) GetByID(ctx context.Context, id int64) (*entities.Booking, error) {
	return a.getByID(ctx, id, false)
}

// GetByIDForUpdate retrieves a booking by ID holding a row lock for the
// duration of the surrounding transaction
func (a *BookingAdapter) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Booking, error) {
	return a.getByID(ctx, id, true)
}

func (a *BookingAdapter) getByID(ctx context.Context, id int64, forUpdate bool) (*entities.Booking, error) {
	query, args, err := dialect.From("bookings").
		Select(bookingColumns...).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	if forUpdate {
		query += " FOR UPDATE"
	}

	booking, err := scanBooking(a.client.Executor(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("booking with id %d not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get booking", err)
	}

	return booking, nil
}

// Update persists the mutable fields of a booking
func (a *BookingAdapter) Update(ctx context.Context, booking *entities.Booking) error {
	booking.UpdatedAt = time.Now()

	record := goqu.Record{
		"status":             booking.Status,
		"total_cost":         booking.TotalCost,
		"additional_charges": booking.AdditionalCharges,
		"return_condition":   booking.ReturnCondition,
		"return_notes":       booking.ReturnNotes,
		"actual_return_date": booking.ActualReturnDate,
		"updated_at":         booking.UpdatedAt,
	}

	query, args, err := dialect.Update("bookings").
		Set(record).
		Where(goqu.Ex{"id": booking.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.Executor(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update booking", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("booking with id %d not found", booking.ID))
	}

	return nil
}

// HasActiveOverlap reports whether an active booking for the car shares at
// least one day with [pickup, ret]. Both boundaries are inclusive. Run
// inside a transaction holding the car row lock so the check and the
// subsequent insert serialize against concurrent bookings.
func (a *BookingAdapter) HasActiveOverlap(ctx context.Context, carID int64, pickup, ret time.Time) (bool, error) {
	query, args, err := dialect.From("bookings").
		Select(goqu.COUNT(goqu.Star())).
		Where(
			goqu.Ex{"car_id": carID, "status": entities.BookingStatusActive},
			goqu.C("pickup_date").Lte(entities.DateOnly(ret)),
			goqu.C("return_date").Gte(entities.DateOnly(pickup)),
		).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build overlap query", err)
	}

	var count int64
	if err := a.client.Executor(ctx).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, apperrors.NewInternalError("failed to check booking overlap", err)
	}

	return count > 0, nil
}

// ListByCustomer retrieves bookings for a customer
func (a *BookingAdapter) ListByCustomer(ctx context.Context, customerID int64, filter repositories.BookingFilter) ([]*entities.Booking, error) {
	return a.list(ctx, goqu.Ex{"customer_id": customerID}, filter)
}

// ListByCar retrieves bookings for a car
func (a *BookingAdapter) ListByCar(ctx context.Context, carID int64, filter repositories.BookingFilter) ([]*entities.Booking, error) {
	return a.list(ctx, goqu.Ex{"car_id": carID}, filter)
}

func (a *BookingAdapter) list(ctx context.Context, owner goqu.Ex, filter repositories.BookingFilter) ([]*entities.Booking, error) {
	ds := dialect.From("bookings").Select(bookingColumns...).Where(owner)

	if filter.Status != "" {
		ds = ds.Where(goqu.Ex{"status": filter.Status})
	}
	if filter.From != nil {
		ds = ds.Where(goqu.C("pickup_date").Gte(entities.DateOnly(*filter.From)))
	}
	if filter.To != nil {
		ds = ds.Where(goqu.C("return_date").Lte(entities.DateOnly(*filter.To)))
	}

	ds = ds.Order(goqu.C("pickup_date").Desc(), goqu.C("id").Desc())
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list bookings", err)
	}
	defer rows.Close()

	var bookings []*entities.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan booking", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to list bookings", err)
	}

	return bookings, nil
}

func scanBooking(row rowScanner) (*entities.Booking, error) {
	booking := &entities.Booking{}
	var returnCondition, returnNotes sql.NullString
	var actualReturnDate sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.CarID,
		&booking.CustomerID,
		&booking.PickupDate,
		&booking.ReturnDate,
		&booking.Days,
		&booking.TotalCost,
		&booking.Status,
		&booking.BookingDate,
		&booking.AdditionalCharges,
		&returnCondition,
		&returnNotes,
		&actualReturnDate,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if returnCondition.Valid {
		condition := entities.ConditionRating(returnCondition.String)
		booking.ReturnCondition = &condition
	}
	booking.ReturnNotes = returnNotes.String
	if actualReturnDate.Valid {
		booking.ActualReturnDate = &actualReturnDate.Time
	}

	return booking, nil
}

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

var returnColumns = []interface{}{
	"id", "booking_id", "return_date", "return_time", "condition_rating",
	"notes", "mileage", "fuel_level", "damages", "additional_charges",
	"total_amount", "processed_by", "created_at",
}

// ReturnAdapter implements the ReturnRepository interface
type ReturnAdapter struct {
	client *postgres.Client
}

// NewReturnAdapter creates a new return adapter
func NewReturnAdapter(client *postgres.Client) repositories.ReturnRepository {
	return &ReturnAdapter{client: client}
}

// Create creates a new return record and assigns its surrogate id
func (a *ReturnAdapter) Create(ctx context.Context, ret *entities.Return) error {
	now := time.Now()
	if ret.ReturnTime.IsZero() {
		ret.ReturnTime = now
	}
	if ret.CreatedAt.IsZero() {
		ret.CreatedAt = now
	}
	if ret.ProcessedBy == "" {
		ret.ProcessedBy = "System"
	}

	record := goqu.Record{
		"booking_id":         ret.BookingID,
		"return_date":        ret.ReturnDate,
		"return_time":        ret.ReturnTime,
		"condition_rating":   ret.ConditionRating,
		"notes":              ret.Notes,
		"mileage":            ret.Mileage,
		"fuel_level":         ret.FuelLevel,
		"damages":            ret.Damages,
		"additional_charges": ret.AdditionalCharges,
		"total_amount":       ret.TotalAmount,
		"processed_by":       ret.ProcessedBy,
		"created_at":         ret.CreatedAt,
	}

	query, args, err := dialect.Insert("returns").Rows(record).Returning("id").ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if err := a.client.Executor(ctx).QueryRowContext(ctx, query, args...).Scan(&ret.ID); err != nil {
		return apperrors.NewInternalError("failed to create return record", err)
	}

	return nil
}

// GetByBookingID retrieves the return record for a booking. The schema
// permits multiple rows per booking; the most recent one wins.
func (a *ReturnAdapter) GetByBookingID(ctx context.Context, bookingID int64) (*entities.Return, error) {
	query, args, err := dialect.From("returns").
		Select(returnColumns...).
		Where(goqu.Ex{"booking_id": bookingID}).
		Order(goqu.C("id").Desc()).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	ret, err := scanReturn(a.client.Executor(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("return record for booking %d not found", bookingID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get return record", err)
	}

	return ret, nil
}

// ListByDate retrieves return records processed on the given date
func (a *ReturnAdapter) ListByDate(ctx context.Context, date time.Time) ([]*entities.Return, error) {
	query, args, err := dialect.From("returns").
		Select(returnColumns...).
		Where(goqu.Ex{"return_date": entities.DateOnly(date)}).
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list return records", err)
	}
	defer rows.Close()

	var returns []*entities.Return
	for rows.Next() {
		ret, err := scanReturn(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan return record", err)
		}
		returns = append(returns, ret)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to list return records", err)
	}

	return returns, nil
}

func scanReturn(row rowScanner) (*entities.Return, error) {
	ret := &entities.Return{}
	var notes sql.NullString
	var mileage, fuelLevel sql.NullInt64

	err := row.Scan(
		&ret.ID,
		&ret.BookingID,
		&ret.ReturnDate,
		&ret.ReturnTime,
		&ret.ConditionRating,
		&notes,
		&mileage,
		&fuelLevel,
		&ret.Damages,
		&ret.AdditionalCharges,
		&ret.TotalAmount,
		&ret.ProcessedBy,
		&ret.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	ret.Notes = notes.String
	ret.Mileage = int(mileage.Int64)
	ret.FuelLevel = int(fuelLevel.Int64)

	return ret, nil
}

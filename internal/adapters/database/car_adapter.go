package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"

	"github.com/autorentpro/backend/internal/domain/entities"
	"github.com/autorentpro/backend/internal/domain/repositories"
	"github.com/autorentpro/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/autorentpro/backend/pkg/errors"
)

var dialect = goqu.Dialect("postgres")

var carColumns = []interface{}{
	"id", "model", "type", "price_per_day", "available", "image", "features",
	"year", "color", "fuel_type", "license_plate", "created_at", "updated_at",
}

// CarAdapter implements the CarRepository interface
type CarAdapter struct {
	client *postgres.Client
}

// NewCarAdapter creates a new car adapter
func NewCarAdapter(client *postgres.Client) repositories.CarRepository {
	return &CarAdapter{client: client}
}

// Create creates a new car and assigns its surrogate id
func (a *CarAdapter) Create(ctx context.Context, car *entities.Car) error {
	now := time.Now()
	if car.CreatedAt.IsZero() {
		car.CreatedAt = now
	}
	car.UpdatedAt = now

	record := goqu.Record{
		"model":         car.Model,
		"type":          car.Type,
		"price_per_day": car.PricePerDay,
		"available":     car.Available,
		"image":         car.Image,
		"features":      car.Features,
		"year":          car.Year,
		"color":         car.Color,
		"fuel_type":     car.FuelType,
		"license_plate": car.LicensePlate,
		"created_at":    car.CreatedAt,
		"updated_at":    car.UpdatedAt,
	}

	query, args, err := dialect.Insert("cars").Rows(record).Returning("id").ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	err = a.client.Executor(ctx).QueryRowContext(ctx, query, args...).Scan(&car.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("license plate %s already registered", car.LicensePlate))
		}
		return apperrors.NewInternalError("failed to create car", err)
	}

	return nil
}

// GetByID retrieves a car by ID
func (a *CarAdapter) GetByID(ctx context.Context, id int64) (*entities.Car, error) {
	return a.getByID(ctx, id, false)
}

// GetByIDForUpdate retrieves a car by ID holding a row lock for the
// duration of the surrounding transaction
func (a *CarAdapter) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Car, error) {
	return a.getByID(ctx, id, true)
}

func (a *CarAdapter) getByID(ctx context.Context, id int64, forUpdate bool) (*entities.Car, error) {
	query, args, err := dialect.From("cars").
		Select(carColumns...).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	if forUpdate {
		query += " FOR UPDATE"
	}

	row := a.client.Executor(ctx).QueryRowContext(ctx, query, args...)
	car, err := scanCar(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("car with id %d not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get car", err)
	}

	return car, nil
}

// List retrieves cars matching the filter
func (a *CarAdapter) List(ctx context.Context, filter repositories.CarFilter) ([]*entities.Car, error) {
	ds := dialect.From("cars").Select(carColumns...)

	if filter.OnlyAvailable {
		ds = ds.Where(goqu.Ex{"available": true})
	}
	if filter.Type != "" {
		ds = ds.Where(goqu.Ex{"type": filter.Type})
	}
	if filter.MinPrice != nil {
		ds = ds.Where(goqu.C("price_per_day").Gte(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		ds = ds.Where(goqu.C("price_per_day").Lte(*filter.MaxPrice))
	}

	ds = ds.Order(goqu.C("price_per_day").Asc(), goqu.C("id").Asc())
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
		return nil, apperrors.NewInternalError("failed to list cars", err)
	}
	defer rows.Close()

	var cars []*entities.Car
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan car", err)
		}
		cars = append(cars, car)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to list cars", err)
	}

	return cars, nil
}

// SetAvailable updates the availability flag of a car
func (a *CarAdapter) SetAvailable(ctx context.Context, id int64, available bool) error {
	query, args, err := dialect.Update("cars").
		Set(goqu.Record{"available": available, "updated_at": time.Now()}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.Executor(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update car availability", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("car with id %d not found", id))
	}

	return nil
}

// Count returns the total number of cars in the fleet
func (a *CarAdapter) Count(ctx context.Context) (int64, error) {
	query, args, err := dialect.From("cars").Select(goqu.COUNT(goqu.Star())).ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var count int64
	if err := a.client.Executor(ctx).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to count cars", err)
	}

	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCar(row rowScanner) (*entities.Car, error) {
	car := &entities.Car{}
	var image, color, fuelType, licensePlate sql.NullString
	var year sql.NullInt64

	err := row.Scan(
		&car.ID,
		&car.Model,
		&car.Type,
		&car.PricePerDay,
		&car.Available,
		&image,
		&car.Features,
		&year,
		&color,
		&fuelType,
		&licensePlate,
		&car.CreatedAt,
		&car.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	car.Image = image.String
	car.Year = int(year.Int64)
	car.Color = color.String
	car.FuelType = fuelType.String
	car.LicensePlate = licensePlate.String

	return car, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (error code 23505)
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

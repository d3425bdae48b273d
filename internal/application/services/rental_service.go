package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autorentpro/backend/internal/domain/entities"
	"github.com/autorentpro/backend/internal/domain/providers"
	"github.com/autorentpro/backend/internal/domain/repositories"
	apperrors "github.com/autorentpro/backend/pkg/errors"
)

// ReturnDetails carries the inspection results recorded when a booking
// completes
type ReturnDetails struct {
	ActualReturnDate  time.Time
	Condition         entities.ConditionRating
	Notes             string
	Mileage           int
	FuelLevel         int
	Damages           entities.DamageList
	AdditionalCharges float64
	ProcessedBy       string
}

// RentalService owns the booking lifecycle rules. Every mutating operation
// runs as a single atomic transaction with a row lock on the car or booking,
// so concurrent callers cannot both pass the overlap or state check.
type RentalService struct {
	cars      repositories.CarRepository
	customers repositories.CustomerRepository
	bookings  repositories.BookingRepository
	returns   repositories.ReturnRepository
	tx        repositories.Transactor
	events    providers.EventBus
	channel   string
}

// NewRentalService creates a new rental service. The event bus is optional;
// pass nil to disable lifecycle notifications.
func NewRentalService(
	cars repositories.CarRepository,
	customers repositories.CustomerRepository,
	bookings repositories.BookingRepository,
	returns repositories.ReturnRepository,
	tx repositories.Transactor,
	events providers.EventBus,
	channel string,
) *RentalService {
	return &RentalService{
		cars:      cars,
		customers: customers,
		bookings:  bookings,
		returns:   returns,
		tx:        tx,
		events:    events,
		channel:   channel,
	}
}

// RegisterCustomer registers a new customer
func (s *RentalService) RegisterCustomer(ctx context.Context, customer *entities.Customer) error {
	if strings.TrimSpace(customer.Name) == "" {
		return apperrors.NewValidationError("customer name is required")
	}
	if strings.TrimSpace(customer.Email) == "" {
		return apperrors.NewValidationError("customer email is required")
	}
	if strings.TrimSpace(customer.LicenseNumber) == "" {
		return apperrors.NewValidationError("customer license number is required")
	}

	return s.customers.Create(ctx, customer)
}

// GetCustomerByEmail retrieves a customer by email
func (s *RentalService) GetCustomerByEmail(ctx context.Context, email string) (*entities.Customer, error) {
	return s.customers.GetByEmail(ctx, email)
}

// CreateBooking books a car for the given window. The overlap check and the
// insert run inside one transaction holding the car row lock: of N
// concurrent attempts on the same car and window, exactly one succeeds and
// the rest fail with a conflict error.
func (s *RentalService) CreateBooking(ctx context.Context, carID, customerID int64, pickup, ret time.Time) (*entities.Booking, error) {
	if pickup.IsZero() || ret.IsZero() {
		return nil, apperrors.NewValidationError("pickup and return dates are required")
	}
	if entities.DateOnly(ret).Before(entities.DateOnly(pickup)) {
		return nil, apperrors.NewValidationError("return date must not be before pickup date")
	}

	var booking *entities.Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		car, err := s.cars.GetByIDForUpdate(ctx, carID)
		if err != nil {
			return err
		}
		if _, err := s.customers.GetByID(ctx, customerID); err != nil {
			return err
		}

		overlap, err := s.bookings.HasActiveOverlap(ctx, carID, pickup, ret)
		if err != nil {
			return err
		}
		if overlap {
			return apperrors.NewConflictError(fmt.Sprintf("car %d already has an active booking overlapping this window", carID))
		}

		now := time.Now()
		days := entities.RentalDays(pickup, ret)
		booking = &entities.Booking{
			CarID:       carID,
			CustomerID:  customerID,
			PickupDate:  entities.DateOnly(pickup),
			ReturnDate:  entities.DateOnly(ret),
			Days:        days,
			TotalCost:   entities.RentalCost(days, car.PricePerDay),
			Status:      entities.BookingStatusActive,
			BookingDate: entities.DateOnly(now),
		}
		if err := s.bookings.Create(ctx, booking); err != nil {
			return err
		}

		// The car leaves the available pool only when the rental window
		// covers today; future bookings keep it listed until pickup day.
		if booking.WindowContains(now) {
			return s.cars.SetAvailable(ctx, carID, false)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, entities.BookingEventTypeCreated, booking)
	return booking, nil
}

// CompleteBooking transitions an active booking to completed, creating the
// immutable return audit record and releasing the car
func (s *RentalService) CompleteBooking(ctx context.Context, bookingID int64, details ReturnDetails) (*entities.Booking, *entities.Return, error) {
	if !details.Condition.Valid() {
		return nil, nil, apperrors.NewValidationError("a valid condition rating is required")
	}
	if details.AdditionalCharges < 0 {
		return nil, nil, apperrors.NewValidationError("additional charges must not be negative")
	}

	var booking *entities.Booking
	var record *entities.Return
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.bookings.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if !booking.CanTransition(entities.BookingStatusCompleted) {
			return apperrors.NewInvalidStateError(fmt.Sprintf("booking %d is %s, only active bookings can be completed", bookingID, booking.Status))
		}

		now := time.Now()
		actualReturn := details.ActualReturnDate
		if actualReturn.IsZero() {
			actualReturn = now
		}
		actualReturnDate := entities.DateOnly(actualReturn)

		booking.Status = entities.BookingStatusCompleted
		booking.ActualReturnDate = &actualReturnDate
		booking.ReturnCondition = &details.Condition
		booking.ReturnNotes = details.Notes
		booking.AdditionalCharges = details.AdditionalCharges
		// total_cost = days x price_per_day + additional charges
		booking.TotalCost = math.Round((booking.TotalCost+details.AdditionalCharges)*100) / 100
		if err := s.bookings.Update(ctx, booking); err != nil {
			return err
		}

		record = &entities.Return{
			BookingID:         booking.ID,
			ReturnDate:        actualReturnDate,
			ReturnTime:        now,
			ConditionRating:   details.Condition,
			Notes:             details.Notes,
			Mileage:           details.Mileage,
			FuelLevel:         details.FuelLevel,
			Damages:           details.Damages,
			AdditionalCharges: details.AdditionalCharges,
			TotalAmount:       booking.TotalCost,
			ProcessedBy:       details.ProcessedBy,
		}
		if err := s.returns.Create(ctx, record); err != nil {
			return err
		}

		return s.cars.SetAvailable(ctx, booking.CarID, true)
	})
	if err != nil {
		return nil, nil, err
	}

	s.publishEvent(ctx, entities.BookingEventTypeCompleted, booking)
	return booking, record, nil
}

// CancelBooking transitions an active booking to cancelled
func (s *RentalService) CancelBooking(ctx context.Context, bookingID int64) (*entities.Booking, error) {
	var booking *entities.Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.bookings.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if !booking.CanTransition(entities.BookingStatusCancelled) {
			return apperrors.NewInvalidStateError(fmt.Sprintf("booking %d is %s, only active bookings can be cancelled", bookingID, booking.Status))
		}

		booking.Status = entities.BookingStatusCancelled
		if err := s.bookings.Update(ctx, booking); err != nil {
			return err
		}

		// Restore availability only when this booking reserved the car.
		// Creation flips the flag when the window contains the booking day,
		// so the same test identifies the bookings that hold it, including
		// ones cancelled after their return date has passed.
		if booking.WindowContains(booking.BookingDate) {
			return s.cars.SetAvailable(ctx, booking.CarID, true)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, entities.BookingEventTypeCancelled, booking)
	return booking, nil
}

// ListAvailableCars returns available cars matching the optional type and
// price-range filters. Reads always hit committed state; availability is
// never cached.
func (s *RentalService) ListAvailableCars(ctx context.Context, filter repositories.CarFilter) ([]*entities.Car, error) {
	filter.OnlyAvailable = true
	return s.cars.List(ctx, filter)
}

// GetBooking retrieves a booking by ID
func (s *RentalService) GetBooking(ctx context.Context, id int64) (*entities.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

// GetReturnForBooking retrieves the return audit record for a booking
func (s *RentalService) GetReturnForBooking(ctx context.Context, bookingID int64) (*entities.Return, error) {
	return s.returns.GetByBookingID(ctx, bookingID)
}

func (s *RentalService) publishEvent(ctx context.Context, eventType entities.BookingEventType, booking *entities.Booking) {
	if s.events == nil || booking == nil {
		return
	}
	event := entities.NewBookingEvent(eventType, booking)
	if err := s.events.Publish(ctx, s.channel, event); err != nil {
		log.Warn().
			Str("event_type", string(eventType)).
			Int64("booking_id", booking.ID).
			Err(err).
			Msg("Failed to publish booking event")
	}
}

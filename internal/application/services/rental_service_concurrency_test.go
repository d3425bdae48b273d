package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autorentpro/backend/internal/application/services"
	"github.com/autorentpro/backend/internal/domain/entities"
	"github.com/autorentpro/backend/internal/domain/repositories"
	apperrors "github.com/autorentpro/backend/pkg/errors"
)

// memStore holds state shared by the in-memory fakes below. The locking
// transactor serializes transactions the way a database row lock does, so
// the fakes themselves stay lock-free.
type memStore struct {
	cars      map[int64]*entities.Car
	customers map[int64]*entities.Customer
	bookings  map[int64]*entities.Booking
	nextID    int64
}

func newMemStore() *memStore {
	return &memStore{
		cars:      make(map[int64]*entities.Car),
		customers: make(map[int64]*entities.Customer),
		bookings:  make(map[int64]*entities.Booking),
		nextID:    1,
	}
}

// lockingTransactor holds one mutex across each transaction function, the
// same serialization a FOR UPDATE row lock gives concurrent bookings of the
// same car.
type lockingTransactor struct {
	mu sync.Mutex
}

func (t *lockingTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}

type memCarRepo struct{ store *memStore }

func (r *memCarRepo) Create(ctx context.Context, car *entities.Car) error {
	car.ID = r.store.nextID
	r.store.nextID++
	r.store.cars[car.ID] = car
	return nil
}

func (r *memCarRepo) GetByID(ctx context.Context, id int64) (*entities.Car, error) {
	car, ok := r.store.cars[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("car with id %d not found", id))
	}
	copied := *car
	return &copied, nil
}

func (r *memCarRepo) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Car, error) {
	return r.GetByID(ctx, id)
}

func (r *memCarRepo) List(ctx context.Context, filter repositories.CarFilter) ([]*entities.Car, error) {
	var out []*entities.Car
	for _, car := range r.store.cars {
		if filter.OnlyAvailable && !car.Available {
			continue
		}
		copied := *car
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memCarRepo) SetAvailable(ctx context.Context, id int64, available bool) error {
	car, ok := r.store.cars[id]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("car with id %d not found", id))
	}
	car.Available = available
	return nil
}

func (r *memCarRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.store.cars)), nil
}

type memCustomerRepo struct{ store *memStore }

func (r *memCustomerRepo) Create(ctx context.Context, customer *entities.Customer) error {
	customer.ID = r.store.nextID
	r.store.nextID++
	r.store.customers[customer.ID] = customer
	return nil
}

func (r *memCustomerRepo) GetByID(ctx context.Context, id int64) (*entities.Customer, error) {
	customer, ok := r.store.customers[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("customer with id %d not found", id))
	}
	return customer, nil
}

func (r *memCustomerRepo) GetByEmail(ctx context.Context, email string) (*entities.Customer, error) {
	for _, customer := range r.store.customers {
		if customer.Email == email {
			return customer, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("customer with email %s not found", email))
}

func (r *memCustomerRepo) UpdateContact(ctx context.Context, id int64, email, phone string) error {
	customer, ok := r.store.customers[id]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("customer with id %d not found", id))
	}
	customer.Email = email
	customer.Phone = phone
	return nil
}

type memBookingRepo struct{ store *memStore }

func (r *memBookingRepo) Create(ctx context.Context, booking *entities.Booking) error {
	booking.ID = r.store.nextID
	r.store.nextID++
	copied := *booking
	r.store.bookings[booking.ID] = &copied
	return nil
}

func (r *memBookingRepo) GetByID(ctx context.Context, id int64) (*entities.Booking, error) {
	booking, ok := r.store.bookings[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("booking with id %d not found", id))
	}
	copied := *booking
	return &copied, nil
}

func (r *memBookingRepo) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Booking, error) {
	return r.GetByID(ctx, id)
}

func (r *memBookingRepo) Update(ctx context.Context, booking *entities.Booking) error {
	if _, ok := r.store.bookings[booking.ID]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("booking with id %d not found", booking.ID))
	}
	copied := *booking
	r.store.bookings[booking.ID] = &copied
	return nil
}

func (r *memBookingRepo) HasActiveOverlap(ctx context.Context, carID int64, pickup, ret time.Time) (bool, error) {
	for _, booking := range r.store.bookings {
		if booking.CarID != carID || booking.Status != entities.BookingStatusActive {
			continue
		}
		if entities.DatesOverlap(booking.PickupDate, booking.ReturnDate, pickup, ret) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memBookingRepo) ListByCustomer(ctx context.Context, customerID int64, filter repositories.BookingFilter) ([]*entities.Booking, error) {
	var out []*entities.Booking
	for _, booking := range r.store.bookings {
		if booking.CustomerID == customerID {
			copied := *booking
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memBookingRepo) ListByCar(ctx context.Context, carID int64, filter repositories.BookingFilter) ([]*entities.Booking, error) {
	var out []*entities.Booking
	for _, booking := range r.store.bookings {
		if booking.CarID == carID {
			copied := *booking
			out = append(out, &copied)
		}
	}
	return out, nil
}

type memReturnRepo struct {
	mu      sync.Mutex
	records []*entities.Return
}

func (r *memReturnRepo) Create(ctx context.Context, ret *entities.Return) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, ret)
	return nil
}

func (r *memReturnRepo) GetByBookingID(ctx context.Context, bookingID int64) (*entities.Return, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].BookingID == bookingID {
			return r.records[i], nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("no return recorded for booking %d", bookingID))
}

func (r *memReturnRepo) ListByDate(ctx context.Context, date time.Time) ([]*entities.Return, error) {
	return nil, nil
}

// TestRentalService_ConcurrentBookings races N goroutines booking the same
// car and window. With the overlap check and insert serialized in one
// transaction, exactly one attempt wins and the rest get a conflict error.
func TestRentalService_ConcurrentBookings(t *testing.T) {
	store := newMemStore()
	cars := &memCarRepo{store: store}
	customers := &memCustomerRepo{store: store}
	bookings := &memBookingRepo{store: store}
	returns := &memReturnRepo{}
	service := services.NewRentalService(cars, customers, bookings, returns, &lockingTransactor{}, nil, "")

	ctx := context.Background()
	require.NoError(t, cars.Create(ctx, &entities.Car{Model: "GMC Yukon", Type: entities.CarTypeSUV, PricePerDay: 95.00, Available: true}))
	carID := int64(1)

	const attempts = 10
	customerIDs := make([]int64, attempts)
	for i := range customerIDs {
		customer := &entities.Customer{
			Name:          fmt.Sprintf("Customer %d", i),
			Email:         fmt.Sprintf("customer%d@example.com", i),
			LicenseNumber: fmt.Sprintf("D%07d", i),
		}
		require.NoError(t, customers.Create(ctx, customer))
		customerIDs[i] = customer.ID
	}

	pickup := time.Now().Add(24 * time.Hour)
	ret := pickup.Add(96 * time.Hour)

	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = service.CreateBooking(ctx, carID, customerIDs[i], pickup, ret)
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case apperrors.IsConflict(err):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, wins, "exactly one concurrent booking should win")
	assert.Equal(t, attempts-1, conflicts)

	active := 0
	for _, booking := range store.bookings {
		if booking.CarID == carID && booking.Status == entities.BookingStatusActive {
			active++
		}
	}
	assert.Equal(t, 1, active, "only one active booking should exist for the car")
}

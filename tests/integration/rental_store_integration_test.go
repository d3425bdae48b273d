//go:build integration

package integration

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/autorentpro/backend/internal/adapters/database"
	"github.com/autorentpro/backend/internal/application/services"
	"github.com/autorentpro/backend/internal/domain/entities"
	"github.com/autorentpro/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/autorentpro/backend/pkg/errors"
)

type RentalStoreIntegrationTestSuite struct {
	suite.Suite
	client  *postgres.Client
	db      *sql.DB
	service *services.RentalService
}

func (suite *RentalStoreIntegrationTestSuite) SetupSuite() {
	suite.client = newTestPostgresClient(suite.T())
	suite.db = suite.client.DB()

	schemaManager := database.NewSchemaManager(suite.client, zerolog.Nop())
	require.NoError(suite.T(), schemaManager.EnsureSchema(context.Background()))

	suite.service = services.NewRentalService(
		database.NewCarAdapter(suite.client),
		database.NewCustomerAdapter(suite.client),
		database.NewBookingAdapter(suite.client),
		database.NewReturnAdapter(suite.client),
		suite.client,
		nil,
		"",
	)
}

func (suite *RentalStoreIntegrationTestSuite) TearDownSuite() {
	if suite.client != nil {
		suite.client.Close()
	}
}

func (suite *RentalStoreIntegrationTestSuite) SetupTest() {
	suite.cleanupTestData()
}

func (suite *RentalStoreIntegrationTestSuite) TearDownTest() {
	suite.cleanupTestData()
}

func (suite *RentalStoreIntegrationTestSuite) cleanupTestData() {
	for _, table := range []string{"returns", "bookings", "customers", "cars"} {
		_, err := suite.db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		require.NoError(suite.T(), err)
	}
}

func (suite *RentalStoreIntegrationTestSuite) seedCarAndCustomer() (int64, int64) {
	ctx := context.Background()

	car := &entities.Car{
		Model:        "Nissan Altima",
		Type:         entities.CarTypeEconomy,
		PricePerDay:  38.00,
		Available:    true,
		LicensePlate: "NAL-001",
	}
	carRepo := database.NewCarAdapter(suite.client)
	require.NoError(suite.T(), carRepo.Create(ctx, car))

	customer := &entities.Customer{
		Name:          "John Doe",
		Email:         "john@example.com",
		Phone:         "555-0100",
		LicenseNumber: "D1234567",
	}
	require.NoError(suite.T(), suite.service.RegisterCustomer(ctx, customer))

	return car.ID, customer.ID
}

func (suite *RentalStoreIntegrationTestSuite) TestBookingLifecycle() {
	ctx := context.Background()
	carID, customerID := suite.seedCarAndCustomer()

	pickup := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	ret := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)

	booking, err := suite.service.CreateBooking(ctx, carID, customerID, pickup, ret)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 4, booking.Days)
	assert.Equal(suite.T(), 152.00, booking.TotalCost)
	assert.Equal(suite.T(), entities.BookingStatusActive, booking.Status)

	// Overlapping window on the same car is rejected
	_, err = suite.service.CreateBooking(ctx, carID, customerID,
		time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC),
	)
	assert.True(suite.T(), apperrors.IsConflict(err))

	completed, record, err := suite.service.CompleteBooking(ctx, booking.ID, services.ReturnDetails{
		ActualReturnDate:  ret,
		Condition:         entities.ConditionGood,
		Mileage:           12840,
		FuelLevel:         80,
		AdditionalCharges: 20.00,
		ProcessedBy:       "integration",
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), entities.BookingStatusCompleted, completed.Status)
	assert.Equal(suite.T(), 172.00, record.TotalAmount)

	stored, err := suite.service.GetReturnForBooking(ctx, booking.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), record.ID, stored.ID)

	// Completed bookings are terminal
	_, _, err = suite.service.CompleteBooking(ctx, booking.ID, services.ReturnDetails{
		Condition: entities.ConditionGood,
	})
	assert.True(suite.T(), apperrors.IsInvalidState(err))
	_, err = suite.service.CancelBooking(ctx, booking.ID)
	assert.True(suite.T(), apperrors.IsInvalidState(err))
}

func (suite *RentalStoreIntegrationTestSuite) TestConcurrentBookingsSingleWinner() {
	ctx := context.Background()
	carID, customerID := suite.seedCarAndCustomer()

	pickup := time.Now().Add(24 * time.Hour)
	ret := pickup.Add(96 * time.Hour)

	const attempts = 8
	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = suite.service.CreateBooking(ctx, carID, customerID, pickup, ret)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.True(suite.T(), apperrors.IsConflict(err), "unexpected error: %v", err)
	}
	assert.Equal(suite.T(), 1, wins)

	var active int
	err := suite.db.QueryRow(
		"SELECT COUNT(*) FROM bookings WHERE car_id = $1 AND status = 'active'", carID,
	).Scan(&active)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, active)
}

func (suite *RentalStoreIntegrationTestSuite) TestCancelRestoresAvailability() {
	ctx := context.Background()
	carID, customerID := suite.seedCarAndCustomer()

	pickup := time.Now()
	ret := pickup.Add(72 * time.Hour)

	booking, err := suite.service.CreateBooking(ctx, carID, customerID, pickup, ret)
	require.NoError(suite.T(), err)

	carRepo := database.NewCarAdapter(suite.client)
	car, err := carRepo.GetByID(ctx, carID)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), car.Available, "car should leave the pool while rented")

	cancelled, err := suite.service.CancelBooking(ctx, booking.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), entities.BookingStatusCancelled, cancelled.Status)

	car, err = carRepo.GetByID(ctx, carID)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), car.Available)
}

func TestRentalStoreIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(RentalStoreIntegrationTestSuite))
}

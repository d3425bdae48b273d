package database

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/autorentpro/backend/internal/domain/entities"
	"github.com/autorentpro/backend/internal/domain/repositories"
	apperrors "github.com/autorentpro/backend/pkg/errors"
)

// SeedLoader populates the demo car catalog when the fleet is empty
type SeedLoader struct {
	cars   repositories.CarRepository
	logger zerolog.Logger
}

// NewSeedLoader creates a new seed loader
func NewSeedLoader(cars repositories.CarRepository, logger zerolog.Logger) *SeedLoader {
	return &SeedLoader{cars: cars, logger: logger}
}

// EnsureSeedData inserts the demo catalog if and only if the car table is
// empty. Each insert is independent: a duplicate license plate means a
// concurrent seeder won the race and the row is skipped, and any other
// per-row failure is logged without aborting the batch. Seeding is
// best-effort and never fatal at startup.
func (l *SeedLoader) EnsureSeedData(ctx context.Context) error {
	count, err := l.cars.Count(ctx)
	if err != nil {
		return apperrors.NewSeedError("failed to check car catalog", err)
	}
	if count > 0 {
		l.logger.Debug().Int64("cars", count).Msg("Car catalog already populated, skipping seed")
		return nil
	}

	l.logger.Info().Msg("Inserting demo car catalog")

	seeded := 0
	for _, car := range seedCatalog() {
		if err := l.cars.Create(ctx, car); err != nil {
			if apperrors.IsConflict(err) {
				l.logger.Debug().
					Str("license_plate", car.LicensePlate).
					Msg("Demo car already present, skipping")
				continue
			}
			l.logger.Warn().
				Str("model", car.Model).
				Err(err).
				Msg("Failed to seed demo car")
			continue
		}
		seeded++
	}

	l.logger.Info().Int("seeded", seeded).Msg("Demo car catalog inserted")
	return nil
}

// seedCatalog returns the fixed demonstration fleet. License plates are
// unique so the schema constraint closes the check-then-insert race between
// concurrent seeders.
func seedCatalog() []*entities.Car {
	return []*entities.Car{
		{
			Model:        "Nissan Altima",
			Type:         entities.CarTypeEconomy,
			PricePerDay:  38.00,
			Available:    true,
			Image:        "https://images.unsplash.com/photo-1605559424843-9e4c228bf1c2?auto=format&fit=crop&w=1000&q=80",
			Features:     entities.FeatureList{"AC", "Automatic", "5 Seats", "Bluetooth"},
			Year:         2023,
			Color:        "White",
			FuelType:     "Gasoline",
			LicensePlate: "NAL-001",
		},
		{
			Model:        "Hyundai Elantra",
			Type:         entities.CarTypeCompact,
			PricePerDay:  35.00,
			Available:    true,
			Image:        "https://images.unsplash.com/photo-1552519507-da3b142c6e3d?auto=format&fit=crop&w=1000&q=80",
			Features:     entities.FeatureList{"AC", "CVT", "4 Seats", "USB Ports"},
			Year:         2022,
			Color:        "Red",
			FuelType:     "Gasoline",
			LicensePlate: "HEL-002",
		},
		{
			Model:        "Jeep Grand Cherokee",
			Type:         entities.CarTypeSUV,
			PricePerDay:  82.00,
			Available:    true,
			Image:        "https://images.unsplash.com/photo-1533473359331-0135ef1b58bf?auto=format&fit=crop&w=1000&q=80",
			Features:     entities.FeatureList{"AC", "Automatic", "7 Seats", "AWD", "Roof Rails"},
			Year:         2023,
			Color:        "Green",
			FuelType:     "Gasoline",
			LicensePlate: "JGC-003",
		},
		{
			Model:        "Audi A4",
			Type:         entities.CarTypeLuxury,
			PricePerDay:  135.00,
			Available:    false,
			Image:        "https://images.unsplash.com/photo-1606016159991-8b5d2f87a5a8?auto=format&fit=crop&w=1000&q=80",
			Features:     entities.FeatureList{"AC", "Automatic", "5 Seats", "Leather", "Navigation", "Sunroof"},
			Year:         2024,
			Color:        "Silver",
			FuelType:     "Gasoline",
			LicensePlate: "AUA-004",
		},
		{
			Model:        "GMC Yukon",
			Type:         entities.CarTypeSUV,
			PricePerDay:  95.00,
			Available:    true,
			Image:        "https://images.unsplash.com/photo-1581540222194-0def2dda95b8?auto=format&fit=crop&w=1000&q=80",
			Features:     entities.FeatureList{"AC", "Automatic", "8 Seats", "4WD", "Towing Package"},
			Year:         2023,
			Color:        "Blue",
			FuelType:     "Gasoline",
			LicensePlate: "GMY-005",
		},
		{
			Model:        "Lexus ES",
			Type:         entities.CarTypeLuxury,
			PricePerDay:  155.00,
			Available:    true,
			Image:        "https://images.unsplash.com/photo-1617788138017-80ad40651399?auto=format&fit=crop&w=1000&q=80",
			Features:     entities.FeatureList{"AC", "Automatic", "5 Seats", "Leather", "Premium Audio", "Heated Seats"},
			Year:         2024,
			Color:        "Black",
			FuelType:     "Gasoline",
			LicensePlate: "LES-006",
		},
	}
}

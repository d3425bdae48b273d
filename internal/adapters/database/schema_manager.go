package database

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/autorentpro/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/autorentpro/backend/pkg/errors"
)

// Table creation statements in dependency order. Every statement is
// idempotent so EnsureSchema can run on every process start.
var schemaStatements = []struct {
	name string
	ddl  string
}{
	{
		name: "cars",
		ddl: `
			CREATE TABLE IF NOT EXISTS cars (
				id SERIAL PRIMARY KEY,
				model VARCHAR(100) NOT NULL,
				type VARCHAR(20) NOT NULL CHECK (type IN ('economy', 'compact', 'suv', 'luxury')),
				price_per_day NUMERIC(10, 2) NOT NULL CHECK (price_per_day >= 0),
				available BOOLEAN NOT NULL DEFAULT TRUE,
				image TEXT,
				features JSONB,
				year INT,
				color VARCHAR(50),
				fuel_type VARCHAR(50),
				license_plate VARCHAR(20) UNIQUE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
	},
	{
		name: "customers",
		ddl: `
			CREATE TABLE IF NOT EXISTS customers (
				id SERIAL PRIMARY KEY,
				name VARCHAR(100) NOT NULL,
				email VARCHAR(100) NOT NULL,
				phone VARCHAR(20) NOT NULL,
				license_number VARCHAR(50) NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
	},
	{
		name: "bookings",
		ddl: `
			CREATE TABLE IF NOT EXISTS bookings (
				id SERIAL PRIMARY KEY,
				car_id INT NOT NULL REFERENCES cars(id),
				customer_id INT NOT NULL REFERENCES customers(id),
				pickup_date DATE NOT NULL,
				return_date DATE NOT NULL,
				days INT NOT NULL,
				total_cost NUMERIC(10, 2) NOT NULL,
				status VARCHAR(16) NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'completed', 'cancelled')),
				booking_date DATE NOT NULL,
				additional_charges NUMERIC(10, 2) NOT NULL DEFAULT 0,
				return_condition VARCHAR(16) CHECK (return_condition IN ('excellent', 'good', 'fair', 'poor')),
				return_notes TEXT,
				actual_return_date DATE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
	},
	{
		name: "returns",
		ddl: `
			CREATE TABLE IF NOT EXISTS returns (
				id SERIAL PRIMARY KEY,
				booking_id INT NOT NULL REFERENCES bookings(id),
				return_date DATE NOT NULL,
				return_time TIMESTAMPTZ NOT NULL DEFAULT now(),
				condition_rating VARCHAR(16) NOT NULL CHECK (condition_rating IN ('excellent', 'good', 'fair', 'poor')),
				notes TEXT,
				mileage INT,
				fuel_level INT,
				damages JSONB,
				additional_charges NUMERIC(10, 2) NOT NULL DEFAULT 0,
				total_amount NUMERIC(10, 2) NOT NULL,
				processed_by VARCHAR(100) NOT NULL DEFAULT 'System',
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
	},
	{
		name: "idx_customers_email",
		ddl:  `CREATE INDEX IF NOT EXISTS idx_customers_email ON customers (email)`,
	},
	{
		name: "idx_bookings_status",
		ddl:  `CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings (status)`,
	},
	{
		name: "idx_bookings_dates",
		ddl:  `CREATE INDEX IF NOT EXISTS idx_bookings_dates ON bookings (pickup_date, return_date)`,
	},
	{
		name: "idx_returns_return_date",
		ddl:  `CREATE INDEX IF NOT EXISTS idx_returns_return_date ON returns (return_date)`,
	},
}

// SchemaManager owns the table definitions and creates them if absent
type SchemaManager struct {
	client *postgres.Client
	logger zerolog.Logger
}

// NewSchemaManager creates a new schema manager
func NewSchemaManager(client *postgres.Client, logger zerolog.Logger) *SchemaManager {
	return &SchemaManager{client: client, logger: logger}
}

// EnsureSchema creates the four tables and their indexes if they do not
// exist. Safe to invoke on every process start; re-invocation on an
// existing schema is a no-op. Any failure is a SchemaError and fatal at
// startup: the process must not serve requests over an unverified schema.
func (m *SchemaManager) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := m.client.DB().ExecContext(ctx, stmt.ddl); err != nil {
			return apperrors.NewSchemaError("failed to create "+stmt.name, err)
		}
	}

	m.logger.Info().Msg("Database schema verified")
	return nil
}

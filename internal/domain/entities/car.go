package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// CarType represents the rental category of a car
type CarType string

const (
	CarTypeEconomy CarType = "economy"
	CarTypeCompact CarType = "compact"
	CarTypeSUV     CarType = "suv"
	CarTypeLuxury  CarType = "luxury"
)

// Valid reports whether t is a known car type
func (t CarType) Valid() bool {
	switch t {
	case CarTypeEconomy, CarTypeCompact, CarTypeSUV, CarTypeLuxury:
		return true
	}
	return false
}

// FeatureList is an ordered list of car features stored as a JSON column
type FeatureList []string

// Value implements driver.Valuer, serializing the list to JSON
func (f FeatureList) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal(f)
}

// Scan implements sql.Scanner, deserializing a JSON column value
func (f *FeatureList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*f = nil
		return nil
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	default:
		return fmt.Errorf("cannot scan %T into FeatureList", src)
	}
}

// Car represents a rental car in the fleet
type Car struct {
	ID           int64       `json:"id" db:"id"`
	Model        string      `json:"model" db:"model"`
	Type         CarType     `json:"type" db:"type"`
	PricePerDay  float64     `json:"price_per_day" db:"price_per_day"`
	Available    bool        `json:"available" db:"available"`
	Image        string      `json:"image" db:"image"`
	Features     FeatureList `json:"features" db:"features"`
	Year         int         `json:"year" db:"year"`
	Color        string      `json:"color" db:"color"`
	FuelType     string      `json:"fuel_type" db:"fuel_type"`
	LicensePlate string      `json:"license_plate" db:"license_plate"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ConditionRating represents the assessed condition of a returned car
type ConditionRating string

const (
	ConditionExcellent ConditionRating = "excellent"
	ConditionGood      ConditionRating = "good"
	ConditionFair      ConditionRating = "fair"
	ConditionPoor      ConditionRating = "poor"
)

// Valid reports whether r is a known condition rating
func (r ConditionRating) Valid() bool {
	switch r {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

// Damage describes a single damage item recorded at return time
type Damage struct {
	Description   string  `json:"description"`
	Severity      string  `json:"severity"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// DamageList is a structured list of damages stored as a JSON column
type DamageList []Damage

// Value implements driver.Valuer, serializing the list to JSON
func (d DamageList) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner, deserializing a JSON column value
func (d *DamageList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = nil
		return nil
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("cannot scan %T into DamageList", src)
	}
}

// Return is the immutable audit record created when a booking completes
type Return struct {
	ID                int64           `json:"id" db:"id"`
	BookingID         int64           `json:"booking_id" db:"booking_id"`
	ReturnDate        time.Time       `json:"return_date" db:"return_date"`
	ReturnTime        time.Time       `json:"return_time" db:"return_time"`
	ConditionRating   ConditionRating `json:"condition_rating" db:"condition_rating"`
	Notes             string          `json:"notes" db:"notes"`
	Mileage           int             `json:"mileage" db:"mileage"`
	FuelLevel         int             `json:"fuel_level" db:"fuel_level"`
	Damages           DamageList      `json:"damages" db:"damages"`
	AdditionalCharges float64         `json:"additional_charges" db:"additional_charges"`
	TotalAmount       float64         `json:"total_amount" db:"total_amount"`
	ProcessedBy       string          `json:"processed_by" db:"processed_by"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
}

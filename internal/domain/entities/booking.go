package entities

import (
	"math"
	"time"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking represents a car rental booking
type Booking struct {
	ID                int64            `json:"id" db:"id"`
	CarID             int64            `json:"car_id" db:"car_id"`
	CustomerID        int64            `json:"customer_id" db:"customer_id"`
	PickupDate        time.Time        `json:"pickup_date" db:"pickup_date"`
	ReturnDate        time.Time        `json:"return_date" db:"return_date"`
	Days              int              `json:"days" db:"days"`
	TotalCost         float64          `json:"total_cost" db:"total_cost"`
	Status            BookingStatus    `json:"status" db:"status"`
	BookingDate       time.Time        `json:"booking_date" db:"booking_date"`
	AdditionalCharges float64          `json:"additional_charges" db:"additional_charges"`
	ReturnCondition   *ConditionRating `json:"return_condition,omitempty" db:"return_condition"`
	ReturnNotes       string           `json:"return_notes" db:"return_notes"`
	ActualReturnDate  *time.Time       `json:"actual_return_date,omitempty" db:"actual_return_date"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at" db:"updated_at"`
}

// CanTransition reports whether the booking may move to the target status.
// Active bookings may complete or cancel; completed and cancelled are
// terminal.
func (b *Booking) CanTransition(to BookingStatus) bool {
	if b.Status != BookingStatusActive {
		return false
	}
	return to == BookingStatusCompleted || to == BookingStatusCancelled
}

// WindowContains reports whether t falls on a day inside the rental window,
// pickup and return days included
func (b *Booking) WindowContains(t time.Time) bool {
	d := DateOnly(t)
	return !d.Before(DateOnly(b.PickupDate)) && !d.After(DateOnly(b.ReturnDate))
}

// DateOnly truncates t to midnight UTC so DATE columns and in-memory values
// compare consistently
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RentalDays returns the number of billable days between pickup and return
// (2024-06-01 to 2024-06-05 is 4 days)
func RentalDays(pickup, ret time.Time) int {
	return int(DateOnly(ret).Sub(DateOnly(pickup)).Hours() / 24)
}

// RentalCost returns days * pricePerDay rounded to cents
func RentalCost(days int, pricePerDay float64) float64 {
	return math.Round(float64(days)*pricePerDay*100) / 100
}

// DatesOverlap reports whether two rental windows share at least one day.
// Boundaries are inclusive: a booking returning on the day another picks up
// counts as an overlap.
func DatesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !DateOnly(aEnd).Before(DateOnly(bStart)) && !DateOnly(bEnd).Before(DateOnly(aStart))
}

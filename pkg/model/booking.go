package model

import (
	"time"
)

// BookingStatus is an open set of string labels. The well-known values are
// listed below; status updates accept arbitrary caller-supplied labels.
type BookingStatus string

const (
	StatusBooked    BookingStatus = "booked"
	StatusApproved  BookingStatus = "approved"
	StatusPending   BookingStatus = "pending"
	StatusCancelled BookingStatus = "cancelled"
)

// Cancelled reports whether the status carries the fixed cancellation label.
func (s BookingStatus) Cancelled() bool {
	return s == StatusCancelled
}

type Booking struct {
	ID        string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	VehicleID string        `json:"vehicle_id" bson:"vehicle_id" validate:"required,mongodb"`
	CoOwnerID string        `json:"co_owner_id" bson:"co_owner_id" validate:"required,mongodb"`
	StartTime time.Time     `json:"start_time" bson:"start_time" validate:"required"`
	EndTime   time.Time     `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Status    BookingStatus `json:"status" bson:"status" validate:"omitempty"`
	Note      string        `json:"note,omitempty" bson:"note,omitempty" validate:"omitempty,max=255"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// BookingUpdate overwrites start/end/note on an existing booking.
// No overlap or priority re-validation is performed on update.
type BookingUpdate struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
	Note      string    `json:"note,omitempty" validate:"omitempty,max=255"`
}

type BookingStatusUpdate struct {
	Status string `json:"status" validate:"required,min=1,max=50"`
}

// BookingView joins a booking with display names where the referenced
// directory entries resolve. Missing references leave the names empty.
type BookingView struct {
	ID          string        `json:"id"`
	VehicleID   string        `json:"vehicle_id"`
	VehicleName string        `json:"vehicle_name,omitempty"`
	CoOwnerID   string        `json:"co_owner_id"`
	CoOwnerName string        `json:"co_owner_name,omitempty"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	Status      BookingStatus `json:"status"`
	Note        string        `json:"note,omitempty"`
}

// BookingPeriod is one slot in a vehicle schedule projection.
type BookingPeriod struct {
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	CoOwnerName string        `json:"co_owner_name,omitempty"`
	Status      BookingStatus `json:"status"`
}

// VehicleSchedule is the read-side projection of a vehicle's bookings,
// ordered ascending by start time.
type VehicleSchedule struct {
	VehicleID   string          `json:"vehicle_id"`
	VehicleName string          `json:"vehicle_name"`
	IsActive    bool            `json:"is_active"`
	Bookings    []BookingPeriod `json:"bookings"`
}

// VehicleLock is an advisory lock serializing booking creation per vehicle.
type VehicleLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

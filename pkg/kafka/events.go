package kafka

import "time"

// Event types published on the platform topics.
const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
	EventPaymentCompleted = "payment.completed"
)

// BookingEvent is the payload carried on the booking-events topic,
// keyed by vehicle ID so one vehicle's events stay ordered.
type BookingEvent struct {
	EventType string    `json:"event_type"`
	BookingID string    `json:"booking_id"`
	VehicleID string    `json:"vehicle_id"`
	CoOwnerID string    `json:"co_owner_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
}

// PaymentEvent is the payload carried on the payment-events topic.
type PaymentEvent struct {
	EventType   string    `json:"event_type"`
	CostShareID string    `json:"cost_share_id"`
	GroupID     string    `json:"group_id"`
	TotalAmount float64   `json:"total_amount"`
	PaidAt      time.Time `json:"paid_at"`
}

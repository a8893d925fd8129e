package consumer

import (
	"context"
	"fmt"

	"evshare/internal/history/service"
	"evshare/pkg/kafka"
	"evshare/pkg/logger"
)

// NewBookingEventHandler adapts the history service to the consumer loop.
// A decode failure is returned so the consumer's retry/DLQ policy applies;
// unknown event types are committed without action.
func NewBookingEventHandler(svc service.HistoryService, log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var event kafka.BookingEvent
		if err := msg.DecodeValue(&event); err != nil {
			return fmt.Errorf("failed to decode booking event: %w", err)
		}

		switch event.EventType {
		case kafka.EventBookingCreated:
			return svc.RecordBookingCreated(ctx, event)
		case kafka.EventBookingCancelled:
			log.Debug("Ignoring booking cancellation", "booking_id", event.BookingID)
			return nil
		default:
			log.Debug("Ignoring unrecognized booking event", "event_type", event.EventType)
			return nil
		}
	}
}

package providers

import (
	"context"

	"github.com/autorentpro/backend/internal/domain/entities"
)

// EventBus publishes and subscribes to booking lifecycle events.
// Publishing is best-effort: the data store is the source of truth and a
// failed publish never rolls back a committed transition.
type EventBus interface {
	// Publish publishes an event to all subscribers of the channel
	Publish(ctx context.Context, channel string, event *entities.BookingEvent) error

	// Subscribe subscribes to events on a channel. The returned channel is
	// closed when ctx is cancelled.
	Subscribe(ctx context.Context, channel string) (<-chan *entities.BookingEvent, error)

	// Close shuts down the event bus and all subscriptions
	Close() error
}

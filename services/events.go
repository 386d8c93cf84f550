package services

import (
	"context"

	"github.com/AlexHayrapetyan/RestoBook/queue"
)

// EventPublisher emits domain events after a booking commits.
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, event queue.BookingConfirmedEvent) error
}

// NoopPublisher is used when RABBITMQ_URL is not set.
type NoopPublisher struct{}

func (NoopPublisher) PublishBookingConfirmed(context.Context, queue.BookingConfirmedEvent) error {
	return nil
}

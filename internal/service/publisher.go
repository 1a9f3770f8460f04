package service

import (
	"context"

	"github.com/selamtours/tour-booking-api/internal/queue"
)

// EventPublisher sends a domain event to the named queue.  Booking
// flows publish after commit and ignore the returned error: a dropped
// notification never affects booking state.
type EventPublisher interface {
	Publish(ctx context.Context, queueName string, event any) error
}

// AMQPPublisher publishes events to RabbitMQ.
type AMQPPublisher struct{}

// Publish sends the event to the named durable queue on the broker.
func (AMQPPublisher) Publish(ctx context.Context, queueName string, event any) error {
	return queue.Publish(ctx, queueName, event)
}

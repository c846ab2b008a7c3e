package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"gamestore/internal/models"
	"gamestore/internal/util"

	"go.uber.org/zap"
)

// Topology names the exchange, queues and routing keys the services share.
// It is injected at construction; nothing in this package hard-codes a
// broker name.
type Topology struct {
	Exchange            string
	PaymentQueue        string
	NotificationQueue   string
	OrderPlacedKey      string
	PaymentProcessedKey string
	UserCreatedKey      string
}

// publisher is the client surface the event publisher needs.
type publisher interface {
	Publish(ctx context.Context, message interface{}, exchange, queue, routingKey string) error
}

// EventPublisher publishes the domain events against the configured
// topology.
type EventPublisher struct {
	client publisher
	topo   Topology
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(client publisher, topo Topology) *EventPublisher {
	return &EventPublisher{client: client, topo: topo}
}

// PublishOrderPlaced publishes an OrderPlacedEvent to the payment queue
func (ep *EventPublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	return ep.client.Publish(ctx, event, ep.topo.Exchange, ep.topo.PaymentQueue, ep.topo.OrderPlacedKey)
}

// PublishPaymentProcessed publishes a payment verdict
func (ep *EventPublisher) PublishPaymentProcessed(ctx context.Context, event *models.PaymentStatusEvent) error {
	return ep.client.Publish(ctx, event, ep.topo.Exchange, ep.topo.PaymentQueue, ep.topo.PaymentProcessedKey)
}

// PublishUserRegistered publishes a user signup for the notification service
func (ep *EventPublisher) PublishUserRegistered(ctx context.Context, event *models.UserRegisteredEvent) error {
	return ep.client.Publish(ctx, event, ep.topo.Exchange, ep.topo.NotificationQueue, ep.topo.UserCreatedKey)
}

// DecodeHandler decodes one event body and invokes its domain handler.
type DecodeHandler func(ctx context.Context, body []byte) error

// Registry maps routing keys to typed decode-and-dispatch functions,
// keeping the wire format out of the domain handlers. An unregistered
// routing key is a dispatch error, which rejects the delivery.
type Registry struct {
	handlers map[string]DecodeHandler
	logger   *zap.Logger
}

// NewRegistry creates an empty event registry
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]DecodeHandler),
		logger:   util.GetLogger(),
	}
}

// Register binds a routing key to a decode handler
func (r *Registry) Register(routingKey string, handler DecodeHandler) {
	r.handlers[routingKey] = handler
}

// Dispatch routes one delivery by its routing key. It satisfies
// broker.HandlerFunc.
func (r *Registry) Dispatch(ctx context.Context, routingKey string, body []byte) error {
	handler, ok := r.handlers[routingKey]
	if !ok {
		return fmt.Errorf("no handler registered for routing key %q", routingKey)
	}

	r.logger.Debug("Dispatching event", zap.String("routing_key", routingKey))
	return handler(ctx, body)
}

// OnOrderPlaced adapts an OrderPlacedEvent handler into a DecodeHandler
func OnOrderPlaced(handler func(ctx context.Context, event *models.OrderPlacedEvent) error) DecodeHandler {
	return func(ctx context.Context, body []byte) error {
		var event models.OrderPlacedEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return fmt.Errorf("failed to unmarshal OrderPlacedEvent: %w", err)
		}
		return handler(ctx, &event)
	}
}

// OnPaymentStatus adapts a PaymentStatusEvent handler into a DecodeHandler
func OnPaymentStatus(handler func(ctx context.Context, event *models.PaymentStatusEvent) error) DecodeHandler {
	return func(ctx context.Context, body []byte) error {
		var event models.PaymentStatusEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return fmt.Errorf("failed to unmarshal PaymentStatusEvent: %w", err)
		}
		return handler(ctx, &event)
	}
}

// OnUserRegistered adapts a UserRegisteredEvent handler into a DecodeHandler
func OnUserRegistered(handler func(ctx context.Context, event *models.UserRegisteredEvent) error) DecodeHandler {
	return func(ctx context.Context, body []byte) error {
		var event models.UserRegisteredEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return fmt.Errorf("failed to unmarshal UserRegisteredEvent: %w", err)
		}
		return handler(ctx, &event)
	}
}

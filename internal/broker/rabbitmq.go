package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gamestore/internal/util"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Config carries the connection settings for the bus client. Topology names
// (exchange, queues, routing keys) are passed per call; they live in the
// application config, not here.
type Config struct {
	URL                string
	ReconnectInterval  time.Duration
	Prefetch           int
	AckDelay           time.Duration
	DeadLetterExchange string
}

// HandlerFunc processes one delivery. The routing key is the one the
// message was published with, which on a shared queue is not necessarily
// the key this consumer bound. A non-nil error rejects the delivery without
// requeue.
type HandlerFunc func(ctx context.Context, routingKey string, body []byte) error

// Client is a thin protocol layer over RabbitMQ: durable direct-exchange
// topology, persistent JSON publishes, manual-ack consumption with a
// bounded number of in-flight deliveries per channel.
//
// One broker connection is created lazily and shared; every Publish and
// Subscribe call opens its own channel.
type Client struct {
	cfg    Config
	logger *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
}

// NewClient creates a bus client. No connection is made until the first
// publish or subscribe.
func NewClient(cfg Config) *Client {
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 1
	}
	if cfg.ReconnectInterval <= 0 {
		cfg.ReconnectInterval = 10 * time.Second
	}
	return &Client{
		cfg:    cfg,
		logger: util.GetLogger(),
	}
}

// connection returns the shared connection, dialing if it is absent or has
// been closed under us.
func (c *Client) connection() (*amqp.Connection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && !c.conn.IsClosed() {
		return c.conn, nil
	}

	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial broker: %w", err)
	}
	c.conn = conn
	return conn, nil
}

// Close closes the shared connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || c.conn.IsClosed() {
		return nil
	}
	return c.conn.Close()
}

// declareTopology declares the durable direct exchange and queue and binds
// them by routing key. Declares are idempotent, so publisher and consumer
// can both run them in either order.
func (c *Client) declareTopology(ch *amqp.Channel, exchange, queue, routingKey string) error {
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	var args amqp.Table
	if c.cfg.DeadLetterExchange != "" {
		if err := ch.ExchangeDeclare(c.cfg.DeadLetterExchange, "direct", true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare dead-letter exchange: %w", err)
		}
		dlq := queue + ".dead"
		if _, err := ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare dead-letter queue: %w", err)
		}
		if err := ch.QueueBind(dlq, routingKey, c.cfg.DeadLetterExchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind dead-letter queue: %w", err)
		}
		args = amqp.Table{"x-dead-letter-exchange": c.cfg.DeadLetterExchange}
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, args); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	if err := ch.QueueBind(queue, routingKey, exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", queue, err)
	}
	return nil
}

// Publish serializes message to JSON and publishes it persistently. No
// broker confirmation is awaited; publishing is fire-and-forget.
func (c *Client) Publish(ctx context.Context, message interface{}, exchange, queue, routingKey string) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	conn, err := c.connection()
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := c.declareTopology(ch, exchange, queue, routingKey); err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType:     "application/json",
		ContentEncoding: "utf-8",
		DeliveryMode:    amqp.Persistent,
		Body:            body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s/%s: %w", exchange, routingKey, err)
	}

	util.BusPublishesTotal.WithLabelValues(routingKey).Inc()
	c.logger.Debug("Published message",
		zap.String("exchange", exchange),
		zap.String("routing_key", routingKey))
	return nil
}

// Subscribe consumes the queue with manual acknowledgement until ctx is
// cancelled. The channel QoS limits in-flight deliveries to the configured
// prefetch (one by default), so a second message is not delivered until the
// first is settled. A lost connection is redialed at the reconnect interval.
func (c *Client) Subscribe(ctx context.Context, exchange, queue, routingKey string, handler HandlerFunc) error {
	deliveries, ch, err := c.startConsumer(exchange, queue, routingKey)
	if err != nil {
		return err
	}

	go func() {
		for {
			c.consumeLoop(ctx, deliveries, routingKey, handler)
			ch.Close()

			if ctx.Err() != nil {
				return
			}

			// Deliveries channel closed without cancellation: the broker
			// went away. Keep redialing at the configured interval.
			c.logger.Warn("Consumer lost connection, reconnecting",
				zap.String("queue", queue),
				zap.Duration("interval", c.cfg.ReconnectInterval))
			for {
				select {
				case <-ctx.Done():
					return
				case <-time.After(c.cfg.ReconnectInterval):
				}
				deliveries, ch, err = c.startConsumer(exchange, queue, routingKey)
				if err == nil {
					break
				}
				c.logger.Error("Reconnect failed", zap.String("queue", queue), zap.Error(err))
			}
		}
	}()
	return nil
}

func (c *Client) startConsumer(exchange, queue, routingKey string) (<-chan amqp.Delivery, *amqp.Channel, error) {
	conn, err := c.connection()
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := c.declareTopology(ch, exchange, queue, routingKey); err != nil {
		ch.Close()
		return nil, nil, err
	}
	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		ch.Close()
		return nil, nil, fmt.Errorf("failed to set qos: %w", err)
	}

	deliveries, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, nil, fmt.Errorf("failed to consume %s: %w", queue, err)
	}

	c.logger.Info("Consumer started",
		zap.String("queue", queue),
		zap.String("routing_key", routingKey),
		zap.Int("prefetch", c.cfg.Prefetch))
	return deliveries, ch, nil
}

// consumeLoop drains deliveries until the channel closes or ctx is
// cancelled. An in-flight handler always settles its delivery before the
// loop returns; shutdown does not interrupt it.
func (c *Client) consumeLoop(ctx context.Context, deliveries <-chan amqp.Delivery, routingKey string, handler HandlerFunc) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			c.handleDelivery(ctx, d, routingKey, handler)
		}
	}
}

// handleDelivery invokes the handler and settles the delivery: ack on
// success, nack without requeue on error. Without a dead-letter exchange a
// nacked message is dropped by the broker.
func (c *Client) handleDelivery(ctx context.Context, d amqp.Delivery, routingKey string, handler HandlerFunc) {
	err := handler(ctx, d.RoutingKey, d.Body)

	if c.cfg.AckDelay > 0 {
		time.Sleep(c.cfg.AckDelay)
	}

	if err != nil {
		c.logger.Error("Handler failed, rejecting delivery",
			zap.String("routing_key", d.RoutingKey),
			zap.Error(err))
		util.BusDeliveriesTotal.WithLabelValues(routingKey, "nack").Inc()
		if nackErr := d.Nack(false, false); nackErr != nil {
			c.logger.Error("Failed to nack delivery", zap.Error(nackErr))
		}
		return
	}

	util.BusDeliveriesTotal.WithLabelValues(routingKey, "ack").Inc()
	if ackErr := d.Ack(false); ackErr != nil {
		c.logger.Error("Failed to ack delivery", zap.Error(ackErr))
	}
}

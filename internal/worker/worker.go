package worker

import (
	"context"

	"gamestore/internal/broker"
	"gamestore/internal/service"
	"gamestore/internal/util"

	"go.uber.org/zap"
)

// PaymentResultWorker is the catalog service's consumer: it watches the
// payment queue for verdicts and feeds them to the saga orchestrator.
type PaymentResultWorker struct {
	client *broker.Client
	topo   broker.Topology
	saga   *service.SagaOrchestrator
	logger *zap.Logger
}

// NewPaymentResultWorker creates a new payment result worker
func NewPaymentResultWorker(client *broker.Client, topo broker.Topology, saga *service.SagaOrchestrator) *PaymentResultWorker {
	return &PaymentResultWorker{
		client: client,
		topo:   topo,
		saga:   saga,
		logger: util.GetLogger(),
	}
}

// Start subscribes and returns; consumption runs until ctx is cancelled.
func (w *PaymentResultWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting payment result worker")

	registry := broker.NewRegistry()
	registry.Register(w.topo.PaymentProcessedKey, broker.OnPaymentStatus(w.saga.HandlePaymentProcessed))

	return w.client.Subscribe(ctx, w.topo.Exchange, w.topo.PaymentQueue, w.topo.PaymentProcessedKey, registry.Dispatch)
}

// PaymentRequestWorker is the payment service's consumer: it watches the
// payment queue for placed orders and publishes a verdict for each.
type PaymentRequestWorker struct {
	client    *broker.Client
	topo      broker.Topology
	processor *service.PaymentProcessor
	logger    *zap.Logger
}

// NewPaymentRequestWorker creates a new payment request worker
func NewPaymentRequestWorker(client *broker.Client, topo broker.Topology, processor *service.PaymentProcessor) *PaymentRequestWorker {
	return &PaymentRequestWorker{
		client:    client,
		topo:      topo,
		processor: processor,
		logger:    util.GetLogger(),
	}
}

// Start subscribes and returns; consumption runs until ctx is cancelled.
func (w *PaymentRequestWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting payment request worker")

	registry := broker.NewRegistry()
	registry.Register(w.topo.OrderPlacedKey, broker.OnOrderPlaced(w.processor.HandleOrderPlaced))

	return w.client.Subscribe(ctx, w.topo.Exchange, w.topo.PaymentQueue, w.topo.OrderPlacedKey, registry.Dispatch)
}

// NotificationWorker consumes payment verdicts and user signups and turns
// them into mail.
type NotificationWorker struct {
	client   *broker.Client
	topo     broker.Topology
	notifier *service.NotificationService
	logger   *zap.Logger
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(client *broker.Client, topo broker.Topology, notifier *service.NotificationService) *NotificationWorker {
	return &NotificationWorker{
		client:   client,
		topo:     topo,
		notifier: notifier,
		logger:   util.GetLogger(),
	}
}

// Start subscribes to both event streams and returns; consumption runs
// until ctx is cancelled.
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker")

	registry := broker.NewRegistry()
	registry.Register(w.topo.PaymentProcessedKey, broker.OnPaymentStatus(w.notifier.HandlePaymentProcessed))
	registry.Register(w.topo.UserCreatedKey, broker.OnUserRegistered(w.notifier.HandleUserRegistered))

	if err := w.client.Subscribe(ctx, w.topo.Exchange, w.topo.PaymentQueue, w.topo.PaymentProcessedKey, registry.Dispatch); err != nil {
		return err
	}
	return w.client.Subscribe(ctx, w.topo.Exchange, w.topo.NotificationQueue, w.topo.UserCreatedKey, registry.Dispatch)
}

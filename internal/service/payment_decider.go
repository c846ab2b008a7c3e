package service

import (
	"context"
	"fmt"
	"math/rand"

	"gamestore/internal/models"
	"gamestore/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentDecider produces the verdict for a placed order. The real gateway
// plugs in here; the saga logic never knows which implementation answered.
type PaymentDecider interface {
	Decide(ctx context.Context, order *models.OrderPlacedEvent) (string, error)
}

// RandomDecider is the stand-in gateway: it approves a configurable share
// of orders and rejects the rest.
type RandomDecider struct {
	approvalRate float64
}

// NewRandomDecider creates a decider approving approvalRate of orders
// (clamped to [0, 1]).
func NewRandomDecider(approvalRate float64) *RandomDecider {
	if approvalRate < 0 {
		approvalRate = 0
	}
	if approvalRate > 1 {
		approvalRate = 1
	}
	return &RandomDecider{approvalRate: approvalRate}
}

// Decide returns Approved or Rejected
func (d *RandomDecider) Decide(_ context.Context, _ *models.OrderPlacedEvent) (string, error) {
	if rand.Float64() < d.approvalRate {
		return models.PaymentApproved, nil
	}
	return models.PaymentRejected, nil
}

// PaymentProcessor is the payment service's consumer-side logic: it takes a
// placed order, asks the decider for a verdict and publishes it back on the
// bus. It holds no state of its own; the order payload it echoes back is
// everything the catalog side needs to apply the verdict.
type PaymentProcessor struct {
	decider   PaymentDecider
	publisher PaymentPublisher
	logger    *zap.Logger
}

// NewPaymentProcessor creates a new payment processor
func NewPaymentProcessor(decider PaymentDecider, publisher PaymentPublisher) *PaymentProcessor {
	return &PaymentProcessor{
		decider:   decider,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// HandleOrderPlaced decides one order and publishes the verdict
func (p *PaymentProcessor) HandleOrderPlaced(ctx context.Context, order *models.OrderPlacedEvent) error {
	ctx, span := util.StartSpan(ctx, "PaymentProcessor.HandleOrderPlaced")
	defer span.End()

	status, err := p.decider.Decide(ctx, order)
	if err != nil {
		return fmt.Errorf("payment decision failed: %w", err)
	}

	event := &models.PaymentStatusEvent{
		ID:     uuid.New(),
		Status: status,
		Order:  *order,
	}

	if err := p.publisher.PublishPaymentProcessed(ctx, event); err != nil {
		return fmt.Errorf("failed to publish payment verdict: %w", err)
	}

	util.PaymentDecisionsTotal.WithLabelValues(status).Inc()
	p.logger.Info("Payment verdict published",
		zap.String("event_id", event.ID.String()),
		zap.String("status", status),
		zap.String("player_id", order.UserID.String()),
		zap.String("gallery_id", order.GameID.String()),
		zap.String("price", order.Price.String()))
	return nil
}

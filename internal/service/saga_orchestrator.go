package service

import (
	"context"
	"fmt"
	"time"

	"gamestore/internal/models"
	"gamestore/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventCache is a TTL'd fast path in front of the durable processed_events
// table. Errors and misses fall through to the table.
type EventCache interface {
	HasSeenEvent(ctx context.Context, eventID string) (bool, error)
	MarkEventSeen(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
}

// SagaOrchestrator drives a purchase order through its terminal states when
// the payment verdict arrives. The broker only guarantees at-least-once,
// unordered delivery, so this handler is written to be replayed: a verdict
// already applied is recognized and ignored, and the library's uniqueness
// constraint backs that up.
type SagaOrchestrator struct {
	store      PurchaseStore
	cache      StatusCache
	eventCache EventCache
	statusTTL  time.Duration
	logger     *zap.Logger
}

// NewSagaOrchestrator creates a new saga orchestrator
func NewSagaOrchestrator(store PurchaseStore, cache StatusCache, eventCache EventCache, statusTTL time.Duration) *SagaOrchestrator {
	return &SagaOrchestrator{
		store:      store,
		cache:      cache,
		eventCache: eventCache,
		statusTTL:  statusTTL,
		logger:     util.GetLogger(),
	}
}

// HandlePaymentProcessed applies a payment verdict: Approved grants the
// library entry at the order's snapshot price, Rejected closes the order
// with no grant. Idempotent on the event id.
func (so *SagaOrchestrator) HandlePaymentProcessed(ctx context.Context, event *models.PaymentStatusEvent) error {
	ctx, span := util.StartSpan(ctx, "SagaOrchestrator.HandlePaymentProcessed")
	defer span.End()

	eventID := event.ID.String()

	if so.eventCache != nil {
		seen, err := so.eventCache.HasSeenEvent(ctx, eventID)
		if err != nil {
			so.logger.Warn("Event cache lookup failed", zap.Error(err))
		} else if seen {
			so.logger.Info("Event already processed (cache)", zap.String("event_id", eventID))
			return nil
		}
	}

	processed, err := so.store.IsEventProcessed(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		so.logger.Info("Event already processed", zap.String("event_id", eventID))
		return nil
	}

	so.logger.Info("Handling payment verdict",
		zap.String("event_id", eventID),
		zap.String("status", event.Status),
		zap.String("player_id", event.Order.UserID.String()),
		zap.String("gallery_id", event.Order.GameID.String()))

	order, err := so.store.GetOpenPurchaseOrder(ctx, event.Order.UserID, event.Order.GameID)
	if err != nil {
		return fmt.Errorf("failed to resolve purchase order: %w", err)
	}
	if order == nil {
		// No open order: either a replay whose record already reached a
		// terminal state before the processed-events write landed, or a
		// verdict for an order this system never placed. Nothing to apply.
		so.logger.Warn("No open purchase order for payment verdict",
			zap.String("player_id", event.Order.UserID.String()),
			zap.String("gallery_id", event.Order.GameID.String()))
		return so.finishEvent(ctx, event)
	}

	switch event.Status {
	case models.PaymentApproved:
		if err := so.grantLibraryGame(ctx, order, event); err != nil {
			return err
		}
	case models.PaymentRejected:
		if err := so.store.UpdatePurchaseOrderStatus(ctx, order.ID, models.PurchaseStatusRejected); err != nil {
			return fmt.Errorf("failed to reject purchase order: %w", err)
		}
		util.PurchasesRejectedTotal.Inc()
		so.cacheStatus(ctx, order.ID, models.PurchaseStatusRejected)
		so.logger.Info("Purchase rejected by payment", zap.String("order_id", order.ID.String()))
	default:
		return fmt.Errorf("unknown payment status %q", event.Status)
	}

	return so.finishEvent(ctx, event)
}

func (so *SagaOrchestrator) grantLibraryGame(ctx context.Context, order *models.PurchaseOrder, event *models.PaymentStatusEvent) error {
	if err := so.store.UpdatePurchaseOrderStatus(ctx, order.ID, models.PurchaseStatusApproved); err != nil {
		return fmt.Errorf("failed to approve purchase order: %w", err)
	}

	libraryGame := &models.LibraryGame{
		ID:            uuid.New(),
		GalleryID:     order.GalleryID,
		PlayerID:      order.PlayerID,
		PurchasePrice: event.Order.Price,
	}

	inserted, err := so.store.AddLibraryGame(ctx, libraryGame)
	if err != nil {
		return fmt.Errorf("failed to add library game: %w", err)
	}
	if !inserted {
		// The uniqueness constraint caught a concurrent or replayed grant.
		so.logger.Info("Library entry already present, grant skipped",
			zap.String("player_id", order.PlayerID.String()),
			zap.String("gallery_id", order.GalleryID.String()))
	} else {
		util.PurchasesFulfilledTotal.Inc()
	}

	if err := so.store.UpdatePurchaseOrderStatus(ctx, order.ID, models.PurchaseStatusFulfilled); err != nil {
		return fmt.Errorf("failed to fulfill purchase order: %w", err)
	}
	so.cacheStatus(ctx, order.ID, models.PurchaseStatusFulfilled)

	so.logger.Info("Purchase fulfilled",
		zap.String("order_id", order.ID.String()),
		zap.String("price", event.Order.Price.String()))
	return nil
}

func (so *SagaOrchestrator) finishEvent(ctx context.Context, event *models.PaymentStatusEvent) error {
	eventID := event.ID.String()
	if err := so.store.MarkEventProcessed(ctx, eventID, "PaymentProcessedEvent"); err != nil {
		so.logger.Error("Failed to mark event processed", zap.Error(err))
	}
	if so.eventCache != nil {
		if _, err := so.eventCache.MarkEventSeen(ctx, eventID, 24*time.Hour); err != nil {
			so.logger.Warn("Failed to mark event in cache", zap.Error(err))
		}
	}
	return nil
}

func (so *SagaOrchestrator) cacheStatus(ctx context.Context, orderID uuid.UUID, status string) {
	if err := so.cache.SetPurchaseStatus(ctx, orderID.String(), status, so.statusTTL); err != nil {
		so.logger.Warn("Failed to cache purchase status", zap.Error(err))
	}
}

package service

import (
	"context"
	"fmt"
	"time"

	"gamestore/internal/models"
	"gamestore/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PurchaseService registers purchases: it validates eligibility, prices the
// order at the moment of sale and hands it to the payment process over the
// bus. Ownership is only granted later, when the payment verdict comes back
// (see SagaOrchestrator).
type PurchaseService struct {
	store     PurchaseStore
	cache     StatusCache
	publisher OrderPublisher
	statusTTL time.Duration
	logger    *zap.Logger
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(store PurchaseStore, cache StatusCache, publisher OrderPublisher, statusTTL time.Duration) *PurchaseService {
	return &PurchaseService{
		store:     store,
		cache:     cache,
		publisher: publisher,
		statusTTL: statusTTL,
		logger:    util.GetLogger(),
	}
}

// PurchaseReceipt acknowledges a placed order. It is not proof of
// ownership; the library entry appears only after payment approval.
type PurchaseReceipt struct {
	OrderID   uuid.UUID       `json:"order_id"`
	GalleryID uuid.UUID       `json:"gallery_id"`
	Price     decimal.Decimal `json:"price"`
	Status    string          `json:"status"`
}

// CartPurchaseResult summarizes a cart checkout.
type CartPurchaseResult struct {
	Receipts []PurchaseReceipt `json:"receipts"`
	Skipped  int               `json:"skipped"`
}

// RegisterSinglePurchase validates one purchase and places the order.
func (s *PurchaseService) RegisterSinglePurchase(ctx context.Context, playerID, galleryID uuid.UUID) (*PurchaseReceipt, error) {
	ctx, span := util.StartSpan(ctx, "PurchaseService.RegisterSinglePurchase")
	defer span.End()

	start := time.Now()
	defer func() {
		util.PurchaseLatency.Observe(time.Since(start).Seconds())
	}()

	player, err := s.store.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up player: %w", err)
	}
	if player == nil {
		util.PurchasesFailedTotal.WithLabelValues("player_not_found").Inc()
		return nil, ErrPlayerNotFound
	}

	gallery, err := s.store.GetGalleryGameByID(ctx, galleryID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up gallery game: %w", err)
	}
	if gallery == nil {
		util.PurchasesFailedTotal.WithLabelValues("not_in_catalog").Inc()
		return nil, ErrGameNotInCatalog
	}

	available, err := s.store.IsAvailableForPurchase(ctx, galleryID)
	if err != nil {
		return nil, fmt.Errorf("failed to check availability: %w", err)
	}
	if !available {
		util.PurchasesFailedTotal.WithLabelValues("unavailable").Inc()
		return nil, ErrNotAvailableForPurchase
	}

	owned, err := s.store.HasGameInLibrary(ctx, playerID, galleryID)
	if err != nil {
		return nil, fmt.Errorf("failed to check library: %w", err)
	}
	if owned {
		util.PurchasesFailedTotal.WithLabelValues("already_owned").Inc()
		return nil, ErrAlreadyOwned
	}

	return s.placeOrder(ctx, playerID, gallery)
}

// RegisterCartPurchase checks out the player's cart. Items that are no
// longer available or already owned are skipped, not failed; every item
// that passes goes through the single-purchase flow. The cart is cleared
// unconditionally at the end, skipped items included.
func (s *PurchaseService) RegisterCartPurchase(ctx context.Context, playerID uuid.UUID) (*CartPurchaseResult, error) {
	ctx, span := util.StartSpan(ctx, "PurchaseService.RegisterCartPurchase")
	defer span.End()

	cart, err := s.store.GetCartByPlayerID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart == nil || len(cart.Items) == 0 {
		util.PurchasesFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}

	player, err := s.store.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up player: %w", err)
	}
	if player == nil {
		util.PurchasesFailedTotal.WithLabelValues("player_not_found").Inc()
		return nil, ErrPlayerNotFound
	}

	result := &CartPurchaseResult{}
	for _, item := range cart.Items {
		gallery, err := s.store.GetGalleryGameByID(ctx, item.GalleryID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up gallery game: %w", err)
		}

		available := gallery != nil
		if available {
			available, err = s.store.IsAvailableForPurchase(ctx, item.GalleryID)
			if err != nil {
				return nil, fmt.Errorf("failed to check availability: %w", err)
			}
		}
		if !available {
			s.logger.Info("Skipping unavailable cart item",
				zap.String("player_id", playerID.String()),
				zap.String("gallery_id", item.GalleryID.String()))
			util.CartItemsSkippedTotal.Inc()
			result.Skipped++
			continue
		}

		owned, err := s.store.HasGameInLibrary(ctx, playerID, item.GalleryID)
		if err != nil {
			return nil, fmt.Errorf("failed to check library: %w", err)
		}
		if owned {
			s.logger.Info("Skipping already owned cart item",
				zap.String("player_id", playerID.String()),
				zap.String("gallery_id", item.GalleryID.String()))
			util.CartItemsSkippedTotal.Inc()
			result.Skipped++
			continue
		}

		receipt, err := s.placeOrder(ctx, playerID, gallery)
		if err != nil {
			return nil, err
		}
		result.Receipts = append(result.Receipts, *receipt)
	}

	if err := s.store.ClearCart(ctx, playerID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	return result, nil
}

// placeOrder prices the gallery game now, persists the PLACED saga record
// and publishes the order for payment.
func (s *PurchaseService) placeOrder(ctx context.Context, playerID uuid.UUID, gallery *models.GalleryGame) (*PurchaseReceipt, error) {
	finalPrice := gallery.FinalPrice(time.Now().UTC())

	order := &models.PurchaseOrder{
		ID:        uuid.New(),
		PlayerID:  playerID,
		GalleryID: gallery.ID,
		Price:     finalPrice,
		Status:    models.PurchaseStatusPlaced,
	}
	if err := s.store.CreatePurchaseOrder(ctx, order); err != nil {
		util.PurchasesFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create purchase order: %w", err)
	}

	if err := s.cache.SetPurchaseStatus(ctx, order.ID.String(), order.Status, s.statusTTL); err != nil {
		s.logger.Warn("Failed to cache purchase status", zap.Error(err))
	}

	event := &models.OrderPlacedEvent{
		UserID: playerID,
		GameID: gallery.ID,
		Price:  finalPrice,
	}
	if err := s.publisher.PublishOrderPlaced(ctx, event); err != nil {
		// The order stays PLACED; the status poll surfaces the stall.
		s.logger.Error("Failed to publish OrderPlacedEvent",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
	}

	util.PurchasesPlacedTotal.Inc()
	s.logger.Info("Purchase order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("player_id", playerID.String()),
		zap.String("gallery_id", gallery.ID.String()),
		zap.String("price", finalPrice.String()))

	return &PurchaseReceipt{
		OrderID:   order.ID,
		GalleryID: gallery.ID,
		Price:     finalPrice,
		Status:    order.Status,
	}, nil
}

// GetPurchaseStatus resolves a purchase order's current state, cache first.
func (s *PurchaseService) GetPurchaseStatus(ctx context.Context, orderID uuid.UUID) (string, error) {
	status, err := s.cache.GetPurchaseStatus(ctx, orderID.String())
	if err != nil {
		s.logger.Warn("Status cache lookup failed", zap.Error(err))
	}
	if status != "" {
		return status, nil
	}

	order, err := s.store.GetPurchaseOrderByID(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("failed to load purchase order: %w", err)
	}
	if order == nil {
		return "", ErrOrderNotFound
	}

	if err := s.cache.SetPurchaseStatus(ctx, orderID.String(), order.Status, s.statusTTL); err != nil {
		s.logger.Warn("Failed to cache purchase status", zap.Error(err))
	}
	return order.Status, nil
}

// GetPlayerLibrary lists the player's owned games.
func (s *PurchaseService) GetPlayerLibrary(ctx context.Context, playerID uuid.UUID) ([]models.LibraryGame, error) {
	return s.store.GetPlayerLibrary(ctx, playerID)
}

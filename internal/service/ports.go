package service

import (
	"context"
	"time"

	"gamestore/internal/models"

	"github.com/google/uuid"
)

// PurchaseStore is the slice of the catalog store the purchase flow needs.
// *store.Store satisfies it; tests use in-memory fakes.
type PurchaseStore interface {
	GetPlayerByID(ctx context.Context, id uuid.UUID) (*models.Player, error)
	GetGalleryGameByID(ctx context.Context, id uuid.UUID) (*models.GalleryGame, error)
	IsAvailableForPurchase(ctx context.Context, id uuid.UUID) (bool, error)
	GetCartByPlayerID(ctx context.Context, playerID uuid.UUID) (*models.Cart, error)
	ClearCart(ctx context.Context, playerID uuid.UUID) error

	HasGameInLibrary(ctx context.Context, playerID, galleryID uuid.UUID) (bool, error)
	AddLibraryGame(ctx context.Context, game *models.LibraryGame) (bool, error)
	GetPlayerLibrary(ctx context.Context, playerID uuid.UUID) ([]models.LibraryGame, error)

	CreatePurchaseOrder(ctx context.Context, order *models.PurchaseOrder) error
	GetPurchaseOrderByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	GetOpenPurchaseOrder(ctx context.Context, playerID, galleryID uuid.UUID) (*models.PurchaseOrder, error)
	UpdatePurchaseOrderStatus(ctx context.Context, orderID uuid.UUID, status string) error

	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
}

// OrderPublisher publishes order-placed events.
type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
}

// PaymentPublisher publishes payment verdicts.
type PaymentPublisher interface {
	PublishPaymentProcessed(ctx context.Context, event *models.PaymentStatusEvent) error
}

// StatusCache caches purchase order statuses for the polling endpoint. A
// failing cache is never fatal to the purchase flow.
type StatusCache interface {
	SetPurchaseStatus(ctx context.Context, orderID, status string, ttl time.Duration) error
	GetPurchaseStatus(ctx context.Context, orderID string) (string, error)
}

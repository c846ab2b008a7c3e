package service

import (
	"context"
	"testing"
	"time"

	"gamestore/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placedOrder(store *fakeStore, price int64) (*models.PurchaseOrder, uuid.UUID, uuid.UUID) {
	playerID := seedPlayer(store)
	galleryID := seedGalleryGame(store, price, models.NoPromotion())

	order := &models.PurchaseOrder{
		ID:        uuid.New(),
		PlayerID:  playerID,
		GalleryID: galleryID,
		Price:     decimal.NewFromInt(price),
		Status:    models.PurchaseStatusPlaced,
	}
	_ = store.CreatePurchaseOrder(context.Background(), order)
	return store.orders[order.ID], playerID, galleryID
}

func verdict(status string, playerID, galleryID uuid.UUID, price int64) *models.PaymentStatusEvent {
	return &models.PaymentStatusEvent{
		ID:     uuid.New(),
		Status: status,
		Order: models.OrderPlacedEvent{
			UserID: playerID,
			GameID: galleryID,
			Price:  decimal.NewFromInt(price),
		},
	}
}

func TestApprovedVerdictGrantsLibraryGame(t *testing.T) {
	store := newFakeStore()
	cache := newFakeCache()
	saga := NewSagaOrchestrator(store, cache, cache, time.Hour)

	order, playerID, galleryID := placedOrder(store, 70)
	event := verdict(models.PaymentApproved, playerID, galleryID, 70)

	err := saga.HandlePaymentProcessed(context.Background(), event)
	require.NoError(t, err)

	require.Len(t, store.library, 1)
	granted := store.library[0]
	assert.Equal(t, playerID, granted.PlayerID)
	assert.Equal(t, galleryID, granted.GalleryID)
	assert.True(t, decimal.NewFromInt(70).Equal(granted.PurchasePrice))

	assert.Equal(t, models.PurchaseStatusFulfilled, store.orders[order.ID].Status)
	assert.Equal(t, models.PurchaseStatusFulfilled, cache.statuses[order.ID.String()])
	assert.True(t, store.processed[event.ID.String()])
}

func TestRedeliveredVerdictGrantsOnlyOnce(t *testing.T) {
	store := newFakeStore()
	cache := newFakeCache()
	saga := NewSagaOrchestrator(store, cache, cache, time.Hour)

	_, playerID, galleryID := placedOrder(store, 70)
	event := verdict(models.PaymentApproved, playerID, galleryID, 70)

	require.NoError(t, saga.HandlePaymentProcessed(context.Background(), event))
	require.NoError(t, saga.HandlePaymentProcessed(context.Background(), event))

	assert.Len(t, store.library, 1)
}

func TestRedeliveredVerdictWithColdCacheFallsBackToStore(t *testing.T) {
	store := newFakeStore()
	saga := NewSagaOrchestrator(store, newFakeCache(), newFakeCache(), time.Hour)

	_, playerID, galleryID := placedOrder(store, 70)
	event := verdict(models.PaymentApproved, playerID, galleryID, 70)

	require.NoError(t, saga.HandlePaymentProcessed(context.Background(), event))

	// fresh cache, as after a restart: the processed_events record still holds
	saga = NewSagaOrchestrator(store, newFakeCache(), newFakeCache(), time.Hour)
	require.NoError(t, saga.HandlePaymentProcessed(context.Background(), event))

	assert.Len(t, store.library, 1)
}

func TestRejectedVerdictGrantsNothing(t *testing.T) {
	store := newFakeStore()
	cache := newFakeCache()
	saga := NewSagaOrchestrator(store, cache, cache, time.Hour)

	order, playerID, galleryID := placedOrder(store, 70)
	event := verdict(models.PaymentRejected, playerID, galleryID, 70)

	err := saga.HandlePaymentProcessed(context.Background(), event)
	require.NoError(t, err)

	assert.Empty(t, store.library)
	assert.Equal(t, models.PurchaseStatusRejected, store.orders[order.ID].Status)
	assert.True(t, store.processed[event.ID.String()])
}

func TestVerdictWithoutOpenOrderIsAcknowledged(t *testing.T) {
	store := newFakeStore()
	cache := newFakeCache()
	saga := NewSagaOrchestrator(store, cache, cache, time.Hour)

	event := verdict(models.PaymentApproved, uuid.New(), uuid.New(), 70)

	err := saga.HandlePaymentProcessed(context.Background(), event)
	require.NoError(t, err)

	assert.Empty(t, store.library)
	assert.True(t, store.processed[event.ID.String()], "the event is still retired")
}

func TestUnknownVerdictIsAnError(t *testing.T) {
	store := newFakeStore()
	cache := newFakeCache()
	saga := NewSagaOrchestrator(store, cache, cache, time.Hour)

	_, playerID, galleryID := placedOrder(store, 70)
	event := verdict("Pending", playerID, galleryID, 70)

	err := saga.HandlePaymentProcessed(context.Background(), event)
	assert.Error(t, err)
	assert.Empty(t, store.library)
	assert.False(t, store.processed[event.ID.String()], "a rejected delivery stays unprocessed")
}

func TestLibraryGrantUsesOrderSnapshotNotCurrentPrice(t *testing.T) {
	store := newFakeStore()
	cache := newFakeCache()
	saga := NewSagaOrchestrator(store, cache, cache, time.Hour)

	order, playerID, galleryID := placedOrder(store, 70)

	// price changed after the order was placed
	store.gallery[galleryID].Price = decimal.NewFromInt(200)

	event := verdict(models.PaymentApproved, playerID, galleryID, 70)
	require.NoError(t, saga.HandlePaymentProcessed(context.Background(), event))

	require.Len(t, store.library, 1)
	assert.True(t, order.Price.Equal(store.library[0].PurchasePrice))
}

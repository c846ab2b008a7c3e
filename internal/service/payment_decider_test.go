package service

import (
	"context"
	"testing"

	"gamestore/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePaymentPublisher struct {
	verdicts []models.PaymentStatusEvent
}

func (f *fakePaymentPublisher) PublishPaymentProcessed(_ context.Context, event *models.PaymentStatusEvent) error {
	f.verdicts = append(f.verdicts, *event)
	return nil
}

func TestRandomDeciderExtremes(t *testing.T) {
	ctx := context.Background()
	order := &models.OrderPlacedEvent{UserID: uuid.New(), GameID: uuid.New(), Price: decimal.NewFromInt(10)}

	always := NewRandomDecider(1)
	never := NewRandomDecider(0)

	for i := 0; i < 50; i++ {
		status, err := always.Decide(ctx, order)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentApproved, status)

		status, err = never.Decide(ctx, order)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentRejected, status)
	}
}

func TestRandomDeciderClampsRate(t *testing.T) {
	ctx := context.Background()
	order := &models.OrderPlacedEvent{}

	status, err := NewRandomDecider(7.5).Decide(ctx, order)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentApproved, status)

	status, err = NewRandomDecider(-3).Decide(ctx, order)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRejected, status)
}

// approveAll is a deterministic stand-in for the gateway.
type approveAll struct{}

func (approveAll) Decide(context.Context, *models.OrderPlacedEvent) (string, error) {
	return models.PaymentApproved, nil
}

func TestPaymentProcessorEchoesOrderInVerdict(t *testing.T) {
	publisher := &fakePaymentPublisher{}
	processor := NewPaymentProcessor(approveAll{}, publisher)

	order := &models.OrderPlacedEvent{
		UserID: uuid.New(),
		GameID: uuid.New(),
		Price:  decimal.NewFromInt(70),
	}

	err := processor.HandleOrderPlaced(context.Background(), order)
	require.NoError(t, err)

	require.Len(t, publisher.verdicts, 1)
	v := publisher.verdicts[0]
	assert.NotEqual(t, uuid.Nil, v.ID)
	assert.Equal(t, models.PaymentApproved, v.Status)
	assert.Equal(t, *order, v.Order)
}

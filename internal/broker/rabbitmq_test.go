package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"gamestore/internal/models"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAcknowledger records how a delivery was settled.
type fakeAcknowledger struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAcknowledger) Ack(_ uint64, _ bool) error {
	f.acked = true
	return nil
}

func (f *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func delivery(ack *fakeAcknowledger, routingKey string, body []byte) amqp091.Delivery {
	return amqp091.Delivery{
		Acknowledger: ack,
		RoutingKey:   routingKey,
		Body:         body,
	}
}

func TestHandleDeliveryAcksOnSuccess(t *testing.T) {
	c := NewClient(Config{})
	ack := &fakeAcknowledger{}

	var gotKey string
	var gotBody []byte
	c.handleDelivery(context.Background(), delivery(ack, "OrderPlacedEvent", []byte(`{}`)), "OrderPlacedEvent",
		func(_ context.Context, routingKey string, body []byte) error {
			gotKey = routingKey
			gotBody = body
			return nil
		})

	assert.Equal(t, "OrderPlacedEvent", gotKey)
	assert.Equal(t, []byte(`{}`), gotBody)
	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
}

func TestHandleDeliveryNacksWithoutRequeueOnError(t *testing.T) {
	c := NewClient(Config{})
	ack := &fakeAcknowledger{}

	c.handleDelivery(context.Background(), delivery(ack, "OrderPlacedEvent", []byte(`{}`)), "OrderPlacedEvent",
		func(context.Context, string, []byte) error {
			return errors.New("handler blew up")
		})

	assert.False(t, ack.acked)
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeue, "failed deliveries are dropped, never requeued")
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{Prefetch: 0})
	assert.Equal(t, 1, c.cfg.Prefetch)
	assert.NotZero(t, c.cfg.ReconnectInterval)
}

func TestRegistryDispatchesByRoutingKey(t *testing.T) {
	r := NewRegistry()

	var got *models.PaymentStatusEvent
	r.Register("PaymentProcessedEvent", OnPaymentStatus(func(_ context.Context, event *models.PaymentStatusEvent) error {
		got = event
		return nil
	}))

	event := models.PaymentStatusEvent{
		ID:     uuid.New(),
		Status: models.PaymentApproved,
		Order: models.OrderPlacedEvent{
			UserID: uuid.New(),
			GameID: uuid.New(),
			Price:  decimal.NewFromInt(70),
		},
	}
	body, err := json.Marshal(event)
	require.NoError(t, err)

	err = r.Dispatch(context.Background(), "PaymentProcessedEvent", body)
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, models.PaymentApproved, got.Status)
	assert.True(t, event.Order.Price.Equal(got.Order.Price))
}

func TestRegistryRejectsUnknownRoutingKey(t *testing.T) {
	r := NewRegistry()
	r.Register("OrderPlacedEvent", OnOrderPlaced(func(context.Context, *models.OrderPlacedEvent) error {
		return nil
	}))

	err := r.Dispatch(context.Background(), "SomethingElseEntirely", []byte(`{}`))
	assert.Error(t, err)
}

func TestRegistryRejectsMalformedBody(t *testing.T) {
	r := NewRegistry()
	r.Register("OrderPlacedEvent", OnOrderPlaced(func(context.Context, *models.OrderPlacedEvent) error {
		return nil
	}))

	err := r.Dispatch(context.Background(), "OrderPlacedEvent", []byte(`not json`))
	assert.Error(t, err)
}

func TestOrderPlacedWireFormat(t *testing.T) {
	// the json field names are shared with the other services
	body := []byte(`{"userId":"5a2b0a60-7d57-4b7a-b2cb-1f0f25e0a000","gameId":"9a1f3c4d-0e2b-4f6a-8c7d-2b3c4d5e6f70","price":59.9}`)

	var event models.OrderPlacedEvent
	called := false
	err := OnOrderPlaced(func(_ context.Context, e *models.OrderPlacedEvent) error {
		event = *e
		called = true
		return nil
	})(context.Background(), body)
	require.NoError(t, err)
	require.True(t, called)

	assert.Equal(t, "5a2b0a60-7d57-4b7a-b2cb-1f0f25e0a000", event.UserID.String())
	assert.True(t, decimal.RequireFromString("59.9").Equal(event.Price))
}

package service

import (
	"context"
	"testing"

	"gamestore/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	to       []string
	subjects []string
}

func (r *recordingSender) Send(_ context.Context, to, subject, _ string) error {
	r.to = append(r.to, to)
	r.subjects = append(r.subjects, subject)
	return nil
}

func TestHandleUserRegisteredSendsWelcomeMail(t *testing.T) {
	sender := &recordingSender{}
	svc := NewNotificationService(sender)

	err := svc.HandleUserRegistered(context.Background(), &models.UserRegisteredEvent{
		ID:    uuid.New(),
		Name:  "Ana",
		Email: "ana@example.com",
	})
	require.NoError(t, err)

	require.Len(t, sender.to, 1)
	assert.Equal(t, "ana@example.com", sender.to[0])
}

func TestHandleUserRegisteredSkipsIncompleteEvent(t *testing.T) {
	sender := &recordingSender{}
	svc := NewNotificationService(sender)

	err := svc.HandleUserRegistered(context.Background(), &models.UserRegisteredEvent{
		ID:   uuid.New(),
		Name: "No Email",
	})
	require.NoError(t, err)
	assert.Empty(t, sender.to)
}

func TestHandlePaymentProcessedSubjects(t *testing.T) {
	sender := &recordingSender{}
	svc := NewNotificationService(sender)
	ctx := context.Background()

	approved := &models.PaymentStatusEvent{ID: uuid.New(), Status: models.PaymentApproved}
	rejected := &models.PaymentStatusEvent{ID: uuid.New(), Status: models.PaymentRejected}

	require.NoError(t, svc.HandlePaymentProcessed(ctx, approved))
	require.NoError(t, svc.HandlePaymentProcessed(ctx, rejected))

	require.Len(t, sender.subjects, 2)
	assert.NotEqual(t, sender.subjects[0], sender.subjects[1])
}

package service

import (
	"context"
	"fmt"

	"gamestore/internal/models"
	"gamestore/internal/util"

	"go.uber.org/zap"
)

// EmailSender delivers notification mail. The log sender below stands in
// for a real provider.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogEmailSender writes mail to the log instead of sending it.
type LogEmailSender struct {
	logger *zap.Logger
}

// NewLogEmailSender creates a log-backed email sender
func NewLogEmailSender() *LogEmailSender {
	return &LogEmailSender{logger: util.GetLogger()}
}

// Send logs the mail
func (s *LogEmailSender) Send(_ context.Context, to, subject, body string) error {
	s.logger.Info("Sending email",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body))
	return nil
}

// NotificationService reacts to payment verdicts and user signups with
// email. It is off the purchase-correctness path: a lost notification loses
// a mail, never a purchase.
type NotificationService struct {
	sender EmailSender
	logger *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(sender EmailSender) *NotificationService {
	return &NotificationService{
		sender: sender,
		logger: util.GetLogger(),
	}
}

// HandlePaymentProcessed mails the payment outcome. The event carries no
// address, so the mail is keyed by the player id; the sender resolves it.
func (n *NotificationService) HandlePaymentProcessed(ctx context.Context, event *models.PaymentStatusEvent) error {
	var subject string
	if event.Status == models.PaymentApproved {
		subject = "Your purchase is complete"
	} else {
		subject = "Your payment was declined"
	}

	body := fmt.Sprintf("Order for game %s at %s: %s",
		event.Order.GameID, event.Order.Price.StringFixed(2), event.Status)

	return n.sender.Send(ctx, event.Order.UserID.String(), subject, body)
}

// HandleUserRegistered mails the welcome message
func (n *NotificationService) HandleUserRegistered(ctx context.Context, event *models.UserRegisteredEvent) error {
	if event.Email == "" || event.Name == "" {
		n.logger.Warn("User registered event missing name or email, skipping welcome mail",
			zap.String("user_id", event.ID.String()))
		return nil
	}

	body := fmt.Sprintf("Welcome, %s! Your account is ready.", event.Name)
	return n.sender.Send(ctx, event.Email, "Welcome to the store", body)
}

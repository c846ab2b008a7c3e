package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment verdicts carried by PaymentStatusEvent.
const (
	PaymentApproved = "Approved"
	PaymentRejected = "Rejected"
)

// OrderPlacedEvent is published by the catalog service when a purchase
// passes validation. GameID is the gallery id and Price is the final price
// the order was placed with; the consumer never re-prices.
//
// The json field names are the wire contract shared with the payment and
// notification services and must not change.
type OrderPlacedEvent struct {
	UserID uuid.UUID       `json:"userId"`
	GameID uuid.UUID       `json:"gameId"`
	Price  decimal.Decimal `json:"price"`
}

// PaymentStatusEvent is published by the payment service with its verdict.
// ID is minted by the payment service and doubles as the idempotency key on
// the consuming side.
type PaymentStatusEvent struct {
	ID     uuid.UUID        `json:"id"`
	Status string           `json:"status"`
	Order  OrderPlacedEvent `json:"order"`
}

// UserRegisteredEvent is published by the users service on signup and
// consumed by the notification service for the welcome mail.
type UserRegisteredEvent struct {
	ID    uuid.UUID `json:"guid"`
	Name  string    `json:"nome"`
	Email string    `json:"email"`
}

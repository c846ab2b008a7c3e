package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Game is a catalog entry created by an admin. EAN is the 13-digit article
// code and is unique across the catalog.
type Game struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	EAN         string          `db:"ean" json:"ean"`
	Title       string          `db:"title" json:"title"`
	SubTitle    string          `db:"sub_title" json:"sub_title,omitempty"`
	Genre       string          `db:"genre" json:"genre"`
	Description string          `db:"description" json:"description,omitempty"`
	Price       decimal.Decimal `db:"price" json:"price"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// GalleryGame offers a game for sale at a price, optionally discounted by a
// promotion. One gallery entry per game.
type GalleryGame struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	GameID    uuid.UUID       `db:"game_id" json:"game_id"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Promotion Promotion       `json:"promotion"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// FinalPrice is the selling price at the given instant: the promotion is
// evaluated on every read, never cached, and the result is floored at zero.
func (g *GalleryGame) FinalPrice(now time.Time) decimal.Decimal {
	price := g.Promotion.ApplyDiscount(g.Price, now)
	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}

// Player owns a cart and a library.
type Player struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	DisplayName string    `db:"display_name" json:"display_name"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Cart holds the gallery games a player intends to buy. A player has at
// most one cart; it is cleared after a cart purchase.
type Cart struct {
	ID       uuid.UUID  `db:"id" json:"id"`
	PlayerID uuid.UUID  `db:"player_id" json:"player_id"`
	Items    []CartItem `json:"items"`
}

// CartItem is unique per (cart, gallery).
type CartItem struct {
	ID        uuid.UUID `db:"id" json:"id"`
	CartID    uuid.UUID `db:"cart_id" json:"cart_id"`
	PlayerID  uuid.UUID `db:"player_id" json:"player_id"`
	GalleryID uuid.UUID `db:"gallery_id" json:"gallery_id"`
}

// LibraryGame is the durable proof of ownership. PurchasePrice is the price
// snapshot the order was placed with; neither field is ever updated.
type LibraryGame struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	GalleryID     uuid.UUID       `db:"gallery_id" json:"gallery_id"`
	PlayerID      uuid.UUID       `db:"player_id" json:"player_id"`
	PurchaseDate  time.Time       `db:"purchase_date" json:"purchase_date"`
	PurchasePrice decimal.Decimal `db:"purchase_price" json:"purchase_price"`
}

// Purchase order statuses
const (
	PurchaseStatusPlaced    = "PLACED"
	PurchaseStatusApproved  = "APPROVED"
	PurchaseStatusRejected  = "REJECTED"
	PurchaseStatusFulfilled = "FULFILLED"
)

// PurchaseOrder is the persisted saga record for a purchase awaiting its
// payment verdict. The payment-processed handler looks this row up before
// touching the library, so a redelivered verdict is recognized instead of
// applied twice.
type PurchaseOrder struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	PlayerID  uuid.UUID       `db:"player_id" json:"player_id"`
	GalleryID uuid.UUID       `db:"gallery_id" json:"gallery_id"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Status    string          `db:"status" json:"status"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// ProcessedEvent records consumed event ids for idempotency.
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}

// PurchaseStats aggregates library revenue for the admin stats endpoint.
type PurchaseStats struct {
	TotalPurchases int64           `json:"total_purchases"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	PeriodRevenue  decimal.Decimal `json:"period_revenue"`
}

package store

import (
	"context"
	"database/sql"
	"time"

	"gamestore/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddLibraryGame grants ownership. The (player_id, gallery_id) unique
// constraint makes the insert idempotent: a replayed grant inserts nothing
// and reports inserted=false.
func (s *Store) AddLibraryGame(ctx context.Context, game *models.LibraryGame) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO library_games (id, gallery_id, player_id, purchase_date, purchase_price)
		VALUES ($1, $2, $3, NOW(), $4)
		ON CONFLICT (player_id, gallery_id) DO NOTHING`,
		game.ID, game.GalleryID, game.PlayerID, game.PurchasePrice)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// HasGameInLibrary reports whether the player already owns the gallery game
func (s *Store) HasGameInLibrary(ctx context.Context, playerID, galleryID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM library_games WHERE player_id = $1 AND gallery_id = $2)",
		playerID, galleryID)
	return exists, err
}

// GetPlayerLibrary retrieves a player's owned games, newest purchase first
func (s *Store) GetPlayerLibrary(ctx context.Context, playerID uuid.UUID) ([]models.LibraryGame, error) {
	var library []models.LibraryGame
	err := s.db.SelectContext(ctx, &library,
		"SELECT * FROM library_games WHERE player_id = $1 ORDER BY purchase_date DESC", playerID)
	return library, err
}

// CreatePurchaseOrder persists a new saga record in PLACED state
func (s *Store) CreatePurchaseOrder(ctx context.Context, order *models.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (id, player_id, gallery_id, price, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	return s.db.GetContext(ctx, order, query,
		order.ID, order.PlayerID, order.GalleryID, order.Price, order.Status)
}

// GetPurchaseOrderByID retrieves a purchase order by ID
func (s *Store) GetPurchaseOrderByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	err := s.db.GetContext(ctx, &order, "SELECT * FROM purchase_orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOpenPurchaseOrder finds the oldest PLACED order for a (player, gallery)
// pair. The order-placed payload carries no order id, so the payment verdict
// is matched back to its saga record this way.
func (s *Store) GetOpenPurchaseOrder(ctx context.Context, playerID, galleryID uuid.UUID) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	err := s.db.GetContext(ctx, &order, `
		SELECT * FROM purchase_orders
		WHERE player_id = $1 AND gallery_id = $2 AND status = $3
		ORDER BY created_at
		LIMIT 1`,
		playerID, galleryID, models.PurchaseStatusPlaced)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdatePurchaseOrderStatus moves a saga record to a new state
func (s *Store) UpdatePurchaseOrderStatus(ctx context.Context, orderID uuid.UUID, status string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE purchase_orders SET status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID)
	return err
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}

// GetPurchaseStats aggregates library revenue, optionally over a period
func (s *Store) GetPurchaseStats(ctx context.Context, start, end *time.Time) (*models.PurchaseStats, error) {
	stats := &models.PurchaseStats{
		TotalRevenue:  decimal.Zero,
		PeriodRevenue: decimal.Zero,
	}

	err := s.db.GetContext(ctx, &stats.TotalPurchases,
		"SELECT COUNT(*) FROM library_games")
	if err != nil {
		return nil, err
	}

	err = s.db.GetContext(ctx, &stats.TotalRevenue,
		"SELECT COALESCE(SUM(purchase_price), 0) FROM library_games")
	if err != nil {
		return nil, err
	}

	if start != nil && end != nil {
		err = s.db.GetContext(ctx, &stats.PeriodRevenue, `
			SELECT COALESCE(SUM(purchase_price), 0) FROM library_games
			WHERE purchase_date BETWEEN $1 AND $2`, *start, *end)
		if err != nil {
			return nil, err
		}
	}

	return stats, nil
}

package store

import (
	"context"
	"database/sql"
	"time"

	"gamestore/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// galleryRow is the flat scan target for gallery_games; the promotion
// columns are folded back into the value object on the way out.
type galleryRow struct {
	ID         uuid.UUID       `db:"id"`
	GameID     uuid.UUID       `db:"game_id"`
	Price      decimal.Decimal `db:"price"`
	PromoType  string          `db:"promo_type"`
	PromoValue decimal.Decimal `db:"promo_value"`
	PromoStart time.Time       `db:"promo_start"`
	PromoEnd   time.Time       `db:"promo_end"`
	CreatedAt  time.Time       `db:"created_at"`
}

func (r galleryRow) toModel() *models.GalleryGame {
	return &models.GalleryGame{
		ID:     r.ID,
		GameID: r.GameID,
		Price:  r.Price,
		Promotion: models.Promotion{
			Type:    r.PromoType,
			Value:   r.PromoValue,
			StartOf: r.PromoStart,
			EndOf:   r.PromoEnd,
		},
		CreatedAt: r.CreatedAt,
	}
}

// CreateGalleryGame puts a game on sale. One gallery entry per game.
func (s *Store) CreateGalleryGame(ctx context.Context, gallery *models.GalleryGame) error {
	query := `
		INSERT INTO gallery_games (id, game_id, price, promo_type, promo_value, promo_start, promo_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	p := gallery.Promotion
	return s.db.GetContext(ctx, &gallery.CreatedAt, query,
		gallery.ID, gallery.GameID, gallery.Price, p.Type, p.Value, p.StartOf, p.EndOf)
}

// GetGalleryGameByID retrieves a gallery entry by ID
func (s *Store) GetGalleryGameByID(ctx context.Context, id uuid.UUID) (*models.GalleryGame, error) {
	var row galleryRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM gallery_games WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

// ListGalleryGames retrieves the sellable catalog
func (s *Store) ListGalleryGames(ctx context.Context) ([]models.GalleryGame, error) {
	var rows []galleryRow
	err := s.db.SelectContext(ctx, &rows, "SELECT * FROM gallery_games ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	gallery := make([]models.GalleryGame, 0, len(rows))
	for _, r := range rows {
		gallery = append(gallery, *r.toModel())
	}
	return gallery, nil
}

// IsAvailableForPurchase reports whether a gallery entry is sellable.
func (s *Store) IsAvailableForPurchase(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM gallery_games WHERE id = $1)", id)
	return exists, err
}

// UpdateGalleryGamePrice changes the base selling price
func (s *Store) UpdateGalleryGamePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE gallery_games SET price = $1 WHERE id = $2", price, id)
	return err
}

// ApplyPromotion replaces the promotion on a gallery entry. Last write wins;
// overlapping promotions are never merged.
func (s *Store) ApplyPromotion(ctx context.Context, id uuid.UUID, promo models.Promotion) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE gallery_games
		SET promo_type = $1, promo_value = $2, promo_start = $3, promo_end = $4
		WHERE id = $5`,
		promo.Type, promo.Value, promo.StartOf, promo.EndOf, id)
	return err
}

// RemoveGalleryGame takes a game off sale
func (s *Store) RemoveGalleryGame(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM gallery_games WHERE id = $1", id)
	return err
}

// GetCartByPlayerID retrieves a player's cart with its items. Returns nil
// when the player has no cart yet.
func (s *Store) GetCartByPlayerID(ctx context.Context, playerID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.GetContext(ctx, &cart,
		"SELECT id, player_id FROM carts WHERE player_id = $1", playerID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	err = s.db.SelectContext(ctx, &cart.Items,
		"SELECT * FROM cart_items WHERE cart_id = $1", cart.ID)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddCartItem adds a gallery game to the player's cart, creating the cart
// on first use. Adding the same gallery entry twice is a no-op (unique on
// cart_id, gallery_id).
func (s *Store) AddCartItem(ctx context.Context, playerID, galleryID uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var cartID uuid.UUID
	err = tx.GetContext(ctx, &cartID,
		"SELECT id FROM carts WHERE player_id = $1", playerID)
	if err == sql.ErrNoRows {
		cartID = uuid.New()
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO carts (id, player_id) VALUES ($1, $2)", cartID, playerID); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO cart_items (id, cart_id, player_id, gallery_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, gallery_id) DO NOTHING`,
		uuid.New(), cartID, playerID, galleryID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// RemoveCartItem removes one gallery game from the player's cart
func (s *Store) RemoveCartItem(ctx context.Context, playerID, galleryID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE gallery_id = $1
		  AND cart_id IN (SELECT id FROM carts WHERE player_id = $2)`,
		galleryID, playerID)
	return err
}

// ClearCart removes every item from the player's cart
func (s *Store) ClearCart(ctx context.Context, playerID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE cart_id IN (SELECT id FROM carts WHERE player_id = $1)`,
		playerID)
	return err
}

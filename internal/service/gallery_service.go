package service

import (
	"context"
	"fmt"
	"time"
	"unicode"

	"gamestore/internal/models"
	"gamestore/internal/store"
	"gamestore/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GalleryService covers the admin side of the catalog: creating games,
// putting them on sale and managing promotions.
type GalleryService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewGalleryService creates a new gallery service
func NewGalleryService(store *store.Store) *GalleryService {
	return &GalleryService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// GalleryGameView is a gallery entry with its effective price at read time.
type GalleryGameView struct {
	models.GalleryGame
	FinalPrice decimal.Decimal `json:"final_price"`
}

func validateEAN(ean string) error {
	if len(ean) != 13 {
		return fmt.Errorf("EAN must be 13 digits, got %d", len(ean))
	}
	for _, r := range ean {
		if !unicode.IsDigit(r) {
			return fmt.Errorf("EAN must contain only digits")
		}
	}
	return nil
}

// CreateGame adds a game to the catalog
func (s *GalleryService) CreateGame(ctx context.Context, game *models.Game) error {
	if err := validateEAN(game.EAN); err != nil {
		return err
	}
	if game.Title == "" {
		return fmt.Errorf("title is required")
	}
	if game.Genre == "" {
		return fmt.Errorf("genre is required")
	}

	existing, err := s.store.GetGameByEAN(ctx, game.EAN)
	if err != nil {
		return fmt.Errorf("failed to check EAN: %w", err)
	}
	if existing != nil {
		return ErrDuplicateEAN
	}

	game.ID = uuid.New()
	if err := s.store.CreateGame(ctx, game); err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	s.logger.Info("Game created",
		zap.String("game_id", game.ID.String()),
		zap.String("ean", game.EAN),
		zap.String("title", game.Title))
	return nil
}

// PublishToGallery puts a catalog game on sale at the given price
func (s *GalleryService) PublishToGallery(ctx context.Context, gameID uuid.UUID, price decimal.Decimal) (*models.GalleryGame, error) {
	if price.IsNegative() {
		return nil, fmt.Errorf("price must not be negative")
	}

	game, err := s.store.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up game: %w", err)
	}
	if game == nil {
		return nil, ErrGameNotFound
	}

	gallery := &models.GalleryGame{
		ID:        uuid.New(),
		GameID:    gameID,
		Price:     price,
		Promotion: models.NoPromotion(),
	}
	if err := s.store.CreateGalleryGame(ctx, gallery); err != nil {
		return nil, fmt.Errorf("failed to create gallery game: %w", err)
	}

	s.logger.Info("Game published to gallery",
		zap.String("gallery_id", gallery.ID.String()),
		zap.String("game_id", gameID.String()),
		zap.String("price", price.String()))
	return gallery, nil
}

// GetGalleryGame returns one gallery entry with its price evaluated now
func (s *GalleryService) GetGalleryGame(ctx context.Context, id uuid.UUID) (*GalleryGameView, error) {
	gallery, err := s.store.GetGalleryGameByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if gallery == nil {
		return nil, ErrGameNotInCatalog
	}
	return &GalleryGameView{
		GalleryGame: *gallery,
		FinalPrice:  gallery.FinalPrice(time.Now().UTC()),
	}, nil
}

// ListGallery returns the sellable catalog with prices evaluated now
func (s *GalleryService) ListGallery(ctx context.Context) ([]GalleryGameView, error) {
	gallery, err := s.store.ListGalleryGames(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	views := make([]GalleryGameView, 0, len(gallery))
	for i := range gallery {
		views = append(views, GalleryGameView{
			GalleryGame: gallery[i],
			FinalPrice:  gallery[i].FinalPrice(now),
		})
	}
	return views, nil
}

// ApplyPromotion attaches a discount rule to a gallery entry. The new
// promotion fully replaces the old one.
func (s *GalleryService) ApplyPromotion(ctx context.Context, galleryID uuid.UUID, promoType string, value decimal.Decimal, startOf, endOf time.Time) error {
	promo, err := models.NewPromotion(promoType, value, startOf, endOf)
	if err != nil {
		return err
	}

	gallery, err := s.store.GetGalleryGameByID(ctx, galleryID)
	if err != nil {
		return fmt.Errorf("failed to look up gallery game: %w", err)
	}
	if gallery == nil {
		return ErrGameNotInCatalog
	}

	if err := s.store.ApplyPromotion(ctx, galleryID, promo); err != nil {
		return fmt.Errorf("failed to apply promotion: %w", err)
	}

	s.logger.Info("Promotion applied",
		zap.String("gallery_id", galleryID.String()),
		zap.String("type", promo.Type),
		zap.String("value", promo.Value.String()),
		zap.Time("start_of", promo.StartOf),
		zap.Time("end_of", promo.EndOf))
	return nil
}

// RemovePromotion resets a gallery entry to its undiscounted price
func (s *GalleryService) RemovePromotion(ctx context.Context, galleryID uuid.UUID) error {
	return s.store.ApplyPromotion(ctx, galleryID, models.NoPromotion())
}

// UpdatePrice changes the base selling price of a gallery entry
func (s *GalleryService) UpdatePrice(ctx context.Context, galleryID uuid.UUID, price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}
	return s.store.UpdateGalleryGamePrice(ctx, galleryID, price)
}

// RemoveFromGallery takes a game off sale
func (s *GalleryService) RemoveFromGallery(ctx context.Context, galleryID uuid.UUID) error {
	return s.store.RemoveGalleryGame(ctx, galleryID)
}

// GetPurchaseStats aggregates library revenue for the admin dashboard
func (s *GalleryService) GetPurchaseStats(ctx context.Context, start, end *time.Time) (*models.PurchaseStats, error) {
	return s.store.GetPurchaseStats(ctx, start, end)
}

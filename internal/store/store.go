package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gamestore/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetPlayerByID retrieves a player by ID
func (s *Store) GetPlayerByID(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	var player models.Player
	err := s.db.GetContext(ctx, &player, "SELECT * FROM players WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// CreatePlayer creates a new player
func (s *Store) CreatePlayer(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (id, user_id, display_name)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	return s.db.GetContext(ctx, &player.CreatedAt, query,
		player.ID, player.UserID, player.DisplayName)
}

// CreateGame creates a new catalog game. The EAN is unique; a duplicate
// insert fails at the constraint.
func (s *Store) CreateGame(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (id, ean, title, sub_title, genre, description, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	return s.db.GetContext(ctx, &game.CreatedAt, query,
		game.ID, game.EAN, game.Title, game.SubTitle, game.Genre, game.Description, game.Price)
}

// GetGameByID retrieves a game by ID
func (s *Store) GetGameByID(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	var game models.Game
	err := s.db.GetContext(ctx, &game, "SELECT * FROM games WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// GetGameByEAN retrieves a game by its article code
func (s *Store) GetGameByEAN(ctx context.Context, ean string) (*models.Game, error) {
	var game models.Game
	err := s.db.GetContext(ctx, &game, "SELECT * FROM games WHERE ean = $1", ean)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// ListGames retrieves all catalog games
func (s *Store) ListGames(ctx context.Context) ([]models.Game, error) {
	var games []models.Game
	err := s.db.SelectContext(ctx, &games, "SELECT * FROM games ORDER BY title")
	return games, err
}

// UpdateGame updates a game's mutable fields
func (s *Store) UpdateGame(ctx context.Context, game *models.Game) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE games
		SET ean = $1, title = $2, sub_title = $3, genre = $4, description = $5, price = $6
		WHERE id = $7`,
		game.EAN, game.Title, game.SubTitle, game.Genre, game.Description, game.Price, game.ID)
	return err
}

package service

import "errors"

// Validation failures reported synchronously to the caller. They are never
// retried.
var (
	ErrPlayerNotFound          = errors.New("player not found")
	ErrGameNotInCatalog        = errors.New("game not found in gallery")
	ErrNotAvailableForPurchase = errors.New("game is not available for purchase")
	ErrAlreadyOwned            = errors.New("player already owns this game")
	ErrEmptyCart               = errors.New("cart is empty")
	ErrGameNotFound            = errors.New("game not found")
	ErrDuplicateEAN            = errors.New("a game with this EAN already exists")
	ErrOrderNotFound           = errors.New("purchase order not found")
)

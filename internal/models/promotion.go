package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Promotion types
const (
	PromotionNone               = "NONE"
	PromotionFixedDiscount      = "FIXED_DISCOUNT"
	PromotionPercentageDiscount = "PERCENTAGE_DISCOUNT"
)

// ErrInvalidPromotionWindow is returned when a promotion window ends before
// it starts.
var ErrInvalidPromotionWindow = errors.New("promotion end must be after start")

// Promotion is a time-boxed discount rule attached to a gallery game. It is
// a value type: two promotions with the same type, value and window are the
// same promotion.
type Promotion struct {
	Type    string          `db:"promo_type" json:"type"`
	Value   decimal.Decimal `db:"promo_value" json:"value"`
	StartOf time.Time       `db:"promo_start" json:"start_of"`
	EndOf   time.Time       `db:"promo_end" json:"end_of"`
}

// NoPromotion is the inactive sentinel: zero value, zero window.
func NoPromotion() Promotion {
	return Promotion{Type: PromotionNone, Value: decimal.Zero}
}

// NewPromotion builds a promotion, rejecting windows that end before they
// start. The None sentinel is exempt from the window check.
func NewPromotion(promoType string, value decimal.Decimal, startOf, endOf time.Time) (Promotion, error) {
	if promoType != PromotionNone && !endOf.After(startOf) {
		return Promotion{}, ErrInvalidPromotionWindow
	}
	return Promotion{Type: promoType, Value: value, StartOf: startOf, EndOf: endOf}, nil
}

// IsActive reports whether the promotion applies at the given instant.
// Both window boundaries are inclusive; None is never active.
func (p Promotion) IsActive(now time.Time) bool {
	if p.Type == PromotionNone {
		return false
	}
	return !now.Before(p.StartOf) && !now.After(p.EndOf)
}

// ApplyDiscount returns the discounted price at the given instant. An
// inactive promotion leaves the price unchanged. A fixed discount may drive
// the result negative; the floor is applied at the gallery level.
func (p Promotion) ApplyDiscount(price decimal.Decimal, now time.Time) decimal.Decimal {
	if !p.IsActive(now) {
		return price
	}
	switch p.Type {
	case PromotionFixedDiscount:
		return price.Sub(p.Value)
	case PromotionPercentageDiscount:
		return price.Mul(decimal.NewFromInt(1).Sub(p.Value.Div(decimal.NewFromInt(100))))
	default:
		return price
	}
}

// Equal compares promotions by value.
func (p Promotion) Equal(other Promotion) bool {
	return p.Type == other.Type &&
		p.Value.Equal(other.Value) &&
		p.StartOf.Equal(other.StartOf) &&
		p.EndOf.Equal(other.EndOf)
}

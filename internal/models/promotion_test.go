package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeWindow(now time.Time) (time.Time, time.Time) {
	return now.Add(-24 * time.Hour), now.Add(24 * time.Hour)
}

func TestNewPromotionRejectsInvertedWindow(t *testing.T) {
	now := time.Now().UTC()

	_, err := NewPromotion(PromotionFixedDiscount, decimal.NewFromInt(10), now, now.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrInvalidPromotionWindow)

	// zero-length window is also invalid
	_, err = NewPromotion(PromotionFixedDiscount, decimal.NewFromInt(10), now, now)
	assert.ErrorIs(t, err, ErrInvalidPromotionWindow)
}

func TestNoPromotionNeverActive(t *testing.T) {
	p := NoPromotion()

	assert.False(t, p.IsActive(time.Now().UTC()))
	assert.False(t, p.IsActive(time.Time{}))

	price := decimal.NewFromInt(100)
	assert.True(t, price.Equal(p.ApplyDiscount(price, time.Now().UTC())))
}

func TestIsActiveBoundariesInclusive(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	p, err := NewPromotion(PromotionFixedDiscount, decimal.NewFromInt(10), start, end)
	require.NoError(t, err)

	assert.True(t, p.IsActive(start), "start boundary is inclusive")
	assert.True(t, p.IsActive(end), "end boundary is inclusive")
	assert.True(t, p.IsActive(start.Add(time.Hour)))
	assert.False(t, p.IsActive(start.Add(-time.Nanosecond)))
	assert.False(t, p.IsActive(end.Add(time.Nanosecond)))
}

func TestFixedDiscount(t *testing.T) {
	now := time.Now().UTC()
	start, end := activeWindow(now)

	p, err := NewPromotion(PromotionFixedDiscount, decimal.NewFromInt(30), start, end)
	require.NoError(t, err)

	got := p.ApplyDiscount(decimal.NewFromInt(100), now)
	assert.True(t, decimal.NewFromInt(70).Equal(got))
}

func TestFixedDiscountLargerThanPriceGoesNegative(t *testing.T) {
	now := time.Now().UTC()
	start, end := activeWindow(now)

	p, err := NewPromotion(PromotionFixedDiscount, decimal.NewFromInt(150), start, end)
	require.NoError(t, err)

	// the promotion itself does not floor; the gallery does
	got := p.ApplyDiscount(decimal.NewFromInt(100), now)
	assert.True(t, got.IsNegative())
}

func TestPercentageDiscount(t *testing.T) {
	now := time.Now().UTC()
	start, end := activeWindow(now)

	cases := []struct {
		name  string
		value int64
		price int64
		want  string
	}{
		{"quarter off", 25, 100, "75"},
		{"zero percent", 0, 100, "100"},
		{"full discount", 100, 100, "0"},
		{"half off odd price", 50, 59, "29.5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPromotion(PromotionPercentageDiscount, decimal.NewFromInt(tc.value), start, end)
			require.NoError(t, err)

			got := p.ApplyDiscount(decimal.NewFromInt(tc.price), now)
			assert.True(t, decimal.RequireFromString(tc.want).Equal(got), "got %s", got)
		})
	}
}

func TestExpiredPromotionLeavesPriceUnchanged(t *testing.T) {
	now := time.Now().UTC()

	p, err := NewPromotion(PromotionPercentageDiscount, decimal.NewFromInt(50), now.Add(-10*24*time.Hour), now.Add(-24*time.Hour))
	require.NoError(t, err)

	price := decimal.NewFromInt(100)
	assert.True(t, price.Equal(p.ApplyDiscount(price, now)))
}

func TestFutureWindowNotYetActive(t *testing.T) {
	now := time.Now().UTC()

	p, err := NewPromotion(PromotionFixedDiscount, decimal.NewFromInt(10), now.Add(24*time.Hour), now.Add(48*time.Hour))
	require.NoError(t, err)

	price := decimal.NewFromInt(100)
	assert.True(t, price.Equal(p.ApplyDiscount(price, now)))
}

func TestGalleryGameFinalPriceFloorsAtZero(t *testing.T) {
	now := time.Now().UTC()
	start, end := activeWindow(now)

	promo, err := NewPromotion(PromotionFixedDiscount, decimal.NewFromInt(150), start, end)
	require.NoError(t, err)

	g := &GalleryGame{Price: decimal.NewFromInt(100), Promotion: promo}
	assert.True(t, decimal.Zero.Equal(g.FinalPrice(now)))
}

func TestGalleryGameFinalPriceWithoutPromotion(t *testing.T) {
	g := &GalleryGame{Price: decimal.NewFromInt(100), Promotion: NoPromotion()}
	assert.True(t, decimal.NewFromInt(100).Equal(g.FinalPrice(time.Now().UTC())))
}

func TestPromotionEqual(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	a, err := NewPromotion(PromotionFixedDiscount, decimal.NewFromInt(10), start, end)
	require.NoError(t, err)
	b, err := NewPromotion(PromotionFixedDiscount, decimal.NewFromFloat(10.0), start, end)
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(NoPromotion()))
}

package delivery

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFee(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		isPickup bool
		isMonash bool
		want     string
	}{
		{"pickup is always free", true, false, "0.00"},
		{"monash pickup is free", true, true, "0.00"},
		{"monash delivery is free", false, true, "0.00"},
		{"outside delivery pays the flat fee", false, false, "20.00"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Fee(tt.isPickup, tt.isMonash).StringFixed(2))
		})
	}
}

func TestPickupDiscount(t *testing.T) {
	t.Parallel()

	promo := decimal.RequireFromString("0.20")

	tests := []struct {
		name      string
		isPickup  bool
		isMonash  bool
		promoRate decimal.Decimal
		want      string
	}{
		{"monash pickup without promo", true, true, decimal.Zero, "0.05"},
		{"granted promo suppresses it", true, true, promo, "0.00"},
		{"delivery never qualifies", false, true, decimal.Zero, "0.00"},
		{"non-monash pickup never qualifies", true, false, decimal.Zero, "0.00"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, PickupDiscount(tt.isPickup, tt.isMonash, tt.promoRate).StringFixed(2))
		})
	}
}

func TestStoreAt(t *testing.T) {
	t.Parallel()

	_, err := StoreAt(-1)
	assert.ErrorIs(t, err, ErrInvalidSelection)
	_, err = StoreAt(len(Stores()))
	assert.ErrorIs(t, err, ErrInvalidSelection)

	st, err := StoreAt(0)
	require.NoError(t, err)
	assert.Equal(t, "Monash Caulfield", st.Name)
}

func TestStores_ReturnsCopy(t *testing.T) {
	t.Parallel()

	list := Stores()
	require.Len(t, list, 3)
	list[0].Name = "tampered"

	fresh, err := StoreAt(0)
	require.NoError(t, err)
	assert.Equal(t, "Monash Caulfield", fresh.Name)
}

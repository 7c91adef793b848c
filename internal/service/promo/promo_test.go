package promo

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monashmerchant/shop/internal/models"
	"github.com/monashmerchant/shop/internal/repo"
	"github.com/monashmerchant/shop/internal/store/storetest"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newEngine(t *testing.T, codes ...models.PromoCode) *Engine {
	t.Helper()
	ctx := context.Background()

	r, err := repo.NewPromoRepo(ctx, storetest.New())
	require.NoError(t, err)
	for _, pc := range codes {
		require.NoError(t, r.Put(ctx, pc))
	}
	return &Engine{Codes: r}
}

func allConditions() models.PromoCode {
	return models.PromoCode{
		Code: "STRICT",
		Rate: dec("0.10"),
		Conditions: models.Conditions{
			FirstTimePickup: true,
			PickupOnly:      true,
			VIPOnly:         true,
			MonashOnly:      true,
			MinOrder:        dec("50"),
		},
	}
}

// passingContext satisfies every condition of allConditions.
func passingContext() Context {
	return Context{
		IsPickup:      true,
		IsFirstPickup: true,
		IsVIP:         true,
		IsMonash:      true,
		Subtotal:      dec("60"),
	}
}

func TestValidate_UnknownCode(t *testing.T) {
	t.Parallel()
	e := newEngine(t)

	_, err := e.Validate("NOPE", passingContext())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidate_CaseInsensitiveLookup(t *testing.T) {
	t.Parallel()
	e := newEngine(t, models.PromoCode{Code: "VIP10", Rate: dec("0.10")})

	res, err := e.Validate("vip10", Context{Subtotal: dec("10")})
	require.NoError(t, err)
	assert.Equal(t, "VIP10", res.Code)
	assert.Equal(t, "0.10", res.Rate.StringFixed(2))
}

func TestValidate_ConditionOrder(t *testing.T) {
	t.Parallel()
	e := newEngine(t, allConditions())

	tests := []struct {
		name   string
		mutate func(*Context)
		want   error
	}{
		{"first pickup checked first", func(c *Context) {
			c.IsFirstPickup = false
			c.IsPickup = false
			c.IsVIP = false
			c.IsMonash = false
			c.Subtotal = dec("1")
		}, ErrFirstPickupOnly},
		{"pickup before membership", func(c *Context) {
			c.IsPickup = false
			c.IsVIP = false
			c.IsMonash = false
			c.Subtotal = dec("1")
		}, ErrPickupOnly},
		{"vip before monash", func(c *Context) {
			c.IsVIP = false
			c.IsMonash = false
			c.Subtotal = dec("1")
		}, ErrVIPOnly},
		{"monash before min order", func(c *Context) {
			c.IsMonash = false
			c.Subtotal = dec("1")
		}, ErrMonashOnly},
		{"min order last", func(c *Context) {
			c.Subtotal = dec("49.99")
		}, ErrMinOrder},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			pctx := passingContext()
			tt.mutate(&pctx)

			_, err := e.Validate("STRICT", pctx)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	res, err := e.Validate("STRICT", passingContext())
	require.NoError(t, err)
	assert.True(t, res.MarkFirstPickup)
}

func TestValidate_DeliveryOnly(t *testing.T) {
	t.Parallel()
	e := newEngine(t, models.PromoCode{
		Code:       "MONASH15",
		Rate:       dec("0.15"),
		Conditions: models.Conditions{DeliveryOnly: true},
	})

	_, err := e.Validate("MONASH15", Context{IsPickup: true, Subtotal: dec("40")})
	assert.ErrorIs(t, err, ErrDeliveryOnly)

	res, err := e.Validate("MONASH15", Context{IsPickup: false, Subtotal: dec("40")})
	require.NoError(t, err)
	assert.False(t, res.MarkFirstPickup)
}

func TestValidate_MinOrderBoundary(t *testing.T) {
	t.Parallel()
	e := newEngine(t, models.PromoCode{
		Code:       "VIP10",
		Rate:       dec("0.10"),
		Conditions: models.Conditions{VIPOnly: true, MinOrder: dec("50")},
	})

	_, err := e.Validate("VIP10", Context{IsVIP: true, Subtotal: dec("49.99")})
	assert.ErrorIs(t, err, ErrMinOrder)

	// spending exactly the minimum qualifies
	res, err := e.Validate("VIP10", Context{IsVIP: true, Subtotal: dec("50")})
	require.NoError(t, err)
	assert.Equal(t, "0.10", res.Rate.StringFixed(2))
}

func TestCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEngine(t, models.PromoCode{Code: "VIP10", Rate: dec("0.10")})

	_, err := e.Create(ctx, models.PromoCode{Code: "BAD", Rate: dec("1.5")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.Create(ctx, models.PromoCode{Code: "vip10", Rate: dec("0.20")})
	assert.ErrorIs(t, err, ErrConflict)

	created, err := e.Create(ctx, models.PromoCode{Code: "save5", Rate: dec("0.05")})
	require.NoError(t, err)
	assert.Equal(t, "SAVE5", created.Code)
}

func TestUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEngine(t, models.PromoCode{Code: "VIP10", Rate: dec("0.10"), Description: "old"})

	_, err := e.Update(ctx, "NOPE", nil, nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	rate := dec("0.25")
	desc := "new description"
	updated, err := e.Update(ctx, "vip10", &rate, &desc, &models.Conditions{VIPOnly: true})
	require.NoError(t, err)
	assert.Equal(t, "0.25", updated.Rate.StringFixed(2))
	assert.Equal(t, "new description", updated.Description)
	assert.True(t, updated.Conditions.VIPOnly)

	bad := dec("0")
	_, err = e.Update(ctx, "VIP10", &bad, nil, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEngine(t, models.PromoCode{Code: "VIP10", Rate: dec("0.10")})

	assert.ErrorIs(t, e.Delete(ctx, "NOPE"), ErrNotFound)
	require.NoError(t, e.Delete(ctx, "vip10"))
	assert.Empty(t, e.List())
}

func TestMutations_SurvivePersistenceFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := storetest.New()
	r, err := repo.NewPromoRepo(ctx, st)
	require.NoError(t, err)
	e := &Engine{Codes: r}

	st.FailSave = true
	created, err := e.Create(ctx, models.PromoCode{Code: "SAVE5", Rate: dec("0.05")})
	require.Error(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "SAVE5", created.Code)

	// the code is usable despite the failed write
	_, err = e.Validate("SAVE5", Context{Subtotal: dec("10")})
	assert.NoError(t, err)
}

package promo

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/monashmerchant/shop/internal/models"
	"github.com/monashmerchant/shop/internal/repo"
)

// Rejection reasons, one per condition, in evaluation order.
var (
	ErrNotFound        = errors.New("promo code not found")
	ErrFirstPickupOnly = errors.New("code is for first pickup orders only")
	ErrPickupOnly      = errors.New("code is valid for pickup orders only")
	ErrDeliveryOnly    = errors.New("code is valid for delivery orders only")
	ErrVIPOnly         = errors.New("code is for VIP members only")
	ErrMonashOnly      = errors.New("code is for Monash members only")
	ErrMinOrder        = errors.New("minimum order not met")

	ErrValidation = errors.New("validation")
	ErrConflict   = errors.New("conflict")
)

// Context is the order situation a code is validated against.
type Context struct {
	IsPickup      bool
	IsFirstPickup bool
	IsVIP         bool
	IsMonash      bool
	Subtotal      decimal.Decimal
}

// Result is a granted discount. MarkFirstPickup tells the caller to
// record the first-pickup milestone once the order commits.
type Result struct {
	Code            string
	Rate            decimal.Decimal
	Description     string
	MarkFirstPickup bool
}

type Engine struct {
	Codes *repo.PromoRepo
}

// Validate resolves a code case-insensitively and checks its declared
// conditions in a fixed order, stopping at the first failure. The rate
// applies to the subtotal, not the final total.
func (e *Engine) Validate(code string, pctx Context) (*Result, error) {
	pc, ok := e.Codes.Get(code)
	if !ok {
		return nil, ErrNotFound
	}

	cond := pc.Conditions
	if cond.FirstTimePickup && !pctx.IsFirstPickup {
		return nil, ErrFirstPickupOnly
	}
	if cond.PickupOnly && !pctx.IsPickup {
		return nil, ErrPickupOnly
	}
	if cond.DeliveryOnly && pctx.IsPickup {
		return nil, ErrDeliveryOnly
	}
	if cond.VIPOnly && !pctx.IsVIP {
		return nil, ErrVIPOnly
	}
	if cond.MonashOnly && !pctx.IsMonash {
		return nil, ErrMonashOnly
	}
	if pctx.Subtotal.LessThan(cond.MinOrder) {
		return nil, fmt.Errorf("%w: spend at least $%s", ErrMinOrder, cond.MinOrder.StringFixed(2))
	}

	return &Result{
		Code:            pc.Code,
		Rate:            pc.Rate,
		Description:     pc.Description,
		MarkFirstPickup: cond.FirstTimePickup,
	}, nil
}

// Admin operations. Codes are read-only to checkout; these exist for
// promotion management.

func (e *Engine) List() []models.PromoCode {
	return e.Codes.All()
}

func (e *Engine) Create(ctx context.Context, pc models.PromoCode) (*models.PromoCode, error) {
	if err := pc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if _, ok := e.Codes.Get(pc.Code); ok {
		return nil, fmt.Errorf("%w: code already exists", ErrConflict)
	}
	err := e.Codes.Put(ctx, pc)
	created, _ := e.Codes.Get(pc.Code)
	return &created, err
}

func (e *Engine) Update(ctx context.Context, code string, rate *decimal.Decimal, description *string, conditions *models.Conditions) (*models.PromoCode, error) {
	pc, ok := e.Codes.Get(code)
	if !ok {
		return nil, ErrNotFound
	}

	if rate != nil {
		pc.Rate = *rate
	}
	if description != nil {
		pc.Description = *description
	}
	if conditions != nil {
		pc.Conditions = *conditions
	}
	if err := pc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	err := e.Codes.Put(ctx, pc)
	stored, _ := e.Codes.Get(pc.Code)
	return &stored, err
}

func (e *Engine) Delete(ctx context.Context, code string) error {
	deleted, err := e.Codes.Delete(ctx, code)
	if !deleted {
		return ErrNotFound
	}
	return err
}

package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/monashmerchant/shop/internal/cart"
	"github.com/monashmerchant/shop/internal/models"
)

var ErrUnknownProduct = errors.New("product not in catalog")

// UnitPrice returns what one unit costs for the given membership.
// Checkout pricing never uses the promotion price override; that one
// only shows up in browse views.
func UnitPrice(p models.Product, isMember bool) decimal.Decimal {
	if isMember && p.MemberPrice.IsPositive() {
		return p.MemberPrice
	}
	return p.Price
}

// Itemize prices every cart line in insertion order and returns the
// order snapshot lines together with the subtotal. A line whose
// product left the catalog fails the whole computation.
func Itemize(lines []cart.Line, lookup func(string) (models.Product, bool), isMember bool) ([]models.OrderLine, decimal.Decimal, error) {
	out := make([]models.OrderLine, 0, len(lines))
	subtotal := decimal.Zero

	for _, ln := range lines {
		p, ok := lookup(ln.ProductID)
		if !ok {
			return nil, decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownProduct, ln.ProductID)
		}
		unit := UnitPrice(p, isMember)
		sub := unit.Mul(decimal.NewFromInt(int64(ln.Quantity)))
		out = append(out, models.OrderLine{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  ln.Quantity,
			UnitPrice: unit,
			Subtotal:  sub,
		})
		subtotal = subtotal.Add(sub)
	}

	return out, subtotal, nil
}

// Subtotal is Itemize without the snapshot.
func Subtotal(lines []cart.Line, lookup func(string) (models.Product, bool), isMember bool) (decimal.Decimal, error) {
	_, total, err := Itemize(lines, lookup, isMember)
	return total, err
}

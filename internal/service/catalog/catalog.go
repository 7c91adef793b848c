// Package catalog serves product browsing and the promotion-price
// admin operations.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/monashmerchant/shop/internal/models"
	"github.com/monashmerchant/shop/internal/repo"
	"github.com/monashmerchant/shop/internal/service/search"
	"github.com/monashmerchant/shop/pkg/logging"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("product not found")
)

// DefaultLowStockThreshold flags products needing restock.
const DefaultLowStockThreshold = 5

type Service struct {
	Products *repo.ProductRepo
	Search   *search.Service
}

// List pages the catalog in id order. Category and subcategory filters
// are case-insensitive and applied before paging, so the returned
// total counts the filtered set.
func (s *Service) List(offset, limit int, category, subcategory string) (int, []models.Product) {
	var items []models.Product
	for _, p := range s.Products.All() {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if subcategory != "" && !strings.EqualFold(p.Subcategory, subcategory) {
			continue
		}
		items = append(items, p)
	}

	total := len(items)
	if offset >= total {
		return total, []models.Product{}
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return total, items[offset:end]
}

func (s *Service) Get(id string) (models.Product, error) {
	p, ok := s.Products.Get(id)
	if !ok {
		return models.Product{}, ErrNotFound
	}
	return p, nil
}

// LowStock lists products whose stock is at or below the threshold,
// zero-stock items included.
func (s *Service) LowStock(threshold int) []models.Product {
	if threshold < 0 {
		threshold = DefaultLowStockThreshold
	}

	out := []models.Product{}
	for _, p := range s.Products.All() {
		if p.Quantity <= threshold {
			out = append(out, p)
		}
	}
	return out
}

// SetPromotionPrice puts a temporary price on a product. It must
// undercut the regular price; member pricing is untouched.
func (s *Service) SetPromotionPrice(ctx context.Context, id string, price decimal.Decimal) (*models.Product, error) {
	p, ok := s.Products.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	if !price.IsPositive() || !price.LessThan(p.Price) {
		return nil, fmt.Errorf("%w: promotion price must be above $0 and below the regular price $%s",
			ErrValidation, p.Price.StringFixed(2))
	}

	p.PromotionPrice = &price
	err := s.Products.Put(ctx, p)
	s.reindex(ctx, p)
	return &p, err
}

func (s *Service) ClearPromotionPrice(ctx context.Context, id string) (*models.Product, error) {
	p, ok := s.Products.Get(id)
	if !ok {
		return nil, ErrNotFound
	}

	p.PromotionPrice = nil
	err := s.Products.Put(ctx, p)
	s.reindex(ctx, p)
	return &p, err
}

// reindex keeps the search document in step with the catalog; search
// being down never fails the catalog operation.
func (s *Service) reindex(ctx context.Context, p models.Product) {
	if !s.Search.Enabled() {
		return
	}
	if err := s.Search.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_error", "product_id", p.ID, "error", err)
	}
}

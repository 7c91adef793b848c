package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/monashmerchant/shop/internal/models"
	"github.com/monashmerchant/shop/internal/store"
)

// ProductRepo holds the catalog in memory and writes the whole
// collection back through the Store on every mutation.
type ProductRepo struct {
	store store.Store

	mu    sync.RWMutex
	items map[string]models.Product
}

func NewProductRepo(ctx context.Context, st store.Store) (*ProductRepo, error) {
	raw, err := st.Load(ctx, store.Products)
	if err != nil {
		return nil, err
	}

	items := make(map[string]models.Product, len(raw))
	for id, v := range raw {
		var p models.Product
		if err := json.Unmarshal(v, &p); err != nil {
			return nil, fmt.Errorf("decode product %s: %w", id, err)
		}
		items[id] = p
	}

	return &ProductRepo{store: st, items: items}, nil
}

func (r *ProductRepo) Get(id string) (models.Product, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	return p, ok
}

// All returns the catalog sorted by id.
func (r *ProductRepo) All() []models.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Product, 0, len(r.items))
	for _, p := range r.items {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *ProductRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func (r *ProductRepo) Put(ctx context.Context, p models.Product) error {
	r.mu.Lock()
	r.items[p.ID] = p
	r.mu.Unlock()
	return r.flush(ctx)
}

// Decrement applies stock deltas in memory, then persists. The memory
// change stands even when persistence fails.
func (r *ProductRepo) Decrement(ctx context.Context, qty map[string]int) error {
	r.mu.Lock()
	for id, n := range qty {
		p, ok := r.items[id]
		if !ok {
			continue
		}
		p.Quantity -= n
		r.items[id] = p
	}
	r.mu.Unlock()
	return r.flush(ctx)
}

func (r *ProductRepo) flush(ctx context.Context) error {
	r.mu.RLock()
	records := make(map[string]json.RawMessage, len(r.items))
	for id, p := range r.items {
		data, err := json.Marshal(p)
		if err != nil {
			r.mu.RUnlock()
			return fmt.Errorf("encode product %s: %w", id, err)
		}
		records[id] = data
	}
	r.mu.RUnlock()

	if err := r.store.Save(ctx, store.Products, records); err != nil {
		return fmt.Errorf("%w: %v", store.ErrPersistence, err)
	}
	return nil
}

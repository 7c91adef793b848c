package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/monashmerchant/shop/internal/models"
	"github.com/monashmerchant/shop/internal/store"
)

// PromoRepo keys codes by their uppercased form; lookups are
// case-insensitive.
type PromoRepo struct {
	store store.Store

	mu    sync.RWMutex
	items map[string]models.PromoCode
}

func NewPromoRepo(ctx context.Context, st store.Store) (*PromoRepo, error) {
	raw, err := st.Load(ctx, store.PromoCodes)
	if err != nil {
		return nil, err
	}

	items := make(map[string]models.PromoCode, len(raw))
	for code, v := range raw {
		var pc models.PromoCode
		if err := json.Unmarshal(v, &pc); err != nil {
			return nil, fmt.Errorf("decode promo code %s: %w", code, err)
		}
		items[strings.ToUpper(code)] = pc
	}

	return &PromoRepo{store: st, items: items}, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r *PromoRepo) Get(code string) (models.PromoCode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pc, ok := r.items[normalizeCode(code)]
	return pc, ok
}

// All returns codes sorted alphabetically.
func (r *PromoRepo) All() []models.PromoCode {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.PromoCode, 0, len(r.items))
	for _, pc := range r.items {
		out = append(out, pc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (r *PromoRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func (r *PromoRepo) Put(ctx context.Context, pc models.PromoCode) error {
	pc.Code = normalizeCode(pc.Code)
	r.mu.Lock()
	r.items[pc.Code] = pc
	r.mu.Unlock()
	return r.flush(ctx)
}

func (r *PromoRepo) Delete(ctx context.Context, code string) (bool, error) {
	key := normalizeCode(code)

	r.mu.Lock()
	_, ok := r.items[key]
	if ok {
		delete(r.items, key)
	}
	r.mu.Unlock()

	if !ok {
		return false, nil
	}
	return true, r.flush(ctx)
}

func (r *PromoRepo) flush(ctx context.Context) error {
	r.mu.RLock()
	records := make(map[string]json.RawMessage, len(r.items))
	for code, pc := range r.items {
		data, err := json.Marshal(pc)
		if err != nil {
			r.mu.RUnlock()
			return fmt.Errorf("encode promo code %s: %w", code, err)
		}
		records[code] = data
	}
	r.mu.RUnlock()

	if err := r.store.Save(ctx, store.PromoCodes, records); err != nil {
		return fmt.Errorf("%w: %v", store.ErrPersistence, err)
	}
	return nil
}

package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/monashmerchant/shop/internal/models"
	"github.com/monashmerchant/shop/internal/store"
)

// UserRepo keys users by lowercased email.
type UserRepo struct {
	store store.Store

	mu    sync.RWMutex
	items map[string]models.User
}

func NewUserRepo(ctx context.Context, st store.Store) (*UserRepo, error) {
	raw, err := st.Load(ctx, store.Users)
	if err != nil {
		return nil, err
	}

	items := make(map[string]models.User, len(raw))
	for email, v := range raw {
		var u models.User
		if err := json.Unmarshal(v, &u); err != nil {
			return nil, fmt.Errorf("decode user %s: %w", email, err)
		}
		items[strings.ToLower(email)] = u
	}

	return &UserRepo{store: st, items: items}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepo) Get(email string) (models.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.items[normalizeEmail(email)]
	return u, ok
}

func (r *UserRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func (r *UserRepo) Put(ctx context.Context, u models.User) error {
	u.Email = normalizeEmail(u.Email)
	r.mu.Lock()
	r.items[u.Email] = u
	r.mu.Unlock()
	return r.flush(ctx)
}

// Update applies fn to the stored user in memory, then persists. The
// memory change stands even when persistence fails. The user must
// exist; callers check presence first.
func (r *UserRepo) Update(ctx context.Context, email string, fn func(*models.User)) error {
	key := normalizeEmail(email)

	r.mu.Lock()
	u, ok := r.items[key]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("user %s not in collection", key)
	}
	fn(&u)
	r.items[key] = u
	r.mu.Unlock()

	return r.flush(ctx)
}

func (r *UserRepo) flush(ctx context.Context) error {
	r.mu.RLock()
	records := make(map[string]json.RawMessage, len(r.items))
	for email, u := range r.items {
		data, err := json.Marshal(u)
		if err != nil {
			r.mu.RUnlock()
			return fmt.Errorf("encode user %s: %w", email, err)
		}
		records[email] = data
	}
	r.mu.RUnlock()

	if err := r.store.Save(ctx, store.Users, records); err != nil {
		return fmt.Errorf("%w: %v", store.ErrPersistence, err)
	}
	return nil
}

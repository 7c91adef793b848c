// Package storetest provides a map-backed Store for tests.
package storetest

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// ErrForced is what a Mem with failure injection enabled returns.
var ErrForced = errors.New("forced store failure")

// Mem keeps collections in memory. Setting FailSave or FailLoad makes
// the next calls fail, which is how the persistence-warning paths are
// exercised.
type Mem struct {
	mu          sync.Mutex
	collections map[string]map[string]json.RawMessage

	FailSave bool
	FailLoad bool
	FailPing bool
}

func New() *Mem {
	return &Mem{collections: make(map[string]map[string]json.RawMessage)}
}

func (m *Mem) Load(ctx context.Context, collection string) (map[string]json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailLoad {
		return nil, ErrForced
	}

	out := make(map[string]json.RawMessage, len(m.collections[collection]))
	for k, v := range m.collections[collection] {
		out[k] = v
	}
	return out, nil
}

func (m *Mem) Save(ctx context.Context, collection string, records map[string]json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSave {
		return ErrForced
	}

	cp := make(map[string]json.RawMessage, len(records))
	for k, v := range records {
		cp[k] = v
	}
	m.collections[collection] = cp
	return nil
}

func (m *Mem) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPing {
		return ErrForced
	}
	return nil
}

// Len reports how many records a collection holds, for asserting what
// actually got written.
func (m *Mem) Len(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.collections[collection])
}

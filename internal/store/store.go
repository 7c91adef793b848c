package store

import (
	"context"
	"encoding/json"
	"errors"
)

// Collection names. Every collection is a mapping of string id to a
// JSON-serializable record.
const (
	Products   = "products"
	Users      = "users"
	Orders     = "orders"
	PromoCodes = "promocodes"
)

// ErrPersistence marks a failed write whose in-memory effects stand.
// Callers surface it as a warning, never as a rollback.
var ErrPersistence = errors.New("persistence")

// Store is the persistence collaborator: whole collections are loaded
// and saved by name. Save replaces the stored mapping entirely.
type Store interface {
	Load(ctx context.Context, collection string) (map[string]json.RawMessage, error)
	Save(ctx context.Context, collection string, records map[string]json.RawMessage) error
	Ping(ctx context.Context) error
}

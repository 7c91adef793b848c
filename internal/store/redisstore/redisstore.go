package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "shop:"

// Store keeps each collection in one Redis hash keyed shop:<collection>.
type Store struct {
	Client *redis.Client
}

func Open(ctx context.Context, addr, password string, db int) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Store{Client: client}, nil
}

func (s *Store) Load(ctx context.Context, collection string) (map[string]json.RawMessage, error) {
	raw, err := s.Client.HGetAll(ctx, keyPrefix+collection).Result()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}

	out := make(map[string]json.RawMessage, len(raw))
	for k, v := range raw {
		out[k] = json.RawMessage(v)
	}
	return out, nil
}

func (s *Store) Save(ctx context.Context, collection string, records map[string]json.RawMessage) error {
	key := keyPrefix + collection

	_, err := s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(records) == 0 {
			return nil
		}
		flat := make(map[string]string, len(records))
		for k, v := range records {
			flat[k] = string(v)
		}
		pipe.HSet(ctx, key, flat)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", collection, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.Client.Close()
}

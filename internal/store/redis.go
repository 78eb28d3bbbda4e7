package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rezmoss/prodlog/internal/ledger"
)

const redisKeyPrefix = "prodlog:ledger:"

// Redis keeps a sheet as one JSON array under a single key, so a write is a
// single SET.
type Redis struct {
	client *redis.Client
	key    string
}

// OpenRedis connects to url (redis://[:password@]host:port/db) and pings it.
func OpenRedis(ctx context.Context, url, sheet string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client, key: redisKeyPrefix + sheet}, nil
}

func (r *Redis) Read(ctx context.Context) ([]ledger.Row, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", r.key, err)
	}
	var rows []ledger.Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.key, err)
	}
	return rows, nil
}

func (r *Redis) ReplaceAll(ctx context.Context, rows []ledger.Row) error {
	data, err := json.Marshal(normalizeAll(rows))
	if err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", r.key, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

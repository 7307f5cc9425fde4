package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/phambaophuc/bg-remover/internal/models"
	"github.com/redis/go-redis/v9"
)

const indexKeyPrefix = "bgremover:image:"

// Index keeps one metadata record per stored image.
type Index interface {
	Put(ctx context.Context, record models.ImageRecord) error
	Get(ctx context.Context, id string) (*models.ImageRecord, error)
	Ping(ctx context.Context) error
	Close() error
}

type RedisIndex struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisIndex stores records without expiry when ttl is zero.
func NewRedisIndex(client *redis.Client, ttl time.Duration) *RedisIndex {
	return &RedisIndex{client: client, ttl: ttl}
}

func (r *RedisIndex) Put(ctx context.Context, record models.ImageRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return r.client.Set(ctx, indexKeyPrefix+record.ID, data, r.ttl).Err()
}

// Get returns nil, nil on a miss.
func (r *RedisIndex) Get(ctx context.Context, id string) (*models.ImageRecord, error) {
	data, err := r.client.Get(ctx, indexKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("index get error: %w", err)
	}

	var record models.ImageRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &record, nil
}

func (r *RedisIndex) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisIndex) Close() error {
	return r.client.Close()
}

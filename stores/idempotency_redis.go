package stores

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/veloxpay/velox/models"
)

const redisIdempotencyPrefix = "velox:idem:"

// RedisIdempotencyStore is the multi-instance variant. SetNX gives the
// same first-writer-wins guarantee as the in-memory map, and Redis TTL
// replaces the background sweep.
type RedisIdempotencyStore struct {
	client    *redis.Client
	retention time.Duration
}

func CreateRedisIdempotencyStore(client *redis.Client, retention time.Duration) *RedisIdempotencyStore {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &RedisIdempotencyStore{
		client:    client,
		retention: retention,
	}
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (*models.IdempotencyRecord, error) {
	data, err := s.client.Get(ctx, redisIdempotencyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var record models.IdempotencyRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *RedisIdempotencyStore) Put(ctx context.Context, record *models.IdempotencyRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.client.SetNX(ctx, redisIdempotencyPrefix+record.Key, data, s.retention).Err()
}

// Stats reports the key count only; entry timestamps would need a scan of
// every record and the dashboard reading these does not need them from a
// shared cache.
func (s *RedisIdempotencyStore) Stats(ctx context.Context) (*models.IdempotencyStats, error) {
	var count int
	iter := s.client.Scan(ctx, 0, redisIdempotencyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return &models.IdempotencyStats{TotalKeys: count}, nil
}

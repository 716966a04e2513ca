package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "campushub:idempotency:"

// RedisStore keeps reservations in Redis so several processes share them.
// Reservation uses SETNX with the TTL.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStore wraps a Redis client.
func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// NewRedisClient builds a client for addr.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Reserve claims key. When the key exists it returns the stored record and false.
func (s *RedisStore) Reserve(ctx context.Context, key, fingerprint string) (Record, bool, error) {
	record := Record{Fingerprint: fingerprint}
	payload, err := json.Marshal(record)
	if err != nil {
		return Record{}, false, fmt.Errorf("encode record: %w", err)
	}

	// The stored key may expire between SETNX and GET; one retry covers it.
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.SetNX(ctx, keyPrefix+key, payload, s.ttl).Result()
		if err != nil {
			return Record{}, false, fmt.Errorf("reserve key: %w", err)
		}
		if ok {
			return record, true, nil
		}

		existing, err := s.get(ctx, key)
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return Record{}, false, err
		}
		return existing, false, nil
	}
	return Record{}, false, fmt.Errorf("reserve key: %s changed concurrently", key)
}

// Complete stores the finished record, keeping the remaining TTL.
func (s *RedisStore) Complete(ctx context.Context, key string, record Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	ok, err := s.client.SetXX(ctx, keyPrefix+key, payload, redis.KeepTTL).Result()
	if err != nil {
		return fmt.Errorf("complete key: %w", err)
	}
	if !ok {
		return ErrNotReserved
	}
	return nil
}

// Release deletes key.
func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release key: %w", err)
	}
	return nil
}

func (s *RedisStore) get(ctx context.Context, key string) (Record, error) {
	payload, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("get key: %w", err)
	}
	var record Record
	if err := json.Unmarshal(payload, &record); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	return record, nil
}

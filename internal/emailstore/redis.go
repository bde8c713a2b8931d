package emailstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps records in a hash keyed by normalized email, giving
// atomic compare-and-append dedupe via HSETNX. The serialized-size cap is
// tracked in a side counter and is approximate under concurrent writers,
// which is acceptable for a silent safety cap.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	limits Limits
}

func NewRedisStore(client redis.UniversalClient, prefix string, limits Limits) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		limits: limits,
	}
}

func (s *RedisStore) recordsKey() string { return s.prefix + ":emails" }
func (s *RedisStore) bytesKey() string   { return s.prefix + ":emails:bytes" }

func (s *RedisStore) Save(ctx context.Context, rec Record) (SaveStatus, error) {
	if s.limits.MaxRecords > 0 {
		n, err := s.client.HLen(ctx, s.recordsKey()).Result()
		if err != nil {
			return 0, fmt.Errorf("email store hlen: %w", err)
		}
		if n >= int64(s.limits.MaxRecords) {
			return StatusDropped, nil
		}
	}

	if s.limits.MaxBytes > 0 {
		size, err := s.client.Get(ctx, s.bytesKey()).Int64()
		if err != nil && err != redis.Nil {
			return 0, fmt.Errorf("email store size: %w", err)
		}
		if size >= s.limits.MaxBytes {
			return StatusDropped, nil
		}
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("email store encode: %w", err)
	}

	added, err := s.client.HSetNX(ctx, s.recordsKey(), rec.Email, payload).Result()
	if err != nil {
		return 0, fmt.Errorf("email store hsetnx: %w", err)
	}
	if !added {
		return StatusDuplicate, nil
	}

	if err := s.client.IncrBy(ctx, s.bytesKey(), int64(len(payload))).Err(); err != nil {
		return 0, fmt.Errorf("email store size incr: %w", err)
	}
	return StatusStored, nil
}

func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.HLen(ctx, s.recordsKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("email store hlen: %w", err)
	}
	return int(n), nil
}

func (s *RedisStore) Close() error {
	return nil
}

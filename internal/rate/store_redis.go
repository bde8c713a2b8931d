package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each window in a sorted set scored by event time, for
// deployments where several instances serve the same session. Reserve runs
// prune, count, and conditional append as a single server-side script, so
// concurrent reserves from any number of instances serialize on the key and
// only one caller can take the last slot. Keys expire one window after the
// last event.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// KEYS[1] window key; ARGV: cutoff score, limit, score, member, TTL millis.
// Returns {admitted, count-before-append}.
var reserveScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
local count = redis.call('ZCARD', KEYS[1])
if count >= tonumber(ARGV[2]) then
	return {0, count}
end
redis.call('ZADD', KEYS[1], ARGV[3], ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return {1, count}
`)

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisStore) key(sessionID, action string) string {
	return s.prefix + ":rl:" + sessionID + ":" + action
}

func (s *RedisStore) Check(ctx context.Context, sessionID, action string, limit int, window time.Duration, now time.Time) (Decision, error) {
	key := s.key(sessionID, action)
	cutoff := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", cutoff)
	card := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	return decisionFor(int(card.Val()), limit), nil
}

func (s *RedisStore) Record(ctx context.Context, sessionID, action string, window time.Duration, now time.Time) error {
	key := s.key(sessionID, action)

	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: windowMember(now),
	})
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Reserve(ctx context.Context, sessionID, action string, limit int, window time.Duration, now time.Time) (Decision, error) {
	key := s.key(sessionID, action)
	cutoff := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	reply, err := reserveScript.Run(ctx, s.client, []string{key},
		cutoff,
		limit,
		now.UnixNano(),
		windowMember(now),
		window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if len(reply) != 2 {
		return Decision{}, fmt.Errorf("%w: unexpected script reply", ErrBackendUnavailable)
	}

	return decisionFor(int(reply[1]), limit), nil
}

// windowMember disambiguates events landing on the same nanosecond.
func windowMember(now time.Time) string {
	return strconv.FormatInt(now.UnixNano(), 10) + "-" + uuid.NewString()
}

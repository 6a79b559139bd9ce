package presence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AlibekovAA/estate-hub/internal/common/constants"
	"github.com/AlibekovAA/estate-hub/internal/common/logger"
	"github.com/AlibekovAA/estate-hub/internal/common/resilience"
	"github.com/AlibekovAA/estate-hub/internal/observability/metrics"
)

const (
	fieldHandle   = "handle"
	fieldLastSeen = "last_seen"
)

var removeIfHandleScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'handle') == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

var touchScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'handle') == ARGV[1] then
	redis.call('HSET', KEYS[1], 'last_seen', ARGV[2])
	redis.call('PEXPIRE', KEYS[1], ARGV[3])
	return 1
end
return 0
`)

// OpenRedis parses a redis:// URL and verifies the server answers.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, constants.RedisConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// RedisRegistry shares presence across instances: one hash per user, expiring with its lease.
type RedisRegistry struct {
	client   *redis.Client
	leaseTTL time.Duration
	breaker  *resilience.CircuitBreaker
	log      *logger.Logger
}

func NewRedisRegistry(client *redis.Client, leaseTTL time.Duration, log *logger.Logger) *RedisRegistry {
	if leaseTTL <= 0 {
		leaseTTL = constants.DefaultPresenceLeaseTTL
	}
	return &RedisRegistry{
		client:   client,
		leaseTTL: leaseTTL,
		log:      log,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Threshold:   constants.PresenceCircuitBreakerFailure,
			Timeout:     constants.PresenceCircuitBreakerTimeout,
			ResetAfter:  constants.PresenceCircuitBreakerReset,
			Name:        "presence_redis",
			Logger:      log,
			IgnoreError: isCallerCancel,
		}),
	}
}

// A caller giving up says nothing about redis health.
func isCallerCancel(err error) bool {
	return errors.Is(err, context.Canceled)
}

func key(userID string) string {
	return constants.PresenceRedisKeyPrefix + userID
}

func (r *RedisRegistry) call(ctx context.Context, operation string, fn func(context.Context) error) error {
	err := r.breaker.Call(ctx, fn)
	if err != nil {
		metrics.PresenceStoreErrors.WithLabelValues("redis", operation).Inc()
		return ErrPresenceUnavailable.WithCause(err)
	}
	return nil
}

func (r *RedisRegistry) Put(ctx context.Context, userID, handle string) error {
	return r.call(ctx, "put", func(ctx context.Context) error {
		k := key(userID)
		_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, k)
			pipe.HSet(ctx, k, fieldHandle, handle, fieldLastSeen, time.Now().UnixMilli())
			pipe.PExpire(ctx, k, r.leaseTTL)
			return nil
		})
		return err
	})
}

func (r *RedisRegistry) Get(ctx context.Context, userID string) (Entry, bool, error) {
	var values map[string]string
	err := r.call(ctx, "get", func(ctx context.Context) error {
		var err error
		values, err = r.client.HGetAll(ctx, key(userID)).Result()
		return err
	})
	if err != nil {
		return Entry{}, false, err
	}

	handle, ok := values[fieldHandle]
	if !ok {
		return Entry{}, false, nil
	}
	entry := Entry{UserID: userID, Handle: handle}
	if ms, err := strconv.ParseInt(values[fieldLastSeen], 10, 64); err == nil {
		entry.LastSeen = time.UnixMilli(ms).UTC()
	}
	return entry, true, nil
}

func (r *RedisRegistry) RemoveIfHandle(ctx context.Context, userID, handle string) (bool, error) {
	var removed int64
	err := r.call(ctx, "remove", func(ctx context.Context) error {
		var err error
		removed, err = removeIfHandleScript.Run(ctx, r.client, []string{key(userID)}, handle).Int64()
		return err
	})
	return removed > 0, err
}

func (r *RedisRegistry) Touch(ctx context.Context, userID, handle string) error {
	return r.call(ctx, "touch", func(ctx context.Context) error {
		err := touchScript.Run(ctx, r.client, []string{key(userID)},
			handle, time.Now().UnixMilli(), r.leaseTTL.Milliseconds()).Err()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	})
}

func (r *RedisRegistry) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.call(ctx, "count", func(ctx context.Context) error {
		count = 0
		iter := r.client.Scan(ctx, 0, constants.PresenceRedisKeyPrefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			count++
		}
		return iter.Err()
	})
	return count, err
}

func (r *RedisRegistry) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

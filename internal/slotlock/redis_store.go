package slotlock

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps advisory locks in Redis with per-key TTLs. Acquisition
// runs through a Lua script so check-and-set cannot race between instances.
type RedisStore struct {
	redis *redis.Client
}

func NewRedisStore(redisClient *redis.Client) *RedisStore {
	return &RedisStore{redis: redisClient}
}

// Lua script for atomic lock acquisition - prevents race conditions
const luaAcquireLock = `
-- KEYS[1] = lock key
-- ARGV[1] = holder_id
-- ARGV[2] = ttl_seconds

local current = redis.call("GET", KEYS[1])

if current == false or current == ARGV[1] then
    redis.call("SET", KEYS[1], ARGV[1], "EX", tonumber(ARGV[2]))
    return {1, ARGV[1], tonumber(ARGV[2])}
end

local ttl = redis.call("TTL", KEYS[1])
if ttl < 0 then
    ttl = 0
end
return {0, current, ttl}
`

// Lua script for atomic lock release - only the holder may delete
const luaReleaseLock = `
-- KEYS[1] = lock key
-- ARGV[1] = holder_id

local current = redis.call("GET", KEYS[1])
if current == ARGV[1] then
    redis.call("DEL", KEYS[1])
    return 1
end
return 0
`

func (s *RedisStore) Acquire(ctx context.Context, key, holder string, ttl time.Duration) (bool, string, time.Duration, error) {
	if s.redis == nil {
		return false, "", 0, fmt.Errorf("redis client not available")
	}

	args := []interface{}{holder, strconv.Itoa(int(ttl.Seconds()))}

	result, err := s.redis.EvalSha(ctx, luaAcquireLock, []string{key}, args...).Result()
	if err != nil {
		// If script is not loaded, try to load and execute
		result, err = s.redis.Eval(ctx, luaAcquireLock, []string{key}, args...).Result()
		if err != nil {
			return false, "", 0, fmt.Errorf("failed to execute atomic lock acquire: %w", err)
		}
	}

	resultArray, ok := result.([]interface{})
	if !ok || len(resultArray) != 3 {
		return false, "", 0, fmt.Errorf("unexpected result format from Lua script")
	}

	granted, ok := resultArray[0].(int64)
	if !ok {
		return false, "", 0, fmt.Errorf("invalid granted flag in Lua script result")
	}

	currentHolder, _ := resultArray[1].(string)
	remainingSecs, _ := resultArray[2].(int64)

	return granted == 1, currentHolder, time.Duration(remainingSecs) * time.Second, nil
}

func (s *RedisStore) Release(ctx context.Context, key, holder string) (bool, error) {
	if s.redis == nil {
		return false, fmt.Errorf("redis client not available")
	}

	result, err := s.redis.EvalSha(ctx, luaReleaseLock, []string{key}, holder).Result()
	if err != nil {
		result, err = s.redis.Eval(ctx, luaReleaseLock, []string{key}, holder).Result()
		if err != nil {
			return false, fmt.Errorf("failed to execute atomic lock release: %w", err)
		}
	}

	released, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("invalid release flag in Lua script result")
	}
	return released == 1, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, time.Duration, error) {
	if s.redis == nil {
		return "", 0, fmt.Errorf("redis client not available")
	}

	holder, err := s.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", 0, nil
	}
	if err != nil {
		return "", 0, fmt.Errorf("failed to read lock: %w", err)
	}

	remaining, err := s.redis.TTL(ctx, key).Result()
	if err != nil {
		return "", 0, fmt.Errorf("failed to read lock TTL: %w", err)
	}
	if remaining < 0 {
		remaining = 0
	}
	return holder, remaining, nil
}

// PreloadScripts loads Lua scripts into Redis for better performance
func (s *RedisStore) PreloadScripts(ctx context.Context) error {
	if s.redis == nil {
		return fmt.Errorf("redis client not available")
	}

	for _, script := range []string{luaAcquireLock, luaReleaseLock} {
		if err := s.redis.ScriptLoad(ctx, script).Err(); err != nil {
			return fmt.Errorf("failed to preload slot lock script: %w", err)
		}
	}
	return nil
}

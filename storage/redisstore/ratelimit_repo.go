package redisstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	autherrors "github.com/jrsteele09/go-auth-bridge/internal/errors"
	"github.com/jrsteele09/go-auth-bridge/ratelimit"
	"github.com/redis/go-redis/v9"
)

var _ ratelimit.Repo = (*RateLimitRepo)(nil)

// Both scripts leave an absent record absent.
const markLockoutScript = `
if redis.call("EXISTS", KEYS[1]) == 1 then
  redis.call("HSET", KEYS[1], "last_attempt_at", ARGV[1])
end
return 0
`

const restartScript = `
if redis.call("EXISTS", KEYS[1]) == 1 then
  redis.call("HSET", KEYS[1], "attempts", 1, "last_attempt_at", ARGV[1])
end
return 0
`

var (
	markLockoutLua = redis.NewScript(markLockoutScript)
	restartLua     = redis.NewScript(restartScript)
)

type RateLimitRepo struct {
	client    redis.UniversalClient
	keyPrefix string
}

func (r *RateLimitRepo) key(ip string) string {
	return r.keyPrefix + "ratelimit:" + ip
}

func (r *RateLimitRepo) Get(ctx context.Context, ip string) (*ratelimit.Record, error) {
	fields, err := r.client.HGetAll(ctx, r.key(ip)).Result()
	if err != nil {
		return nil, storageErr("Get", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	attempts, err := strconv.ParseInt(fields[fieldAttempts], 10, 64)
	if err != nil {
		return nil, storageErr("Get", fmt.Errorf("attempts %q: %w", fields[fieldAttempts], err))
	}
	rec := &ratelimit.Record{IPAddress: ip, Attempts: attempts}

	if raw, ok := fields[fieldLastAttemptAt]; ok && raw != "" {
		at, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, storageErr("Get", fmt.Errorf("last_attempt_at %q: %w", raw, err))
		}
		rec.LastAttemptAt = &at
	}
	return rec, nil
}

// Increment relies on HINCRBY creating the hash with attempts = 1.
func (r *RateLimitRepo) Increment(ctx context.Context, ip string) error {
	if err := r.client.HIncrBy(ctx, r.key(ip), fieldAttempts, 1).Err(); err != nil {
		return storageErr("Increment", err)
	}
	return nil
}

func (r *RateLimitRepo) MarkLockout(ctx context.Context, ip string, at time.Time) error {
	if err := markLockoutLua.Run(ctx, r.client, []string{r.key(ip)}, formatTime(at)).Err(); err != nil {
		return storageErr("MarkLockout", err)
	}
	return nil
}

func (r *RateLimitRepo) Restart(ctx context.Context, ip string, at time.Time) error {
	if err := restartLua.Run(ctx, r.client, []string{r.key(ip)}, formatTime(at)).Err(); err != nil {
		return storageErr("Restart", err)
	}
	return nil
}

func (r *RateLimitRepo) Delete(ctx context.Context, ip string) error {
	if err := r.client.Del(ctx, r.key(ip)).Err(); err != nil {
		return storageErr("Delete", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func storageErr(op string, err error) error {
	return autherrors.Wrapf(autherrors.ErrStorageFailure, "[redisstore %s] %v", op, err)
}

package sweeper

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/voidshard/keel/internal/utils"
)

// Locker is a distributed lock so only one sweeper instance sweeps at a time.
type Locker interface {
	// Acquire returns true if we now hold the lock. The lock expires after ttl
	// if it's not released.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release gives up the lock, if we hold it.
	Release(ctx context.Context, key string) error
}

// NopLocker always acquires; for a single sweeper instance.
type NopLocker struct{}

func (NopLocker) Acquire(context.Context, string, time.Duration) (bool, error) { return true, nil }
func (NopLocker) Release(context.Context, string) error                        { return nil }

// releaseScript deletes the lock only if we still own it.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// RedisLocker is a Locker using SET NX PX.
type RedisLocker struct {
	cli   *redis.Client
	token string
}

// NewLocker connects to redis at url. If url is empty or the in-memory
// bus url a NopLocker is returned.
func NewLocker(url string, tlsCfg *tls.Config) (Locker, error) {
	if url == "" || url == "memory://" {
		return NopLocker{}, nil
	}
	ropts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if tlsCfg != nil {
		ropts.TLSConfig = tlsCfg
	}
	return NewRedisLocker(redis.NewClient(ropts)), nil
}

func NewRedisLocker(cli *redis.Client) *RedisLocker {
	return &RedisLocker{cli: cli, token: utils.NewRandomID()}
}

func (r *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.cli.SetNX(ctx, key, r.token, ttl).Result()
}

func (r *RedisLocker) Release(ctx context.Context, key string) error {
	return releaseScript.Run(ctx, r.cli, []string{key}, r.token).Err()
}

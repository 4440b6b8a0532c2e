package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	domainErrors "github.com/polkiloo/ticketmart/internal/domain/errors"
)

const unlockScript = `if redis.call('GET', KEYS[1]) == ARGV[1] then return redis.call('DEL', KEYS[1]) end return 0`

// Redis is a Locker shared by every instance connected to the same server. The key expires after
// ttl so a crashed holder cannot block a ticket forever.
type Redis struct {
	client   redis.Cmdable
	ttl      time.Duration
	retry    time.Duration
	prefix   string
	newToken func() string
	logger   *slog.Logger
}

// NewRedis creates a distributed locker. Failed releases are reported to logger.
func NewRedis(client redis.Cmdable, ttl, retry time.Duration, logger *slog.Logger) *Redis {
	if logger == nil {
		logger = slog.Default()
	}
	return &Redis{
		client:   client,
		ttl:      ttl,
		retry:    retry,
		prefix:   "ticketmart:lock:",
		newToken: uuid.NewString,
		logger:   logger,
	}
}

// TryAcquire makes a single attempt. ErrLockHeld is returned when another holder owns key.
func (r *Redis) TryAcquire(ctx context.Context, key string) (func(), error) {
	lockKey := r.prefix + key
	token := r.newToken()

	ok, err := r.client.SetNX(ctx, lockKey, token, r.ttl).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("redis lock %s: %w: %v", key, domainErrors.ErrStorageUnavailable, err)
	}
	if !ok {
		return nil, domainErrors.ErrLockHeld
	}

	return func() {
		// Release even when the caller's context is already done.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		released, err := r.client.Eval(ctx, unlockScript, []string{lockKey}, token).Int64()
		switch {
		case err != nil:
			r.logger.Error("redis unlock failed, key held until ttl",
				slog.String("key", lockKey),
				slog.Duration("ttl", r.ttl),
				slog.String("error", err.Error()),
			)
		case released == 0:
			r.logger.Warn("redis lock lost before release", slog.String("key", lockKey))
		}
	}, nil
}

// Acquire retries TryAcquire until it succeeds or ctx ends.
func (r *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	for {
		unlock, err := r.TryAcquire(ctx, key)
		if err == nil {
			return unlock, nil
		}
		if !errors.Is(err, domainErrors.ErrLockHeld) {
			return nil, err
		}

		timer := time.NewTimer(r.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

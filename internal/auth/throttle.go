package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const loginFailurePrefix = "login_failures:"

// CounterStore is the subset of the redis client used for login throttling.
type CounterStore interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// LoginThrottle limits consecutive failed logins per username within a window.
// A nil throttle allows everything. Store errors fail open.
type LoginThrottle struct {
	store       CounterStore
	maxAttempts int64
	window      time.Duration
	logger      *zap.Logger
}

// NewLoginThrottle returns nil when store is nil or maxAttempts is zero.
func NewLoginThrottle(store CounterStore, maxAttempts int, window time.Duration, logger *zap.Logger) *LoginThrottle {
	if store == nil || maxAttempts <= 0 {
		return nil
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoginThrottle{store: store, maxAttempts: int64(maxAttempts), window: window, logger: logger}
}

// Allow reports whether username may attempt another login.
func (t *LoginThrottle) Allow(ctx context.Context, username string) bool {
	if t == nil {
		return true
	}
	count, err := t.store.Get(ctx, loginFailurePrefix+username).Int64()
	if err == redis.Nil {
		return true
	}
	if err != nil {
		t.logger.Warn("login throttle lookup failed", zap.String("username", username), zap.Error(err))
		return true
	}
	return count < t.maxAttempts
}

// Fail records a failed attempt for username.
func (t *LoginThrottle) Fail(ctx context.Context, username string) {
	if t == nil {
		return
	}
	key := loginFailurePrefix + username
	count, err := t.store.Incr(ctx, key).Result()
	if err != nil {
		t.logger.Warn("login throttle increment failed", zap.String("username", username), zap.Error(err))
		return
	}
	if count == 1 {
		if err := t.store.Expire(ctx, key, t.window).Err(); err != nil {
			t.logger.Warn("login throttle expire failed", zap.String("username", username), zap.Error(err))
		}
	}
}

// Reset clears the failure counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, username string) {
	if t == nil {
		return
	}
	if err := t.store.Del(ctx, loginFailurePrefix+username).Err(); err != nil {
		t.logger.Warn("login throttle reset failed", zap.String("username", username), zap.Error(err))
	}
}

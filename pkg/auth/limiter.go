package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tendant/ayah-auth/pkg/domain"
)

// Limiter scopes
const (
	ScopeOTPRequest = "otp-request"
	ScopeOTPVerify  = "otp-verify"
)

// LimiterConfig holds per-scope fixed window limits.
type LimiterConfig struct {
	Prefix            string
	MaxOTPRequests    int
	MaxVerifyAttempts int
	Window            time.Duration
}

// AttemptLimiter counts recovery attempts per email in redis using a fixed
// window: the first hit sets the expiry, hits past the limit are refused.
type AttemptLimiter struct {
	redis  redis.UniversalClient
	config LimiterConfig
}

// NewAttemptLimiter creates a limiter backed by the given redis client.
func NewAttemptLimiter(client redis.UniversalClient, config LimiterConfig) *AttemptLimiter {
	if config.Prefix == "" {
		config.Prefix = "ayah"
	}
	if config.MaxOTPRequests <= 0 {
		config.MaxOTPRequests = 3
	}
	if config.MaxVerifyAttempts <= 0 {
		config.MaxVerifyAttempts = 5
	}
	if config.Window <= 0 {
		config.Window = 10 * time.Minute
	}
	return &AttemptLimiter{redis: client, config: config}
}

// Allow records one attempt for key within scope. It returns
// domain.ErrTooManyAttempts once the window's budget is spent and
// domain.ErrLimiterUnavailable when redis cannot be reached.
func (l *AttemptLimiter) Allow(ctx context.Context, scope, key string) error {
	max := l.max(scope)
	k := l.key(scope, key)

	count, err := l.redis.Incr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLimiterUnavailable, err)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, k, l.config.Window).Err(); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrLimiterUnavailable, err)
		}
	}

	if count > int64(max) {
		return domain.ErrTooManyAttempts
	}

	return nil
}

// Reset clears the counter for key within scope.
func (l *AttemptLimiter) Reset(ctx context.Context, scope, key string) error {
	if err := l.redis.Del(ctx, l.key(scope, key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLimiterUnavailable, err)
	}
	return nil
}

func (l *AttemptLimiter) max(scope string) int {
	if scope == ScopeOTPRequest {
		return l.config.MaxOTPRequests
	}
	return l.config.MaxVerifyAttempts
}

func (l *AttemptLimiter) key(scope, key string) string {
	return l.config.Prefix + ":" + scope + ":" + key
}

package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/tendant/ayah-auth/internal/config"
	"github.com/tendant/ayah-auth/internal/httputil"
)

// RateLimitConfig holds rate limiting configuration for a specific endpoint type.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Logger   *slog.Logger
}

// RateLimit creates an IP-based rate limiter middleware with logging.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.Requests,
		cfg.Window,
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Logger != nil {
				cfg.Logger.Warn("rate limit exceeded",
					"ip", r.RemoteAddr,
					"path", r.URL.Path,
					"method", r.Method,
					"user_agent", r.UserAgent(),
				)
			}
			httputil.Error(w, http.StatusTooManyRequests, "Too many requests, please try again later")
		}),
	)
}

// NoRateLimit returns a no-op middleware when rate limiting is disabled.
func NoRateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return next
	}
}

// Rate limiter groups
const (
	LimiterAuth      = "auth"
	LimiterReset     = "reset"
	LimiterFavorites = "favorites"
)

// CreateRateLimiters creates rate limiting middleware functions based on configuration.
func CreateRateLimiters(cfg config.RateLimitConfig, logger *slog.Logger) map[string]func(http.Handler) http.Handler {
	if !cfg.Enabled {
		noOp := NoRateLimit()
		return map[string]func(http.Handler) http.Handler{
			LimiterAuth:      noOp,
			LimiterReset:     noOp,
			LimiterFavorites: noOp,
		}
	}

	return map[string]func(http.Handler) http.Handler{
		LimiterAuth: RateLimit(RateLimitConfig{
			Requests: cfg.AuthRequestsPerMinute,
			Window:   time.Duration(cfg.AuthWindowMinutes) * time.Minute,
			Logger:   logger,
		}),
		LimiterReset: RateLimit(RateLimitConfig{
			Requests: cfg.ResetRequestsPerWindow,
			Window:   time.Duration(cfg.ResetWindowMinutes) * time.Minute,
			Logger:   logger,
		}),
		LimiterFavorites: RateLimit(RateLimitConfig{
			Requests: cfg.FavoritesRequestsPerMinute,
			Window:   time.Duration(cfg.FavoritesWindowMinutes) * time.Minute,
			Logger:   logger,
		}),
	}
}

package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/tendant/ayah-auth/internal/config"
	"github.com/tendant/ayah-auth/internal/http/features/account"
	"github.com/tendant/ayah-auth/internal/http/features/favorites"
	"github.com/tendant/ayah-auth/internal/http/features/me"
	"github.com/tendant/ayah-auth/internal/http/middleware"
	"github.com/tendant/ayah-auth/internal/httputil"
	"github.com/tendant/ayah-auth/pkg/auth"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger             *slog.Logger
	AccountService     *auth.AccountService
	TokenService       *auth.TokenService
	FavoritesStore     favorites.Store
	RateLimitConfig    config.RateLimitConfig
	SecurityHeaders    config.SecurityHeadersConfig
	Validation         config.ValidationConfig
	CORSAllowedOrigins []string
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(middleware.SecurityHeaders(cfg.SecurityHeaders))
	r.Use(middleware.RequestSizeLimit(cfg.Validation.MaxRequestBodySize))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	rateLimiters := middleware.CreateRateLimiters(cfg.RateLimitConfig, cfg.Logger)
	requireAuth := middleware.Auth(cfg.TokenService)

	accountHandler := account.NewHandler(cfg.Logger, cfg.AccountService)
	meHandler := me.NewHandler(cfg.Logger, cfg.AccountService)

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rateLimiters[middleware.LimiterAuth])
			r.Post("/signup", accountHandler.Signup)
			r.Post("/login", accountHandler.Login)
		})
		r.Group(func(r chi.Router) {
			r.Use(rateLimiters[middleware.LimiterReset])
			r.Post("/forgot-password", accountHandler.ForgotPassword)
			r.Post("/verify-otp", accountHandler.VerifyOTP)
			r.Post("/reset-password", accountHandler.ResetPassword)
		})
		r.With(requireAuth).Get("/me", meHandler.GetMe)
		r.With(requireAuth).Put("/me", meHandler.UpdateMe)
	})

	if cfg.FavoritesStore != nil {
		favoritesHandler := favorites.NewHandler(cfg.Logger, cfg.FavoritesStore)
		r.Route("/favorites", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(rateLimiters[middleware.LimiterFavorites])
			r.Post("/add-favorite", favoritesHandler.Add)
			r.Get("/get-favorite/{userId}", favoritesHandler.List)
			r.Delete("/remove-favorite", favoritesHandler.Remove)
		})
	}

	return r
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/tendant/ayah-auth/internal/config"
	httpserver "github.com/tendant/ayah-auth/internal/http"
	"github.com/tendant/ayah-auth/internal/http/features/favorites"
	"github.com/tendant/ayah-auth/internal/notification"
	"github.com/tendant/ayah-auth/pkg/auth"
	"github.com/tendant/ayah-auth/pkg/repository"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret: []byte(cfg.JWTSecret),
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.TokenTTL,
	})
	if err != nil {
		logger.Error("failed to create token service", "error", err)
		os.Exit(1)
	}

	var (
		credentials auth.CredentialStore
		favs        favorites.Store
	)
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		store := repository.NewMemoryStore()
		credentials, favs = store, store
		logger.Warn("using in-memory store, data is lost on restart")
	default:
		db, err := repository.NewDB(repository.Config{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		})
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		logger.Info("connected to database")

		if cfg.RunMigrations {
			if err := repository.Migrate(context.Background(), db); err != nil {
				logger.Error("failed to run migrations", "error", err)
				os.Exit(1)
			}
			logger.Info("migrations applied")
		}

		credentials = repository.NewUsersRepository(db)
		favs = repository.NewFavoritesRepository(db)
	}

	deps := auth.AccountDeps{
		Store:  credentials,
		Hasher: auth.NewPasswordHasher(cfg.BcryptCost),
		Tokens: tokens,
		Policy: auth.NewPasswordPolicy(cfg.PasswordPolicy),
		Emails: auth.EmailValidator{
			Strict:          cfg.Validation.StrictEmailValidation,
			BlockDisposable: cfg.Validation.BlockDisposableEmail,
		},
		Logger: logger,
	}

	if cfg.HasRedis() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		deps.Limiter = auth.NewAttemptLimiter(client, auth.LimiterConfig{
			MaxOTPRequests:    cfg.OTPLimits.MaxRequests,
			MaxVerifyAttempts: cfg.OTPLimits.MaxVerifyAttempts,
			Window:            cfg.OTPLimits.Window,
		})
		logger.Info("OTP attempt limiting enabled", "redis", cfg.Redis.Addr)
	}

	if cfg.HasSMTP() {
		mailer, err := notification.NewEmailService(notification.EmailConfig{
			Host:       cfg.SMTP.Host,
			Port:       cfg.SMTP.Port,
			User:       cfg.SMTP.User,
			Password:   cfg.SMTP.Password,
			From:       cfg.SMTP.From,
			FromName:   cfg.SMTP.FromName,
			SkipVerify: cfg.SMTP.SkipVerify,
		})
		if err != nil {
			logger.Error("failed to configure email service", "error", err)
			os.Exit(1)
		}
		deps.Notifier = mailer
		logger.Info("email service enabled")
	} else {
		logger.Warn("SMTP not configured, password recovery is unavailable")
	}

	accounts := auth.NewAccountService(auth.AccountConfig{
		OTPTTL:          cfg.OTPTTL,
		ResetTokenTTL:   cfg.ResetTokenTTL,
		MaxFailedLogins: cfg.MaxFailedLogins,
		LockoutDuration: cfg.LockoutDuration,
	}, deps)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:             logger,
		AccountService:     accounts,
		TokenService:       tokens,
		FavoritesStore:     favs,
		RateLimitConfig:    cfg.RateLimit,
		SecurityHeaders:    cfg.SecurityHeaders,
		Validation:         cfg.Validation,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "addr", addr, "store", cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}

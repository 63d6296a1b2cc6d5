package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	// Server
	ServerAddr string
	ServerPort int

	// Storage
	StoreDriver   string
	RunMigrations bool

	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret string
	JWTIssuer string
	TokenTTL  time.Duration

	// Password recovery and lockout
	OTPTTL          time.Duration
	ResetTokenTTL   time.Duration
	MaxFailedLogins int
	LockoutDuration time.Duration
	BcryptCost      int

	// CORS
	CORSAllowedOrigins []string

	SMTP            SMTPConfig
	Redis           RedisConfig
	OTPLimits       OTPLimitConfig
	PasswordPolicy  PasswordPolicyConfig
	RateLimit       RateLimitConfig
	SecurityHeaders SecurityHeadersConfig
	Validation      ValidationConfig
}

// SMTPConfig holds outgoing mail settings. Mail is disabled without a host.
type SMTPConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	From       string
	FromName   string
	SkipVerify bool
}

// RedisConfig holds the connection for OTP attempt limiting. Limiting is
// disabled without an address.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// OTPLimitConfig holds per-email recovery attempt budgets.
type OTPLimitConfig struct {
	MaxRequests       int
	MaxVerifyAttempts int
	Window            time.Duration
}

// PasswordPolicyConfig holds password complexity requirements.
type PasswordPolicyConfig struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireNumber    bool
	RequireSpecial   bool
}

// RateLimitConfig holds per-IP rate limiting settings for each route group.
type RateLimitConfig struct {
	Enabled bool

	AuthRequestsPerMinute int
	AuthWindowMinutes     int

	ResetRequestsPerWindow int
	ResetWindowMinutes     int

	FavoritesRequestsPerMinute int
	FavoritesWindowMinutes     int
}

// SecurityHeadersConfig holds response security header values.
type SecurityHeadersConfig struct {
	Enabled            bool
	CSP                string
	HSTSMaxAge         int
	FrameOptions       string
	ContentTypeOptions string
	XSSProtection      string
	ReferrerPolicy     string
	PermissionsPolicy  string
}

// ValidationConfig holds input validation settings.
type ValidationConfig struct {
	StrictEmailValidation bool
	BlockDisposableEmail  bool
	MaxRequestBodySize    int64
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		// Server defaults
		ServerAddr: getEnv("SERVER_ADDR", "0.0.0.0"),
		ServerPort: getEnvInt("SERVER_PORT", 8080),

		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		RunMigrations: getEnvBool("RUN_MIGRATIONS", true),

		// Database defaults
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "ayah_auth"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT defaults
		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "ayah-auth"),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 7*24*time.Hour),

		OTPTTL:          getEnvDuration("OTP_TTL", 10*time.Minute),
		ResetTokenTTL:   getEnvDuration("RESET_TOKEN_TTL", 15*time.Minute),
		MaxFailedLogins: getEnvInt("MAX_FAILED_LOGINS", 5),
		LockoutDuration: getEnvDuration("LOCKOUT_DURATION", 15*time.Minute),
		BcryptCost:      getEnvInt("BCRYPT_COST", 10),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvInt("SMTP_PORT", 465),
			User:       getEnv("SMTP_USER", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			From:       getEnv("SMTP_FROM", ""),
			FromName:   getEnv("SMTP_FROM_NAME", "Ayah"),
			SkipVerify: getEnvBool("SMTP_SKIP_VERIFY", false),
		},

		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},

		OTPLimits: OTPLimitConfig{
			MaxRequests:       getEnvInt("OTP_MAX_REQUESTS", 3),
			MaxVerifyAttempts: getEnvInt("OTP_MAX_VERIFY_ATTEMPTS", 5),
			Window:            getEnvDuration("OTP_LIMIT_WINDOW", 10*time.Minute),
		},

		PasswordPolicy: PasswordPolicyConfig{
			MinLength:        getEnvInt("PASSWORD_MIN_LENGTH", 6),
			RequireUppercase: getEnvBool("PASSWORD_REQUIRE_UPPERCASE", false),
			RequireLowercase: getEnvBool("PASSWORD_REQUIRE_LOWERCASE", false),
			RequireNumber:    getEnvBool("PASSWORD_REQUIRE_NUMBER", false),
			RequireSpecial:   getEnvBool("PASSWORD_REQUIRE_SPECIAL", false),
		},

		RateLimit: RateLimitConfig{
			Enabled:                    getEnvBool("RATE_LIMIT_ENABLED", true),
			AuthRequestsPerMinute:      getEnvInt("RATE_LIMIT_AUTH_REQUESTS", 10),
			AuthWindowMinutes:          getEnvInt("RATE_LIMIT_AUTH_WINDOW_MINUTES", 1),
			ResetRequestsPerWindow:     getEnvInt("RATE_LIMIT_RESET_REQUESTS", 5),
			ResetWindowMinutes:         getEnvInt("RATE_LIMIT_RESET_WINDOW_MINUTES", 15),
			FavoritesRequestsPerMinute: getEnvInt("RATE_LIMIT_FAVORITES_REQUESTS", 60),
			FavoritesWindowMinutes:     getEnvInt("RATE_LIMIT_FAVORITES_WINDOW_MINUTES", 1),
		},

		SecurityHeaders: SecurityHeadersConfig{
			Enabled:            getEnvBool("SECURITY_HEADERS_ENABLED", true),
			CSP:                getEnv("SECURITY_HEADERS_CSP", "default-src 'none'; frame-ancestors 'none'"),
			HSTSMaxAge:         getEnvInt("SECURITY_HEADERS_HSTS_MAX_AGE", 31536000),
			FrameOptions:       getEnv("SECURITY_HEADERS_FRAME_OPTIONS", "DENY"),
			ContentTypeOptions: getEnv("SECURITY_HEADERS_CONTENT_TYPE_OPTIONS", "nosniff"),
			XSSProtection:      getEnv("SECURITY_HEADERS_XSS_PROTECTION", "0"),
			ReferrerPolicy:     getEnv("SECURITY_HEADERS_REFERRER_POLICY", "no-referrer"),
			PermissionsPolicy:  getEnv("SECURITY_HEADERS_PERMISSIONS_POLICY", ""),
		},

		Validation: ValidationConfig{
			StrictEmailValidation: getEnvBool("STRICT_EMAIL_VALIDATION", true),
			BlockDisposableEmail:  getEnvBool("BLOCK_DISPOSABLE_EMAIL", false),
			MaxRequestBodySize:    int64(getEnvInt("MAX_REQUEST_BODY_SIZE", 1<<20)),
		},
	}

	// Validate required fields
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

// HasSMTP returns true if outgoing mail is configured.
func (c *Config) HasSMTP() bool {
	return c.SMTP.Host != "" && c.SMTP.From != ""
}

// HasRedis returns true if OTP attempt limiting is configured.
func (c *Config) HasRedis() bool {
	return c.Redis.Addr != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key")
	clearEnv(t, "SERVER_ADDR", "SERVER_PORT", "DB_HOST", "DB_PORT", "DB_SSLMODE",
		"STORE_DRIVER", "TOKEN_TTL", "OTP_TTL", "RESET_TOKEN_TTL", "MAX_FAILED_LOGINS",
		"LOCKOUT_DURATION", "SMTP_HOST", "REDIS_ADDR", "CORS_ALLOWED_ORIGINS", "PASSWORD_MIN_LENGTH")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerAddr != "0.0.0.0" {
		t.Errorf("ServerAddr = %q, want %q", cfg.ServerAddr, "0.0.0.0")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.StoreDriver != StoreDriverPostgres {
		t.Errorf("StoreDriver = %q, want %q", cfg.StoreDriver, StoreDriverPostgres)
	}
	if cfg.DBPort != 5432 {
		t.Errorf("DBPort = %d, want %d", cfg.DBPort, 5432)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Errorf("TokenTTL = %v, want %v", cfg.TokenTTL, 7*24*time.Hour)
	}
	if cfg.OTPTTL != 10*time.Minute {
		t.Errorf("OTPTTL = %v, want %v", cfg.OTPTTL, 10*time.Minute)
	}
	if cfg.ResetTokenTTL != 15*time.Minute {
		t.Errorf("ResetTokenTTL = %v, want %v", cfg.ResetTokenTTL, 15*time.Minute)
	}
	if cfg.MaxFailedLogins != 5 {
		t.Errorf("MaxFailedLogins = %d, want %d", cfg.MaxFailedLogins, 5)
	}
	if cfg.LockoutDuration != 15*time.Minute {
		t.Errorf("LockoutDuration = %v, want %v", cfg.LockoutDuration, 15*time.Minute)
	}
	if cfg.PasswordPolicy.MinLength != 6 {
		t.Errorf("PasswordPolicy.MinLength = %d, want %d", cfg.PasswordPolicy.MinLength, 6)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Errorf("CORSAllowedOrigins = %v, want [*]", cfg.CORSAllowedOrigins)
	}
	if cfg.HasSMTP() {
		t.Error("HasSMTP() = true without SMTP_HOST")
	}
	if cfg.HasRedis() {
		t.Error("HasRedis() = true without REDIS_ADDR")
	}
}

func TestLoad_RequiredJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Error("Load should fail when JWT_SECRET is not set")
	}
}

func TestLoad_UnsupportedStoreDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key")
	t.Setenv("STORE_DRIVER", "mongo")

	if _, err := Load(); err == nil {
		t.Error("Load should fail for an unknown STORE_DRIVER")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "custom-secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("OTP_TTL", "5m")
	t.Setenv("MAX_FAILED_LOGINS", "3")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_FROM", "no-reply@example.com")
	t.Setenv("SMTP_SKIP_VERIFY", "true")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://ayah.app, http://localhost:3000 ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 9090)
	}
	if cfg.StoreDriver != StoreDriverMemory {
		t.Errorf("StoreDriver = %q, want %q", cfg.StoreDriver, StoreDriverMemory)
	}
	if cfg.OTPTTL != 5*time.Minute {
		t.Errorf("OTPTTL = %v, want %v", cfg.OTPTTL, 5*time.Minute)
	}
	if cfg.MaxFailedLogins != 3 {
		t.Errorf("MaxFailedLogins = %d, want %d", cfg.MaxFailedLogins, 3)
	}
	if !cfg.HasSMTP() || !cfg.SMTP.SkipVerify {
		t.Errorf("SMTP = %+v, want configured with SkipVerify", cfg.SMTP)
	}
	if !cfg.HasRedis() {
		t.Error("HasRedis() = false with REDIS_ADDR set")
	}
	want := []string{"https://ayah.app", "http://localhost:3000"}
	if len(cfg.CORSAllowedOrigins) != len(want) {
		t.Fatalf("CORSAllowedOrigins = %v, want %v", cfg.CORSAllowedOrigins, want)
	}
	for i := range want {
		if cfg.CORSAllowedOrigins[i] != want[i] {
			t.Errorf("CORSAllowedOrigins[%d] = %q, want %q", i, cfg.CORSAllowedOrigins[i], want[i])
		}
	}
}

func TestHasSMTP(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		from     string
		expected bool
	}{
		{name: "both set", host: "smtp.example.com", from: "a@example.com", expected: true},
		{name: "only host", host: "smtp.example.com", expected: false},
		{name: "only from", from: "a@example.com", expected: false},
		{name: "neither set", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{SMTP: SMTPConfig{Host: tt.host, From: tt.from}}
			if cfg.HasSMTP() != tt.expected {
				t.Errorf("HasSMTP() = %v, want %v", cfg.HasSMTP(), tt.expected)
			}
		})
	}
}

func TestGetEnvInt_InvalidValue(t *testing.T) {
	t.Setenv("TEST_INT", "not-a-number")

	result := getEnvInt("TEST_INT", 42)
	if result != 42 {
		t.Errorf("getEnvInt should return default for invalid value, got %d", result)
	}
}

func TestGetEnvBool_InvalidValue(t *testing.T) {
	t.Setenv("TEST_BOOL", "maybe")

	if !getEnvBool("TEST_BOOL", true) {
		t.Error("getEnvBool should return default for invalid value")
	}
}

func TestGetEnvDuration_InvalidValue(t *testing.T) {
	t.Setenv("TEST_DURATION", "invalid")

	result := getEnvDuration("TEST_DURATION", 5*time.Minute)
	if result != 5*time.Minute {
		t.Errorf("getEnvDuration should return default for invalid value, got %v", result)
	}
}

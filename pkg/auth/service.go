package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/ayah-auth/pkg/domain"
)

// Default recovery and lockout settings.
const (
	DefaultOTPTTL          = 10 * time.Minute
	DefaultResetTokenTTL   = 15 * time.Minute
	DefaultMaxFailedLogins = 5
	DefaultLockoutDuration = 15 * time.Minute
)

// CredentialStore persists user records. Lookups by secret are conditional
// updates so a secret cannot be used after or alongside its invalidation.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Save(ctx context.Context, user *domain.User) error

	// SetRecovery overwrites the recovery columns of the account with email.
	SetRecovery(ctx context.Context, email string, r domain.Recovery) error
	// ConsumeOTP matches email, otpHash and an expiry after now, and moves
	// the account to next in the same operation. A miss returns
	// domain.ErrInvalidOrExpiredOTP.
	ConsumeOTP(ctx context.Context, email, otpHash string, now time.Time, next domain.Recovery) (*domain.User, error)
	// ConsumeResetToken matches email, tokenHash and an expiry after now,
	// stores passwordHash and clears recovery and lockout state. A miss
	// returns domain.ErrInvalidOrExpiredResetToken.
	ConsumeResetToken(ctx context.Context, email, tokenHash string, now time.Time, passwordHash string) (*domain.User, error)

	RecordLoginFailure(ctx context.Context, id uuid.UUID, now time.Time, maxAttempts int, lockout time.Duration) error
	ResetLoginFailures(ctx context.Context, id uuid.UUID) error
}

// Notifier delivers one-time codes to the account's address.
type Notifier interface {
	SendOTP(ctx context.Context, to, code string, ttl time.Duration) error
}

// Limiter throttles recovery attempts per email.
type Limiter interface {
	Allow(ctx context.Context, scope, key string) error
	Reset(ctx context.Context, scope, key string) error
}

// AccountConfig holds recovery and lockout settings.
type AccountConfig struct {
	OTPTTL          time.Duration
	ResetTokenTTL   time.Duration
	MaxFailedLogins int
	LockoutDuration time.Duration
}

// AccountService coordinates signup, login and password recovery.
type AccountService struct {
	config   AccountConfig
	store    CredentialStore
	hasher   *PasswordHasher
	tokens   *TokenService
	notifier Notifier
	limiter  Limiter
	policy   *PasswordPolicy
	emails   EmailValidator
	logger   *slog.Logger
	now      func() time.Time
}

// AccountDeps lists the collaborators of an AccountService. Notifier and
// Limiter may be nil. Logger defaults to slog.Default().
type AccountDeps struct {
	Store    CredentialStore
	Hasher   *PasswordHasher
	Tokens   *TokenService
	Notifier Notifier
	Limiter  Limiter
	Policy   *PasswordPolicy
	Emails   EmailValidator
	Logger   *slog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(config AccountConfig, deps AccountDeps) *AccountService {
	if config.OTPTTL <= 0 {
		config.OTPTTL = DefaultOTPTTL
	}
	if config.ResetTokenTTL <= 0 {
		config.ResetTokenTTL = DefaultResetTokenTTL
	}
	if config.MaxFailedLogins <= 0 {
		config.MaxFailedLogins = DefaultMaxFailedLogins
	}
	if config.LockoutDuration <= 0 {
		config.LockoutDuration = DefaultLockoutDuration
	}
	if deps.Hasher == nil {
		deps.Hasher = NewPasswordHasher(DefaultBcryptCost)
	}
	if deps.Policy == nil {
		deps.Policy = DefaultPasswordPolicy()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &AccountService{
		config:   config,
		store:    deps.Store,
		hasher:   deps.Hasher,
		tokens:   deps.Tokens,
		notifier: deps.Notifier,
		limiter:  deps.Limiter,
		policy:   deps.Policy,
		emails:   deps.Emails,
		logger:   deps.Logger,
		now:      time.Now,
	}
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Signup registers a new account and issues a session token.
func (s *AccountService) Signup(ctx context.Context, name, email, password string) (*AuthResult, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil, domain.NewValidationError("All fields are required")
	}
	if err := s.emails.Validate(email); err != nil {
		return nil, err
	}
	if err := s.policy.ValidatePassword(password); err != nil {
		return nil, err
	}

	email = NormalizeEmail(email)

	_, err := s.store.FindByEmail(ctx, email)
	if err == nil {
		return nil, domain.ErrEmailInUse
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	displayName := SanitizeName(name)
	user := &domain.User{
		ID:           uuid.New(),
		Name:         &displayName,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The unique index still guards against a concurrent signup.
	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issue(user)
}

// Login authenticates email and password and issues a session token.
// A locked account is refused before the password is compared.
func (s *AccountService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, domain.NewValidationError("Email and password are required")
	}

	user, err := s.store.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}

	now := s.now()
	if user.IsLockedAt(now) {
		return nil, domain.ErrAccountLocked
	}

	if !s.hasher.Compare(password, user.PasswordHash) {
		// An elapsed lockout starts a fresh count.
		if user.LockoutElapsed(now) {
			if err := s.store.ResetLoginFailures(ctx, user.ID); err != nil {
				return nil, fmt.Errorf("failed to reset login failures: %w", err)
			}
		}
		if err := s.store.RecordLoginFailure(ctx, user.ID, now, s.config.MaxFailedLogins, s.config.LockoutDuration); err != nil {
			return nil, fmt.Errorf("failed to record login failure: %w", err)
		}
		return nil, domain.ErrInvalidCredentials
	}

	if user.FailedLoginAttempts > 0 || user.LockedUntil != nil {
		if err := s.store.ResetLoginFailures(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("failed to reset login failures: %w", err)
		}
		user.FailedLoginAttempts = 0
		user.LockedUntil = nil
	}

	return s.issue(user)
}

// ForgotPassword issues a one-time code and mails it to the account. The
// code is never returned. A later call supersedes an earlier code.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return domain.NewValidationError("Email is required")
	}
	email = NormalizeEmail(email)

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	if s.notifier == nil {
		return domain.ErrNotifierUnavailable
	}

	if s.limiter != nil {
		if err := s.limiter.Allow(ctx, ScopeOTPRequest, email); err != nil {
			return err
		}
	}

	code, err := GenerateOTP()
	if err != nil {
		return err
	}

	expiresAt := s.now().Add(s.config.OTPTTL)
	if err := s.store.SetRecovery(ctx, user.Email, domain.OTPPending(HashSecret(code), expiresAt)); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}

	if err := s.notifier.SendOTP(ctx, user.Email, code, s.config.OTPTTL); err != nil {
		return fmt.Errorf("failed to send otp: %w", err)
	}

	// A fresh code gets a fresh verification budget.
	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, ScopeOTPVerify, email); err != nil {
			return err
		}
	}

	return nil
}

// VerifyOTP exchanges a valid one-time code for a reset token. Wrong and
// expired codes are indistinguishable. The code is cleared on success.
func (s *AccountService) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(otp) == "" {
		return "", domain.NewValidationError("Email and OTP are required")
	}
	email = NormalizeEmail(email)

	if s.limiter != nil {
		if err := s.limiter.Allow(ctx, ScopeOTPVerify, email); err != nil {
			return "", err
		}
	}

	resetToken, err := GenerateResetToken()
	if err != nil {
		return "", err
	}

	now := s.now()
	next := domain.OTPVerified(HashSecret(resetToken), now.Add(s.config.ResetTokenTTL))
	if _, err := s.store.ConsumeOTP(ctx, email, HashSecret(strings.TrimSpace(otp)), now, next); err != nil {
		return "", err
	}

	return resetToken, nil
}

// ResetPassword replaces the password of the account holding a valid reset
// token and returns the account to the idle recovery state. It does not
// issue a session.
func (s *AccountService) ResetPassword(ctx context.Context, email, newPassword, resetToken string) error {
	if strings.TrimSpace(email) == "" || newPassword == "" || strings.TrimSpace(resetToken) == "" {
		return domain.NewValidationError("Email, new password and reset token are required")
	}
	if err := s.policy.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	email = NormalizeEmail(email)
	user, err := s.store.ConsumeResetToken(ctx, email, HashSecret(strings.TrimSpace(resetToken)), s.now(), hash)
	if err != nil {
		return err
	}
	s.logger.Info("password reset successful", "user_id", user.ID)

	if s.limiter != nil {
		// The password is already changed.
		if err := s.limiter.Reset(ctx, ScopeOTPRequest, email); err != nil {
			s.logger.Warn("failed to reset otp request limit", "error", err, "user_id", user.ID)
		}
	}

	return nil
}

// UpdateProfile changes the name and email of an account. The stored
// password hash is carried over without being hashed again.
func (s *AccountService) UpdateProfile(ctx context.Context, id uuid.UUID, name, email string) (*domain.User, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return nil, domain.NewValidationError("Name and email are required")
	}
	if err := s.emails.Validate(email); err != nil {
		return nil, err
	}

	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	displayName := SanitizeName(name)
	user.Name = &displayName
	user.Email = NormalizeEmail(email)
	user.PasswordHash, err = s.hasher.HashIfNeeded(user.PasswordHash)
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser returns the account with the given ID.
func (s *AccountService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.store.FindByID(ctx, id)
}

func (s *AccountService) issue(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

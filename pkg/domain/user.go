package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents the account together with its credential state.
type User struct {
	ID                  uuid.UUID
	Name                *string
	Email               string
	PasswordHash        string
	FailedLoginAttempts int
	LockedUntil         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time

	// Password recovery columns. Written only through Recovery values so the
	// secret and its expiry always change together.
	OTPHash             *string
	OTPExpiresAt        *time.Time
	ResetTokenHash      *string
	ResetTokenExpiresAt *time.Time
}

// IsLockedAt reports whether the account is locked at the given instant.
func (u *User) IsLockedAt(now time.Time) bool {
	if u.LockedUntil == nil {
		return false
	}
	return now.Before(*u.LockedUntil)
}

// LockoutElapsed reports whether a lockout was set and has since passed.
// The failed-login counter starts over in that case.
func (u *User) LockoutElapsed(now time.Time) bool {
	return u.LockedUntil != nil && !now.Before(*u.LockedUntil)
}

// DisplayName returns the name or an empty string.
func (u *User) DisplayName() string {
	if u.Name == nil {
		return ""
	}
	return *u.Name
}

// Recovery returns the password recovery state at the given instant.
// Secrets past their expiry read as RecoveryNone.
func (u *User) Recovery(now time.Time) Recovery {
	if u.ResetTokenHash != nil && u.ResetTokenExpiresAt != nil && now.Before(*u.ResetTokenExpiresAt) {
		return Recovery{
			Kind:       RecoveryOTPVerified,
			SecretHash: *u.ResetTokenHash,
			ExpiresAt:  *u.ResetTokenExpiresAt,
		}
	}
	if u.OTPHash != nil && u.OTPExpiresAt != nil && now.Before(*u.OTPExpiresAt) {
		return Recovery{
			Kind:       RecoveryOTPPending,
			SecretHash: *u.OTPHash,
			ExpiresAt:  *u.OTPExpiresAt,
		}
	}
	return Recovery{Kind: RecoveryNone}
}

// ApplyRecovery overwrites the four recovery columns from r.
func (u *User) ApplyRecovery(r Recovery) {
	u.OTPHash, u.OTPExpiresAt = nil, nil
	u.ResetTokenHash, u.ResetTokenExpiresAt = nil, nil

	switch r.Kind {
	case RecoveryOTPPending:
		hash, exp := r.SecretHash, r.ExpiresAt
		u.OTPHash, u.OTPExpiresAt = &hash, &exp
	case RecoveryOTPVerified:
		hash, exp := r.SecretHash, r.ExpiresAt
		u.ResetTokenHash, u.ResetTokenExpiresAt = &hash, &exp
	}
}

// RecoveryKind enumerates the password recovery states of an account.
type RecoveryKind int

const (
	// RecoveryNone means no recovery is in progress.
	RecoveryNone RecoveryKind = iota
	// RecoveryOTPPending means a one-time code was mailed and awaits verification.
	RecoveryOTPPending
	// RecoveryOTPVerified means the code was verified and a reset token is outstanding.
	RecoveryOTPVerified
)

func (k RecoveryKind) String() string {
	switch k {
	case RecoveryOTPPending:
		return "otp_pending"
	case RecoveryOTPVerified:
		return "otp_verified"
	default:
		return "none"
	}
}

// Recovery is the tagged password recovery state. SecretHash holds the
// SHA-256 digest of the OTP (pending) or reset token (verified).
type Recovery struct {
	Kind       RecoveryKind
	SecretHash string
	ExpiresAt  time.Time
}

// NoRecovery returns the idle recovery state.
func NoRecovery() Recovery {
	return Recovery{Kind: RecoveryNone}
}

// OTPPending returns the state after a one-time code was issued.
func OTPPending(otpHash string, expiresAt time.Time) Recovery {
	return Recovery{Kind: RecoveryOTPPending, SecretHash: otpHash, ExpiresAt: expiresAt}
}

// OTPVerified returns the state after the code was verified and a reset token minted.
func OTPVerified(tokenHash string, expiresAt time.Time) Recovery {
	return Recovery{Kind: RecoveryOTPVerified, SecretHash: tokenHash, ExpiresAt: expiresAt}
}

// Columns flattens r into nullable column values in the order
// otp_hash, otp_expires_at, reset_token_hash, reset_token_expires_at.
func (r Recovery) Columns() (otpHash *string, otpExpiresAt *time.Time, resetHash *string, resetExpiresAt *time.Time) {
	var u User
	u.ApplyRecovery(r)
	return u.OTPHash, u.OTPExpiresAt, u.ResetTokenHash, u.ResetTokenExpiresAt
}

package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestUser_IsLockedAt(t *testing.T) {
	now := time.Now()
	past := now.Add(-1 * time.Hour)
	future := now.Add(1 * time.Hour)

	tests := []struct {
		name        string
		lockedUntil *time.Time
		want        bool
	}{
		{
			name:        "not locked (nil)",
			lockedUntil: nil,
			want:        false,
		},
		{
			name:        "locked (future time)",
			lockedUntil: &future,
			want:        true,
		},
		{
			name:        "not locked (past time)",
			lockedUntil: &past,
			want:        false,
		},
		{
			name:        "unlocked at the exact expiry",
			lockedUntil: &now,
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &User{
				ID:          uuid.New(),
				Email:       "test@example.com",
				LockedUntil: tt.lockedUntil,
			}

			if got := user.IsLockedAt(now); got != tt.want {
				t.Errorf("IsLockedAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUser_LockoutElapsed(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	if (&User{}).LockoutElapsed(now) {
		t.Error("LockoutElapsed() = true for user without lockout")
	}
	if !(&User{LockedUntil: &past}).LockoutElapsed(now) {
		t.Error("LockoutElapsed() = false for lockout in the past")
	}
	if (&User{LockedUntil: &future}).LockoutElapsed(now) {
		t.Error("LockoutElapsed() = true for active lockout")
	}
}

func TestUser_Recovery(t *testing.T) {
	now := time.Now()
	later := now.Add(10 * time.Minute)
	earlier := now.Add(-time.Second)
	otp := "otp-hash"
	token := "token-hash"

	tests := []struct {
		name string
		user User
		want RecoveryKind
	}{
		{
			name: "idle",
			user: User{},
			want: RecoveryNone,
		},
		{
			name: "otp pending",
			user: User{OTPHash: &otp, OTPExpiresAt: &later},
			want: RecoveryOTPPending,
		},
		{
			name: "otp expired",
			user: User{OTPHash: &otp, OTPExpiresAt: &earlier},
			want: RecoveryNone,
		},
		{
			name: "otp expiring exactly now",
			user: User{OTPHash: &otp, OTPExpiresAt: &now},
			want: RecoveryNone,
		},
		{
			name: "reset token outstanding",
			user: User{ResetTokenHash: &token, ResetTokenExpiresAt: &later},
			want: RecoveryOTPVerified,
		},
		{
			name: "reset token expired",
			user: User{ResetTokenHash: &token, ResetTokenExpiresAt: &earlier},
			want: RecoveryNone,
		},
		{
			name: "hash without expiry",
			user: User{OTPHash: &otp},
			want: RecoveryNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.Recovery(now).Kind; got != tt.want {
				t.Errorf("Recovery().Kind = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUser_ApplyRecovery(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	u := &User{}

	u.ApplyRecovery(OTPPending("a", exp))
	if u.OTPHash == nil || *u.OTPHash != "a" || u.OTPExpiresAt == nil {
		t.Fatalf("pending: otp columns not set: %+v", u)
	}
	if u.ResetTokenHash != nil || u.ResetTokenExpiresAt != nil {
		t.Fatalf("pending: reset columns should be empty: %+v", u)
	}

	u.ApplyRecovery(OTPVerified("b", exp))
	if u.OTPHash != nil || u.OTPExpiresAt != nil {
		t.Fatalf("verified: otp columns should be cleared: %+v", u)
	}
	if u.ResetTokenHash == nil || *u.ResetTokenHash != "b" || u.ResetTokenExpiresAt == nil {
		t.Fatalf("verified: reset columns not set: %+v", u)
	}

	u.ApplyRecovery(NoRecovery())
	if u.OTPHash != nil || u.OTPExpiresAt != nil || u.ResetTokenHash != nil || u.ResetTokenExpiresAt != nil {
		t.Fatalf("none: all recovery columns should be cleared: %+v", u)
	}
}

func TestRecovery_Columns(t *testing.T) {
	exp := time.Now().Add(time.Hour)

	otpHash, otpExp, resetHash, resetExp := OTPPending("x", exp).Columns()
	if otpHash == nil || *otpHash != "x" || otpExp == nil || !otpExp.Equal(exp) {
		t.Errorf("pending columns = %v %v", otpHash, otpExp)
	}
	if resetHash != nil || resetExp != nil {
		t.Errorf("pending reset columns = %v %v, want nil", resetHash, resetExp)
	}

	otpHash, otpExp, resetHash, resetExp = NoRecovery().Columns()
	if otpHash != nil || otpExp != nil || resetHash != nil || resetExp != nil {
		t.Error("NoRecovery().Columns() should be all nil")
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("All fields are required")
	if err.Error() != "All fields are required" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !IsValidation(err) {
		t.Error("IsValidation() = false for ValidationError")
	}
	if IsValidation(ErrUserNotFound) {
		t.Error("IsValidation() = true for sentinel error")
	}
}

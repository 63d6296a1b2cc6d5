package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/ayah-auth/pkg/domain"
)

func seedUser(t *testing.T, s *MemoryStore, email string) *domain.User {
	t.Helper()
	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "$2a$10$hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.Create(context.Background(), user))
	return user
}

func TestMemoryStore_CreateDuplicate(t *testing.T) {
	s := NewMemoryStore()
	seedUser(t, s, "amina@example.com")

	err := s.Create(context.Background(), &domain.User{ID: uuid.New(), Email: "amina@example.com"})
	assert.ErrorIs(t, err, domain.ErrEmailInUse)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	user := seedUser(t, s, "amina@example.com")

	found, err := s.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	found.PasswordHash = "tampered"

	again, err := s.FindByEmail(context.Background(), "amina@example.com")
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$hash", again.PasswordHash)
}

func TestMemoryStore_ConsumeOTP(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedUser(t, s, "amina@example.com")
	now := time.Now()

	require.NoError(t, s.SetRecovery(ctx, "amina@example.com", domain.OTPPending("otp", now.Add(time.Minute))))

	_, err := s.ConsumeOTP(ctx, "amina@example.com", "wrong", now, domain.OTPVerified("reset", now.Add(time.Hour)))
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredOTP)

	_, err = s.ConsumeOTP(ctx, "amina@example.com", "otp", now.Add(2*time.Minute), domain.OTPVerified("reset", now.Add(time.Hour)))
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredOTP, "expired code must not match")

	user, err := s.ConsumeOTP(ctx, "amina@example.com", "otp", now, domain.OTPVerified("reset", now.Add(time.Hour)))
	require.NoError(t, err)
	assert.Nil(t, user.OTPHash)
	assert.Equal(t, domain.RecoveryOTPVerified, user.Recovery(now).Kind)

	_, err = s.ConsumeOTP(ctx, "amina@example.com", "otp", now, domain.OTPVerified("reset2", now.Add(time.Hour)))
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredOTP, "code is single use")
}

func TestMemoryStore_ConsumeResetToken(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	user := seedUser(t, s, "amina@example.com")
	now := time.Now()

	require.NoError(t, s.RecordLoginFailure(ctx, user.ID, now, 1, time.Hour))
	require.NoError(t, s.SetRecovery(ctx, "amina@example.com", domain.OTPVerified("reset", now.Add(time.Minute))))

	updated, err := s.ConsumeResetToken(ctx, "amina@example.com", "reset", now, "$2a$10$new")
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$new", updated.PasswordHash)
	assert.Equal(t, domain.RecoveryNone, updated.Recovery(now).Kind)
	assert.Zero(t, updated.FailedLoginAttempts)
	assert.Nil(t, updated.LockedUntil)

	_, err = s.ConsumeResetToken(ctx, "amina@example.com", "reset", now, "$2a$10$other")
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredResetToken)
}

func TestMemoryStore_RecordLoginFailure(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	user := seedUser(t, s, "amina@example.com")
	now := time.Now()

	for i := 0; i < 2; i++ {
		require.NoError(t, s.RecordLoginFailure(ctx, user.ID, now, 3, time.Minute))
	}
	found, _ := s.FindByID(ctx, user.ID)
	assert.False(t, found.IsLockedAt(now))

	require.NoError(t, s.RecordLoginFailure(ctx, user.ID, now, 3, time.Minute))
	found, _ = s.FindByID(ctx, user.ID)
	assert.True(t, found.IsLockedAt(now))
	assert.False(t, found.IsLockedAt(now.Add(time.Minute)))

	require.NoError(t, s.ResetLoginFailures(ctx, user.ID))
	found, _ = s.FindByID(ctx, user.ID)
	assert.Zero(t, found.FailedLoginAttempts)
	assert.Nil(t, found.LockedUntil)
}

func TestMemoryStore_Favorites(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	userID := uuid.New()

	_, err := s.Add(ctx, userID, ayatulKursi)
	require.NoError(t, err)
	_, err = s.Add(ctx, userID, ayatulKursi)
	assert.ErrorIs(t, err, domain.ErrFavoriteExists)

	_, err = s.Add(ctx, userID, domain.Ayah{ID: "1:1", VerseKey: "1:1", Surah: 1, NumberInSurah: 1})
	require.NoError(t, err)

	list, err := s.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2:255", list[0].Ayah.ID)

	other, err := s.ListByUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, s.Remove(ctx, userID, "2:255"))
	require.NoError(t, s.Remove(ctx, userID, "2:255"))
	list, _ = s.ListByUser(ctx, userID)
	require.Len(t, list, 1)
	assert.Equal(t, "1:1", list[0].Ayah.ID)
}

func TestMemoryStore_Save(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	amina := seedUser(t, s, "amina@example.com")
	seedUser(t, s, "bilal@example.com")

	name := "Amina K"
	amina.Name = &name
	require.NoError(t, s.Save(ctx, amina))

	stored, err := s.FindByID(ctx, amina.ID)
	require.NoError(t, err)
	assert.Equal(t, "Amina K", stored.DisplayName())
	assert.Equal(t, "$2a$10$hash", stored.PasswordHash)

	amina.Email = "bilal@example.com"
	assert.ErrorIs(t, s.Save(ctx, amina), domain.ErrEmailInUse)

	amina.Email = "amina.k@example.com"
	require.NoError(t, s.Save(ctx, amina))
	_, err = s.FindByEmail(ctx, "amina@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = s.FindByEmail(ctx, "amina.k@example.com")
	assert.NoError(t, err)

	assert.ErrorIs(t, s.Save(ctx, &domain.User{ID: uuid.New(), Email: "x@example.com"}), domain.ErrUserNotFound)
}

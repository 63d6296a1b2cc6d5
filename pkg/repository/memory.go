package repository

import (
	"context"
	"crypto/subtle"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/ayah-auth/pkg/domain"
)

// MemoryStore keeps users and favorites in process memory. It backs the
// "memory" store driver and the service tests. Every method holds the lock
// for its whole read-modify-write, so consumption of secrets is atomic.
type MemoryStore struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*domain.User
	byEmail   map[string]uuid.UUID
	favorites map[uuid.UUID][]domain.Favorite
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[uuid.UUID]*domain.User),
		byEmail:   make(map[string]uuid.UUID),
		favorites: make(map[uuid.UUID][]domain.Favorite),
	}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.Name = clonePtr(u.Name)
	c.LockedUntil = clonePtr(u.LockedUntil)
	c.OTPHash = clonePtr(u.OTPHash)
	c.OTPExpiresAt = clonePtr(u.OTPExpiresAt)
	c.ResetTokenHash = clonePtr(u.ResetTokenHash)
	c.ResetTokenExpiresAt = clonePtr(u.ResetTokenExpiresAt)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (s *MemoryStore) lookupLocked(email string) (*domain.User, bool) {
	id, ok := s.byEmail[email]
	if !ok {
		return nil, false
	}
	return s.users[id], true
}

// Create stores a new user.
func (s *MemoryStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[user.Email]; ok {
		return domain.ErrEmailInUse
	}
	s.users[user.ID] = cloneUser(user)
	s.byEmail[user.Email] = user.ID
	return nil
}

// FindByID retrieves a user by ID.
func (s *MemoryStore) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(user), nil
}

// FindByEmail retrieves a user by email.
func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.lookupLocked(email)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func digestEqual(stored, given string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

// Save updates the profile and password of a user.
func (s *MemoryStore) Save(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if stored.Email != user.Email {
		if _, taken := s.byEmail[user.Email]; taken {
			return domain.ErrEmailInUse
		}
		delete(s.byEmail, stored.Email)
		s.byEmail[user.Email] = user.ID
	}

	user.UpdatedAt = time.Now()
	stored.Name = clonePtr(user.Name)
	stored.Email = user.Email
	stored.PasswordHash = user.PasswordHash
	stored.UpdatedAt = user.UpdatedAt
	return nil
}

// SetRecovery overwrites the recovery state of the account with email.
func (s *MemoryStore) SetRecovery(_ context.Context, email string, r domain.Recovery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.lookupLocked(email)
	if !ok {
		return domain.ErrUserNotFound
	}
	user.ApplyRecovery(r)
	user.UpdatedAt = time.Now()
	return nil
}

// ConsumeOTP moves an account holding an unexpired matching OTP to next.
func (s *MemoryStore) ConsumeOTP(_ context.Context, email, otpHash string, now time.Time, next domain.Recovery) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.lookupLocked(email)
	if !ok {
		return nil, domain.ErrInvalidOrExpiredOTP
	}
	if user.OTPHash == nil || user.OTPExpiresAt == nil ||
		!digestEqual(*user.OTPHash, otpHash) || !now.Before(*user.OTPExpiresAt) {
		return nil, domain.ErrInvalidOrExpiredOTP
	}

	user.ApplyRecovery(next)
	user.UpdatedAt = now
	return cloneUser(user), nil
}

// ConsumeResetToken stores passwordHash for the account holding an unexpired
// matching reset token and clears recovery and lockout state.
func (s *MemoryStore) ConsumeResetToken(_ context.Context, email, tokenHash string, now time.Time, passwordHash string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.lookupLocked(email)
	if !ok {
		return nil, domain.ErrInvalidOrExpiredResetToken
	}
	if user.ResetTokenHash == nil || user.ResetTokenExpiresAt == nil ||
		!digestEqual(*user.ResetTokenHash, tokenHash) || !now.Before(*user.ResetTokenExpiresAt) {
		return nil, domain.ErrInvalidOrExpiredResetToken
	}

	user.PasswordHash = passwordHash
	user.ApplyRecovery(domain.NoRecovery())
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.UpdatedAt = now
	return cloneUser(user), nil
}

// RecordLoginFailure increments the failed login counter and locks the
// account once it reaches maxAttempts.
func (s *MemoryStore) RecordLoginFailure(_ context.Context, id uuid.UUID, now time.Time, maxAttempts int, lockout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.FailedLoginAttempts++
	if user.FailedLoginAttempts >= maxAttempts {
		until := now.Add(lockout)
		user.LockedUntil = &until
	}
	user.UpdatedAt = now
	return nil
}

// ResetLoginFailures resets the failed login counter and clears lockout.
func (s *MemoryStore) ResetLoginFailures(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.UpdatedAt = time.Now()
	return nil
}

// Add bookmarks ayah for the user.
func (s *MemoryStore) Add(_ context.Context, userID uuid.UUID, ayah domain.Ayah) (*domain.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, fav := range s.favorites[userID] {
		if fav.Ayah.ID == ayah.ID {
			return nil, domain.ErrFavoriteExists
		}
	}

	now := time.Now()
	fav := domain.Favorite{
		ID:        uuid.New(),
		UserID:    userID,
		Ayah:      ayah,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.favorites[userID] = append(s.favorites[userID], fav)
	return &fav, nil
}

// ListByUser returns the user's favorites, oldest first.
func (s *MemoryStore) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	favorites := make([]domain.Favorite, len(s.favorites[userID]))
	copy(favorites, s.favorites[userID])
	sort.SliceStable(favorites, func(i, j int) bool {
		return favorites[i].CreatedAt.Before(favorites[j].CreatedAt)
	})
	return favorites, nil
}

// Remove deletes the bookmark for ayahID if present.
func (s *MemoryStore) Remove(_ context.Context, userID uuid.UUID, ayahID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.favorites[userID]
	for i, fav := range list {
		if fav.Ayah.ID == ayahID {
			s.favorites[userID] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	return nil
}

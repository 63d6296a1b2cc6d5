package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/ayah-auth/pkg/domain"
)

const userColumns = `id, name, email, password_hash, otp_hash, otp_expires_at,
		       reset_token_hash, reset_token_expires_at, failed_login_attempts,
		       locked_until, created_at, updated_at`

// UsersRepository handles user persistence in Postgres. Emails are expected
// to be normalized by the caller.
type UsersRepository struct {
	db Querier
}

// NewUsersRepository creates a new users repository.
func NewUsersRepository(db Querier) *UsersRepository {
	return &UsersRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.OTPHash, &user.OTPExpiresAt, &user.ResetTokenHash, &user.ResetTokenExpiresAt,
		&user.FailedLoginAttempts, &user.LockedUntil, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create creates a new user.
func (r *UsersRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrEmailInUse
	}
	return err
}

// FindByID retrieves a user by ID.
func (r *UsersRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	return user, err
}

// FindByEmail retrieves a user by email.
func (r *UsersRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	return user, err
}

// Save updates the profile and password columns of a user.
func (r *UsersRepository) Save(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET name = $2, email = $3, password_hash = $4, updated_at = $5
		WHERE id = $1
	`
	user.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrEmailInUse
	}
	return expectOneRow(result, err, domain.ErrUserNotFound)
}

// SetRecovery overwrites the recovery columns for the account with email.
func (r *UsersRepository) SetRecovery(ctx context.Context, email string, rec domain.Recovery) error {
	query := `
		UPDATE users
		SET otp_hash = $2, otp_expires_at = $3,
		    reset_token_hash = $4, reset_token_expires_at = $5,
		    updated_at = NOW()
		WHERE email = $1
	`
	otpHash, otpExp, resetHash, resetExp := rec.Columns()
	result, err := r.db.ExecContext(ctx, query, email, otpHash, otpExp, resetHash, resetExp)
	return expectOneRow(result, err, domain.ErrUserNotFound)
}

// ConsumeOTP moves an account holding an unexpired matching OTP to next.
func (r *UsersRepository) ConsumeOTP(ctx context.Context, email, otpHash string, now time.Time, next domain.Recovery) (*domain.User, error) {
	query := `
		UPDATE users
		SET otp_hash = $4, otp_expires_at = $5,
		    reset_token_hash = $6, reset_token_expires_at = $7,
		    updated_at = $3
		WHERE email = $1 AND otp_hash = $2 AND otp_expires_at > $3
		RETURNING ` + userColumns
	nextOTP, nextOTPExp, nextReset, nextResetExp := next.Columns()
	user, err := scanUser(r.db.QueryRowContext(ctx, query,
		email, otpHash, now, nextOTP, nextOTPExp, nextReset, nextResetExp,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrInvalidOrExpiredOTP
	}
	return user, err
}

// ConsumeResetToken stores a new password hash for the account holding an
// unexpired matching reset token and clears recovery and lockout state.
func (r *UsersRepository) ConsumeResetToken(ctx context.Context, email, tokenHash string, now time.Time, passwordHash string) (*domain.User, error) {
	query := `
		UPDATE users
		SET password_hash = $4,
		    otp_hash = NULL, otp_expires_at = NULL,
		    reset_token_hash = NULL, reset_token_expires_at = NULL,
		    failed_login_attempts = 0, locked_until = NULL,
		    updated_at = $3
		WHERE email = $1 AND reset_token_hash = $2 AND reset_token_expires_at > $3
		RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email, tokenHash, now, passwordHash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrInvalidOrExpiredResetToken
	}
	return user, err
}

// RecordLoginFailure increments the failed login counter and locks the
// account once it reaches maxAttempts.
func (r *UsersRepository) RecordLoginFailure(ctx context.Context, id uuid.UUID, now time.Time, maxAttempts int, lockout time.Duration) error {
	query := `
		UPDATE users
		SET failed_login_attempts = failed_login_attempts + 1,
		    locked_until = CASE
		        WHEN failed_login_attempts + 1 >= $2 THEN $3
		        ELSE locked_until
		    END,
		    updated_at = $4
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, maxAttempts, now.Add(lockout), now)
	return expectOneRow(result, err, domain.ErrUserNotFound)
}

// ResetLoginFailures resets the failed login counter and clears lockout.
func (r *UsersRepository) ResetLoginFailures(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE users
		SET failed_login_attempts = 0,
		    locked_until = NULL,
		    updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id)
	return expectOneRow(result, err, domain.ErrUserNotFound)
}

func expectOneRow(result sql.Result, err error, notFound error) error {
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}

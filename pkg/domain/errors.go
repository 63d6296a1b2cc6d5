package domain

import "errors"

// Authentication errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked due to too many failed login attempts")
	ErrInvalidToken       = errors.New("invalid token")
)

// Recovery errors. A wrong secret and an expired one are reported with the
// same error.
var (
	ErrInvalidOrExpiredOTP        = errors.New("invalid or expired otp")
	ErrInvalidOrExpiredResetToken = errors.New("invalid or expired reset token")
	ErrTooManyAttempts            = errors.New("too many attempts")
	ErrLimiterUnavailable         = errors.New("attempt limiter unavailable")
	ErrNotifierUnavailable        = errors.New("notification service not configured")
)

// ErrFavoriteExists is returned when the verse is already bookmarked.
var ErrFavoriteExists = errors.New("favorite already exists")

// ValidationError reports malformed or missing input. Message is safe to
// return to the client verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

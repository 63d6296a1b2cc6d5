package auth

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/tendant/ayah-auth/pkg/domain"
)

// Common disposable email domains to block (can be extended)
var disposableDomains = map[string]bool{
	"tempmail.com":      true,
	"10minutemail.com":  true,
	"guerrillamail.com": true,
	"mailinator.com":    true,
	"throwaway.email":   true,
}

// Email validation regex (stricter than RFC 5322 for practical use)
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)

const maxEmailLength = 254 // RFC 5321

// Messages returned to clients for rejected addresses.
const (
	msgInvalidEmail    = "Invalid email format."
	msgDisposableEmail = "Disposable email addresses are not allowed."
)

// EmailValidator checks addresses submitted at signup.
type EmailValidator struct {
	Strict          bool
	BlockDisposable bool
}

// Validate validates an email address for format and length.
func (v EmailValidator) Validate(email string) error {
	normalized := NormalizeEmail(email)
	if normalized == "" || len(normalized) > maxEmailLength {
		return domain.NewValidationError(msgInvalidEmail)
	}

	// mail.ParseAddress accepts display names; require a bare address.
	addr, err := mail.ParseAddress(normalized)
	if err != nil || addr.Address != normalized || addr.Name != "" {
		return domain.NewValidationError(msgInvalidEmail)
	}

	if v.Strict && !emailRegex.MatchString(addr.Address) {
		return domain.NewValidationError(msgInvalidEmail)
	}

	if v.BlockDisposable && disposableDomains[getDomain(addr.Address)] {
		return domain.NewValidationError(msgDisposableEmail)
	}

	return nil
}

// NormalizeEmail normalizes an email address by lowercasing and trimming.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// getDomain extracts the domain from an email address.
func getDomain(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}

package auth

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/tendant/ayah-auth/internal/config"
	"github.com/tendant/ayah-auth/pkg/domain"
)

// DefaultMinPasswordLength is the shortest password accepted at signup and reset.
const DefaultMinPasswordLength = 6

// PasswordPolicy defines password complexity requirements.
type PasswordPolicy struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireNumber    bool
	RequireSpecial   bool
}

// NewPasswordPolicy creates a PasswordPolicy from config.
func NewPasswordPolicy(cfg config.PasswordPolicyConfig) *PasswordPolicy {
	return &PasswordPolicy{
		MinLength:        cfg.MinLength,
		RequireUppercase: cfg.RequireUppercase,
		RequireLowercase: cfg.RequireLowercase,
		RequireNumber:    cfg.RequireNumber,
		RequireSpecial:   cfg.RequireSpecial,
	}
}

// DefaultPasswordPolicy returns the length-only policy.
func DefaultPasswordPolicy() *PasswordPolicy {
	return &PasswordPolicy{MinLength: DefaultMinPasswordLength}
}

// ValidatePassword checks if a password meets the policy requirements.
// Failures are *domain.ValidationError.
func (p *PasswordPolicy) ValidatePassword(password string) error {
	if p.MinLength > 0 && len(password) < p.MinLength {
		return domain.NewValidationError(fmt.Sprintf("Password must be at least %d characters long.", p.MinLength))
	}

	// bcrypt ignores everything past 72 bytes
	if len(password) > maxPasswordBytes {
		return domain.NewValidationError(fmt.Sprintf("Password must be at most %d bytes long.", maxPasswordBytes))
	}

	if p.RequireUppercase && !containsUppercase(password) {
		return domain.NewValidationError("Password must contain at least one uppercase letter.")
	}

	if p.RequireLowercase && !containsLowercase(password) {
		return domain.NewValidationError("Password must contain at least one lowercase letter.")
	}

	if p.RequireNumber && !containsNumber(password) {
		return domain.NewValidationError("Password must contain at least one number.")
	}

	if p.RequireSpecial && !containsSpecial(password) {
		return domain.NewValidationError("Password must contain at least one special character.")
	}

	return nil
}

// GetRequirements returns a human-readable description of the policy.
func (p *PasswordPolicy) GetRequirements() string {
	if !p.HasRequirements() {
		return "No password requirements"
	}

	var requirements []string

	if p.MinLength > 0 {
		requirements = append(requirements, fmt.Sprintf("at least %d characters", p.MinLength))
	}
	if p.RequireUppercase {
		requirements = append(requirements, "one uppercase letter")
	}
	if p.RequireLowercase {
		requirements = append(requirements, "one lowercase letter")
	}
	if p.RequireNumber {
		requirements = append(requirements, "one number")
	}
	if p.RequireSpecial {
		requirements = append(requirements, "one special character")
	}

	return "Password must contain " + strings.Join(requirements, ", ")
}

// HasRequirements returns true if the policy has any requirements.
func (p *PasswordPolicy) HasRequirements() bool {
	return p.MinLength > 0 || p.RequireUppercase || p.RequireLowercase || p.RequireNumber || p.RequireSpecial
}

func containsUppercase(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func containsLowercase(s string) bool {
	for _, r := range s {
		if unicode.IsLower(r) {
			return true
		}
	}
	return false
}

func containsNumber(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func containsSpecial(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			return true
		}
	}
	return false
}

package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/ayah-auth/internal/config"
	"github.com/tendant/ayah-auth/pkg/domain"
)

func TestDefaultPasswordPolicy(t *testing.T) {
	policy := DefaultPasswordPolicy()

	tests := []struct {
		name     string
		password string
		wantMsg  string
	}{
		{name: "exactly six", password: "secret", wantMsg: ""},
		{name: "longer", password: "secret1", wantMsg: ""},
		{name: "five", password: "abcde", wantMsg: "Password must be at least 6 characters long."},
		{name: "empty", password: "", wantMsg: "Password must be at least 6 characters long."},
		{name: "over bcrypt limit", password: strings.Repeat("x", 73), wantMsg: "Password must be at most 72 bytes long."},
		{name: "at bcrypt limit", password: strings.Repeat("x", 72), wantMsg: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.ValidatePassword(tt.password)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}

			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantMsg, ve.Message)
		})
	}
}

func TestPasswordPolicy_Complexity(t *testing.T) {
	policy := PasswordPolicy{
		MinLength:        8,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireNumber:    true,
		RequireSpecial:   true,
	}

	assert.NoError(t, policy.ValidatePassword("Strong1!x"))
	assert.Error(t, policy.ValidatePassword("strong1!x"), "missing uppercase")
	assert.Error(t, policy.ValidatePassword("STRONG1!X"), "missing lowercase")
	assert.Error(t, policy.ValidatePassword("Strong!!x"), "missing number")
	assert.Error(t, policy.ValidatePassword("Strong12x"), "missing special")
}

func TestNewPasswordPolicy(t *testing.T) {
	policy := NewPasswordPolicy(config.PasswordPolicyConfig{
		MinLength:     10,
		RequireNumber: true,
	})

	assert.Equal(t, 10, policy.MinLength)
	assert.True(t, policy.RequireNumber)
	assert.False(t, policy.RequireSpecial)
	assert.True(t, policy.HasRequirements())
	assert.Equal(t, "Password must contain at least 10 characters, one number", policy.GetRequirements())
}

func TestPasswordPolicy_NoRequirements(t *testing.T) {
	policy := PasswordPolicy{}

	assert.False(t, policy.HasRequirements())
	assert.Equal(t, "No password requirements", policy.GetRequirements())
	assert.NoError(t, policy.ValidatePassword("a"))
}

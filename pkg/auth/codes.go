package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

const (
	otpMin = 100000
	otpMax = 999999

	// resetTokenBytes is the entropy of a reset token before hex encoding.
	resetTokenBytes = 32
)

// GenerateOTP returns a 6-digit code drawn uniformly from [100000, 999999].
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+otpMin), nil
}

// GenerateResetToken returns an opaque hex token.
func GenerateResetToken() (string, error) {
	return GenerateToken(resetTokenBytes)
}

// GenerateToken returns n random bytes, hex encoded.
func GenerateToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashSecret returns the SHA-256 hex digest stored in place of an OTP or
// reset token.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

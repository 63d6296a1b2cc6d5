package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tendant/ayah-auth/pkg/domain"
)

// DefaultTokenTTL is the lifetime of a session token.
const DefaultTokenTTL = 7 * 24 * time.Hour

// TokenConfig holds session token configuration.
type TokenConfig struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// TokenService issues and verifies stateless session tokens.
type TokenService struct {
	config TokenConfig
	now    func() time.Time
}

// Claims represents the claims in a session token.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// UserID parses the subject as a user ID.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// NewTokenService creates a token service. An empty secret is rejected;
// callers treat that as a startup failure.
func NewTokenService(config TokenConfig) (*TokenService, error) {
	if len(config.Secret) == 0 {
		return nil, errors.New("token signing secret is required")
	}
	if config.TTL <= 0 {
		config.TTL = DefaultTokenTTL
	}
	return &TokenService{config: config, now: time.Now}, nil
}

// Issue signs a session token for the user.
func (s *TokenService) Issue(user *domain.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.config.TTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    s.config.Issuer,
			ID:        uuid.NewString(),
		},
		Email: user.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.config.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify validates a session token and returns its claims. Every failure
// maps to domain.ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return s.config.Secret, nil
	}, opts...)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}

// Package auth issues and verifies the signed identity tokens that gate
// websocket admission.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dkeye/Rendezvous/internal/domain"
)

var (
	ErrMissing = errors.New("token missing")
	ErrInvalid = errors.New("token invalid")
	ErrExpired = errors.New("token expired")
)

// DefaultTTL is how long a login token stays valid.
const DefaultTTL = 24 * time.Hour

// Claims carries the identity in "sub" and the expiry in "exp".
type Claims struct {
	jwt.RegisteredClaims
}

// TokenService signs HS256 tokens. It holds no mutable state, so one
// instance is shared by every request.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		now:    time.Now,
	}
}

func (s *TokenService) Issue(id domain.Identity, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(id),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify returns the identity the token asserts. The signature is checked
// before the expiry, so a forged expired token is reported as invalid. A
// token is expired only once now is past its "exp".
func (s *TokenService) Verify(token string) (domain.Identity, error) {
	if token == "" {
		return "", ErrMissing
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if claims.ExpiresAt == nil {
		return "", fmt.Errorf("%w: missing exp", ErrInvalid)
	}
	if s.now().After(claims.ExpiresAt.Time) {
		return "", ErrExpired
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: empty subject", ErrInvalid)
	}
	return domain.Identity(claims.Subject), nil
}

// Package auth reads the principal from tokens issued by the identity
// service. Issuing tokens for real users is not done here.
package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kirinyoku/lodge-go/internal/domain"
)

var ErrInvalidToken = errors.New("invalid token")

type Principal struct {
	UserID uuid.UUID
	Roles  []string
}

func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}

func (p Principal) IsAdmin() bool {
	return p.HasRole(domain.RoleAdmin)
}

type Claims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Parse validates an HS256 token and returns its principal. The subject
// must be a user id.
func (v *Verifier) Parse(token string) (Principal, error) {
	const op = "auth.Verifier.Parse"

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Principal{}, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Principal{}, fmt.Errorf("%s: %w: bad subject", op, ErrInvalidToken)
	}

	return Principal{UserID: id, Roles: claims.Roles}, nil
}

// Sign issues a token for p. It exists for local runs and tests.
func (v *Verifier) Sign(p Principal, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		Roles: p.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kirinyoku/lodge-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignParse(t *testing.T) {
	v := NewVerifier("s3cret")
	p := Principal{UserID: uuid.New(), Roles: []string{domain.RoleAdmin}}

	tok, err := v.Sign(p, time.Now(), time.Hour)
	require.NoError(t, err)

	got, err := v.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, p.UserID, got.UserID)
	assert.True(t, got.IsAdmin())
}

func TestParse_Rejects(t *testing.T) {
	v := NewVerifier("s3cret")
	p := Principal{UserID: uuid.New()}

	expired, err := v.Sign(p, time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)

	foreign, err := NewVerifier("other").Sign(p, time.Now(), time.Hour)
	require.NoError(t, err)

	badSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-uuid",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: p.UserID.String()},
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"expired": expired, "foreign": foreign, "bad subject": badSub, "no expiry": noExp, "garbage": "a.b.c",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := v.Parse(tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestPrincipal_Roles(t *testing.T) {
	p := Principal{Roles: []string{"staff"}}
	assert.True(t, p.HasRole("staff"))
	assert.False(t, p.IsAdmin())
}

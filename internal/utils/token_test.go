package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParseToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	raw, err := SignToken("user-123", "a@b.com", false)
	require.NoError(t, err)

	claims, err := ParseToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.False(t, claims.IsGuest)

	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	assert.Equal(t, UserTokenTTL, ttl)
}

func TestSignToken_GuestTTL(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	raw, err := SignToken("guest-1", "guest@temp.local", true)
	require.NoError(t, err)

	claims, err := ParseToken(raw)
	require.NoError(t, err)
	assert.True(t, claims.IsGuest)
	assert.Equal(t, GuestTokenTTL, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestParseToken_RejectsBadInput(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := ParseToken("not-a-token")
	assert.Error(t, err)

	// Signed with a different secret.
	t.Setenv("JWT_SECRET", "other-secret")
	raw, err := SignToken("user-123", "a@b.com", false)
	require.NoError(t, err)
	t.Setenv("JWT_SECRET", "test-secret")
	_, err = ParseToken(raw)
	assert.Error(t, err)
}

func TestParseToken_RejectsMissingSubject(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Email: "a@b.com",
	})
	raw, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ParseToken(raw)
	assert.Error(t, err)
}

func TestParseToken_RejectsExpired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	past := time.Now().Add(-2 * time.Hour)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
		},
	})
	raw, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ParseToken(raw)
	assert.Error(t, err)
}

package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("s3cret", 42, "COACH", 15*time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), tok.Exp, 5*time.Second)

	claims, err := ParseAccessToken("s3cret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, Claims{UserID: 42, Role: "COACH"}, claims)
}

func TestParseAccessTokenRejects(t *testing.T) {
	good, err := NewAccessToken("s3cret", 1, "OWNER", time.Minute)
	require.NoError(t, err)
	expired, err := NewAccessToken("s3cret", 1, "OWNER", -time.Minute)
	require.NoError(t, err)
	noRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": 1, "exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	tests := []struct {
		name, secret, raw string
	}{
		{"wrong secret", "other", good.Token},
		{"expired", "s3cret", expired.Token},
		{"garbage", "s3cret", "not-a-jwt"},
		{"missing role", "s3cret", noRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAccessToken(tt.secret, tt.raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestRefreshToken(t *testing.T) {
	a, err := NewRefreshToken(24 * time.Hour)
	require.NoError(t, err)
	b, err := NewRefreshToken(24 * time.Hour)
	require.NoError(t, err)

	assert.Len(t, a.Raw, 96)
	assert.NotEqual(t, a.Raw, b.Raw)
	assert.Len(t, HashRefreshRaw(a.Raw), 64)
	assert.Equal(t, HashRefreshRaw(a.Raw), HashRefreshRaw(a.Raw))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "correct horse"))
	assert.False(t, VerifyPassword(hash, "wrong"))

	_, err = HashPassword(string(make([]byte, 80)), bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

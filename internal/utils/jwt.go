package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA-256 hashing for refresh tokens
	"encoding/hex"  // hex encoding of random bytes and digests
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and verifying signed tokens
)

// ErrInvalidToken is returned by ParseAccessToken for any token that is
// malformed, expired, signed with another key or missing claims.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken is a signed JWT and its expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// RefreshToken is a long-lived opaque token. Only HashRefreshRaw(Raw) is
// stored server side.
type RefreshToken struct {
	Raw string    // raw token string returned to the client
	Exp time.Time // UTC expiration time
}

// Claims are the fields the API reads back from an access token.
type Claims struct {
	UserID uint64
	Role   string
}

// NewAccessToken signs an HS256 JWT carrying sub (the user id), role, exp
// and iat.
func NewAccessToken(secret string, userID uint64, role string, ttl time.Duration) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies raw against secret and extracts its claims.
// JSON numbers decode as float64, so sub is converted back to uint64.
func ParseAccessToken(secret, raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// reject anything that is not HMAC signed
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	sub, ok := mc["sub"].(float64)
	if !ok || sub <= 0 {
		return Claims{}, ErrInvalidToken
	}
	role, _ := mc["role"].(string)
	if role == "" {
		return Claims{}, ErrInvalidToken
	}
	return Claims{UserID: uint64(sub), Role: role}, nil
}

// NewRefreshToken returns 48 random bytes as 96 hex chars, valid for ttl.
func NewRefreshToken(ttl time.Duration) (RefreshToken, error) {
	raw, err := randomHex(48)
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{Raw: raw, Exp: time.Now().UTC().Add(ttl)}, nil
}

// HashRefreshRaw returns the hex SHA-256 digest stored for a refresh token.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

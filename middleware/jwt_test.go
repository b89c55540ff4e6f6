package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret-32bytes-padded!!"

func TestParseToken_Valid(t *testing.T) {
	tok, err := GenerateToken(99, "mira", testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(tok, testSecret)
	require.NoError(t, err)
	assert.Equal(t, int64(99), claims.AccountID)
	assert.Equal(t, "mira", claims.Username)
	assert.NotEmpty(t, claims.ID)
}

func TestGenerateToken_EmptySecret(t *testing.T) {
	_, err := GenerateToken(1, "mira", "", time.Hour)
	assert.Error(t, err)
}

func TestGenerateToken_UniquePerLogin(t *testing.T) {
	t1, err := GenerateToken(1, "mira", testSecret, time.Hour)
	require.NoError(t, err)
	t2, err := GenerateToken(1, "mira", testSecret, time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)
}

func TestParseToken_Rejects(t *testing.T) {
	good, err := GenerateToken(1, "mira", testSecret, time.Hour)
	require.NoError(t, err)
	expired, err := GenerateToken(1, "mira", testSecret, -time.Second)
	require.NoError(t, err)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		AccountID:        1,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		AccountID:        1,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noAccount, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	cases := map[string]struct{ token, secret string }{
		"wrong secret": {good, "wrong-secret"},
		"expired":      {expired, testSecret},
		"malformed":    {"not.a.jwt", testSecret},
		"empty":        {"", testSecret},
		"issuer":       {foreign, testSecret},
		"no expiry":    {noExpiry, testSecret},
		"no account":   {noAccount, testSecret},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(tc.token, tc.secret)
			assert.Error(t, err)
		})
	}
}

package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	secret := []byte("test_secret")

	raw, err := SignAccessToken(42, true, secret)
	require.NoError(t, err)

	claims, err := ParseAccessToken(raw, secret)
	require.NoError(t, err)
	require.Equal(t, uint(42), claims.UserID)
	require.True(t, claims.IsAdmin)
}

func TestParseAccessTokenWrongSecret(t *testing.T) {
	raw, err := SignAccessToken(1, false, []byte("secret_a"))
	require.NoError(t, err)

	_, err = ParseAccessToken(raw, []byte("secret_b"))
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessTokenExpired(t *testing.T) {
	secret := []byte("test_secret")
	claims := jwt.MapClaims{
		"sub":   1,
		"admin": false,
		"exp":   time.Now().Add(-time.Minute).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = ParseAccessToken(raw, secret)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessTokenGarbage(t *testing.T) {
	_, err := ParseAccessToken("not-a-token", []byte("test_secret"))
	require.ErrorIs(t, err, ErrInvalidToken)
}

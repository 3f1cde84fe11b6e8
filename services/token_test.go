package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-0123456789"

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := IssueAccessToken(testSecret, "user-1", "STAFF", time.Hour)
	require.NoError(t, err)

	claims, err := ParseAccessToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "STAFF", claims.Role)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "complaint-desk", claims.Issuer)
}

func TestAccessTokenRejected(t *testing.T) {
	t.Run("no secret configured", func(t *testing.T) {
		_, err := IssueAccessToken("", "user-1", "USER", time.Hour)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := IssueAccessToken(testSecret, "user-1", "USER", -time.Minute)
		require.NoError(t, err)
		_, err = ParseAccessToken(testSecret, token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := IssueAccessToken(testSecret, "user-1", "USER", time.Hour)
		require.NoError(t, err)
		_, err = ParseAccessToken("another-secret", token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseAccessToken(testSecret, "not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		claims := &AccessClaims{
			UserID: "user-1",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "someone-else",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = ParseAccessToken(testSecret, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		claims := &AccessClaims{
			UserID:           "user-1",
			RegisteredClaims: jwt.RegisteredClaims{Issuer: "complaint-desk"},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = ParseAccessToken(testSecret, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

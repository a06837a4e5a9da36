package services

import (
	"testing"
	"time"

	"choretracker/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTokens = TokenConfig{Secret: []byte("test-secret"), TTL: time.Hour}

func TestAccessTokenRoundTrip(t *testing.T) {
	user := &model.User{ID: "u-1", Username: "anna", IsAdmin: true}

	resp, err := NewTokenResponse(testTokens, user)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.EqualValues(t, 3600, resp.ExpiresIn)

	claims, err := ParseAccessToken(testTokens, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, model.Caller{UserID: "u-1", Username: "anna", IsAdmin: true}, claims.Caller())
}

func TestParseAccessTokenRejects(t *testing.T) {
	user := &model.User{ID: "u-1", Username: "anna"}

	expired, err := CreateAccessToken(TokenConfig{Secret: testTokens.Secret, TTL: -time.Minute}, user)
	require.NoError(t, err)

	otherSecret, err := CreateAccessToken(TokenConfig{Secret: []byte("other"), TTL: time.Hour}, user)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &model.AccessClaims{
		UserID: "u-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	foreignIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &model.AccessClaims{
		UserID: "u-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(testTokens.Secret)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &model.AccessClaims{
		UserID:           "u-1",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer},
	}).SignedString(testTokens.Secret)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"expired", expired, ErrTokenExpired},
		{"wrong secret", otherSecret, ErrInvalidToken},
		{"alg none", none, ErrInvalidToken},
		{"foreign issuer", foreignIssuer, ErrInvalidToken},
		{"no expiry", noExpiry, ErrInvalidToken},
		{"garbage", "not.a.token", ErrInvalidToken},
		{"empty", "", ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAccessToken(testTokens, tt.token)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}

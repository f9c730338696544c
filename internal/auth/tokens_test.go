package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens_RoundTrip(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)

	signed, err := tokens.Issue(42)
	require.NoError(t, err)

	userID, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestTokens_UniqueIDs(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)

	a, err := tokens.Issue(1)
	require.NoError(t, err)
	b, err := tokens.Issue(1)
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "each token carries its own jti")
}

func TestTokens_Expired(t *testing.T) {
	tokens := NewTokens("secret", time.Minute)
	issuedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issuedAt }

	signed, err := tokens.Issue(7)
	require.NoError(t, err)

	tokens.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	_, err = tokens.Parse(signed)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_WrongSecret(t *testing.T) {
	signed, err := NewTokens("secret", time.Hour).Issue(7)
	require.NoError(t, err)

	_, err = NewTokens("other", time.Hour).Parse(signed)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokens("secret", time.Hour).Parse(signed)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_Garbage(t *testing.T) {
	_, err := NewTokens("secret", time.Hour).Parse("not-a-token")

	assert.ErrorIs(t, err, ErrInvalidToken)
}

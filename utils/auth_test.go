package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("secret")

	token, err := tm.GenerateJWT("ada@example.com", RoleAdmin)
	require.NoError(t, err)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", claims.Email)
	require.Equal(t, RoleAdmin, claims.Role)
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	token, err := NewTokenManager("other").GenerateJWT("ada@example.com", RoleUser)
	require.NoError(t, err)

	_, err = NewTokenManager("secret").ParseToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	tm := NewTokenManager("secret")
	tm.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }

	token, err := tm.GenerateJWT("ada@example.com", RoleUser)
	require.NoError(t, err)

	_, err = NewTokenManager("secret").ParseToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	_, err := NewTokenManager("secret").ParseToken("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

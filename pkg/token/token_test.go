package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateValidateRoundTrip(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	tok, err := svc.Generate("u-1", "p@example.com", "PASSENGER")
	require.NoError(t, err)

	claims, err := svc.Validate(tok)
	require.NoError(t, err)
	require.Equal(t, "u-1", claims.UserID)
	require.Equal(t, "p@example.com", claims.Email)
	require.Equal(t, "PASSENGER", claims.Role)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	tok, err := NewService("secret-a", time.Hour).Generate("u-1", "p@example.com", "DRIVER")
	require.NoError(t, err)

	_, err = NewService("secret-b", time.Hour).Validate(tok)
	require.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	tok, err := NewService("secret", -time.Minute).Generate("u-1", "p@example.com", "DRIVER")
	require.NoError(t, err)

	_, err = NewService("secret", -time.Minute).Validate(tok)
	require.Error(t, err)
}

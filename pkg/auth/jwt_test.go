package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	svc, err := NewJWTService("secret", "health-api", time.Hour)
	require.NoError(t, err)

	token, expiresAt, err := svc.GenerateAccessToken("owner")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "owner", claims.Subject)
	assert.NotEmpty(t, claims.TokenID)
}

func TestJWTRejectsForeignSecret(t *testing.T) {
	issuer, err := NewJWTService("secret-a", "health-api", time.Hour)
	require.NoError(t, err)
	verifier, err := NewJWTService("secret-b", "health-api", time.Hour)
	require.NoError(t, err)

	token, _, err := issuer.GenerateAccessToken("owner")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWTExpired(t *testing.T) {
	svc, err := NewJWTService("secret", "health-api", time.Minute)
	require.NoError(t, err)
	svc.(*jwtService).now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := svc.GenerateAccessToken("owner")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTRequiresSecret(t *testing.T) {
	_, err := NewJWTService("", "health-api", time.Hour)
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestJWTGarbage(t *testing.T) {
	svc, err := NewJWTService("secret", "health-api", time.Hour)
	require.NoError(t, err)

	_, err = svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

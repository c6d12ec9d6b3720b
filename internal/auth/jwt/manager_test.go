package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesias/mswdo-backend/pkg/config"
	"github.com/mesias/mswdo-backend/pkg/errors"
)

func newManager() *Manager {
	return NewManager(&config.JWTConfig{Secret: "test-secret", Expiry: 7 * 24 * time.Hour, Issuer: "mswdo"})
}

func TestManager_RoundTrip(t *testing.T) {
	m := newManager()

	tok, err := m.Generate("user-1", "bhw")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), tok.ExpiresAt, time.Minute)

	claims, err := m.Validate(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "bhw", claims.UserType)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestManager_Expired(t *testing.T) {
	m := newManager()
	tok, err := m.Generate("user-1", "beneficiary")
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
	_, err = m.Validate(tok.AccessToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTokenExpired))
}

func TestManager_Invalid(t *testing.T) {
	m := newManager()

	other := NewManager(&config.JWTConfig{Secret: "other-secret", Expiry: time.Hour})
	foreign, err := other.Generate("user-1", "admin")
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "user-1", UserType: "admin"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"garbage":        "not-a-token",
		"wrong secret":   foreign.AccessToken,
		"unsigned token": unsigned,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.Validate(tok)
			assert.True(t, errors.Is(err, errors.ErrTokenInvalid))
		})
	}
}

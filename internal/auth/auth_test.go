package auth

import (
	"testing"
	"time"

	"parenting-server/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager(t *testing.T) {
	m, err := NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	sessionID := uuid.New()

	t.Run("Issue and verify", func(t *testing.T) {
		token, expiresAt, err := m.Issue(sessionID)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

		got, err := m.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, sessionID, got)
		assert.NoError(t, m.VerifyFor(token, sessionID))
	})

	t.Run("Other session", func(t *testing.T) {
		token, _, err := m.Issue(sessionID)
		require.NoError(t, err)
		assert.ErrorIs(t, m.VerifyFor(token, uuid.New()), domain.ErrSessionMismatch)
	})

	t.Run("Expired token", func(t *testing.T) {
		expired := &TokenManager{secret: m.secret, ttl: time.Minute, now: func() time.Time { return time.Now().Add(-2 * time.Hour) }}
		token, _, err := expired.Issue(sessionID)
		require.NoError(t, err)

		_, err = m.Verify(token)
		assert.ErrorIs(t, err, domain.ErrTokenExpired)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		other, err := NewTokenManager("another-secret", time.Hour)
		require.NoError(t, err)
		token, _, err := other.Issue(sessionID)
		require.NoError(t, err)

		_, err = m.Verify(token)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("Unsigned token", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, &SessionClaims{SessionID: sessionID.String()}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = m.Verify(token)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("Empty token", func(t *testing.T) {
		_, err := m.Verify("")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("Empty secret", func(t *testing.T) {
		_, err := NewTokenManager("", time.Hour)
		assert.Error(t, err)
	})
}

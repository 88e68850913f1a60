package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/moneyhive-bank/internal/models"
)

func TestTokenManager_GenerateParse(t *testing.T) {
	tm := NewTokenManager("secret", "moneyhive-bank", time.Hour)

	token, err := tm.Generate(models.User{ID: "42", Username: "alice"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "moneyhive-bank", claims.Issuer)
}

func TestTokenManager_Rejects(t *testing.T) {
	tm := NewTokenManager("secret", "moneyhive-bank", time.Hour)
	token, err := tm.Generate(models.User{ID: "1", Username: "alice"})
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenManager("other", "moneyhive-bank", time.Hour)
		_, err := other.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewTokenManager("secret", "someone-else", time.Hour)
		_, err := other.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewTokenManager("secret", "moneyhive-bank", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tm.Parse("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

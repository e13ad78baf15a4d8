package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", "shop-service", time.Hour)

	token, tokenID, expiresAt, err := m.Issue(42, "admin")
	require.NoError(t, err)
	assert.NotEmpty(t, tokenID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	p, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.UserID)
	assert.Equal(t, "admin", p.Role)
	assert.Equal(t, tokenID, p.TokenID)
	assert.True(t, p.IsAdmin())
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	token, _, _, err := NewTokenManager("secret", "shop-service", time.Hour).Issue(1, "user")
	require.NoError(t, err)

	_, err = NewTokenManager("other", "shop-service", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpired(t *testing.T) {
	m := NewTokenManager("secret", "shop-service", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, _, err := m.Issue(1, "user")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenGarbage(t *testing.T) {
	_, err := NewTokenManager("secret", "shop-service", time.Hour).Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	ok, err := h.Verify(hash, "s3cret-pass")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHasherCostFallback(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(99).cost)
}

func TestActivationCodec(t *testing.T) {
	c := NewActivationCodec("activation-secret")

	token, err := c.Seal("jane@example.com")
	require.NoError(t, err)
	assert.NotContains(t, token, "jane")

	email, err := c.Open(token)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", email)

	other, err := c.Seal("jane@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestActivationCodecRejectsTampering(t *testing.T) {
	c := NewActivationCodec("activation-secret")
	token, err := c.Seal("jane@example.com")
	require.NoError(t, err)

	_, err = NewActivationCodec("different").Open(token)
	assert.ErrorIs(t, err, ErrInvalidActivationToken)

	_, err = c.Open("!!!")
	assert.ErrorIs(t, err, ErrInvalidActivationToken)

	_, err = c.Open("c2hvcnQ")
	assert.ErrorIs(t, err, ErrInvalidActivationToken)
}

package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-32-chars-long!!"

func TestJWT_RoundTrip(t *testing.T) {
	t.Parallel()

	m := NewJWTManager(testSecret, "ihsan", time.Minute)
	userID := uuid.New()

	token, err := m.GenerateAccessToken(userID, "reviewer")
	require.NoError(t, err)

	gotID, gotRole, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, "reviewer", gotRole)
}

func TestJWT_RejectsExpired(t *testing.T) {
	t.Parallel()

	m := NewJWTManager(testSecret, "ihsan", -time.Minute)
	token, err := m.GenerateAccessToken(uuid.New(), "admin")
	require.NoError(t, err)

	_, _, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWT_RejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	issue := NewJWTManager(testSecret, "someone-else", time.Minute)
	verify := NewJWTManager(testSecret, "ihsan", time.Minute)

	token, err := issue.GenerateAccessToken(uuid.New(), "admin")
	require.NoError(t, err)

	_, _, err = verify.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWT_RejectsTampered(t *testing.T) {
	t.Parallel()

	m := NewJWTManager(testSecret, "ihsan", time.Minute)
	other := NewJWTManager("another-secret-that-is-32-chars!!!!", "ihsan", time.Minute)

	token, err := other.GenerateAccessToken(uuid.New(), "admin")
	require.NoError(t, err)

	_, _, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestRefreshToken_HashStability(t *testing.T) {
	t.Parallel()

	m := NewJWTManager(testSecret, "ihsan", time.Minute)
	raw, hash, err := m.GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.Equal(t, hash, HashToken(raw))

	raw2, hash2, err := m.GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, raw2)
	assert.NotEqual(t, hash, hash2)
}

func TestHasher(t *testing.T) {
	t.Parallel()

	h := NewHasher(4) // minimum cost keeps the test fast
	hash, err := h.Hash("s3cret")
	require.NoError(t, err)

	assert.True(t, h.Compare(hash, "s3cret"))
	assert.False(t, h.Compare(hash, "wrong"))
}

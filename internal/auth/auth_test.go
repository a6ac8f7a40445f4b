package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc, err := NewService("test-secret")
	require.NoError(t, err)

	id := uuid.New()
	tok, err := svc.IssueToken(id, "Alice", false)
	require.NoError(t, err)

	gotID, name, err := svc.VerifyToken(tok)
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Equal(t, "Alice", name)
}

func TestGuestToken(t *testing.T) {
	svc, err := NewService("test-secret")
	require.NoError(t, err)

	id, tok, err := svc.IssueGuestToken("Guest")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	gotID, name, err := svc.VerifyToken(tok)
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Equal(t, "Guest", name)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	svc, err := NewService("test-secret")
	require.NoError(t, err)

	_, _, err = svc.VerifyToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// A token signed with a different secret fails verification.
	other, err := NewService("other-secret")
	require.NoError(t, err)
	tok, err := other.IssueToken(uuid.New(), "Mallory", false)
	require.NoError(t, err)
	_, _, err = svc.VerifyToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestEmptySecretRejected(t *testing.T) {
	_, err := NewService("")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.NoError(t, CheckPassword(hash, "hunter2"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong"), ErrBadCredentials)
}

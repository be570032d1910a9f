package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", 1)
	userID := uuid.New()
	ownerID := uuid.New()

	token, err := svc.Generate(userID, ownerID, "a@b.com", "alice", "admin", "Alice A")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, ownerID, claims.OwnerID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "Alice A", claims.FullName)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewJWTService("test-secret", -1)
	token, err := svc.Generate(uuid.New(), uuid.New(), "a@b.com", "alice", "admin", "Alice A")
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-one", 1).
		Generate(uuid.New(), uuid.New(), "a@b.com", "alice", "admin", "Alice A")
	require.NoError(t, err)

	_, err = NewJWTService("secret-two", 1).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewJWTService("test-secret", 1)
	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.Validate(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tok)
	}
}

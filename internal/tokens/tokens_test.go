package tokens

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccessToken_RoundTrip(t *testing.T) {
	t.Parallel()

	secret := []byte("test-jwt-secret")
	userID := uuid.NewString()
	exp := time.Now().Add(time.Hour).UTC()

	token, err := NewAccessToken(userID, "admin", exp, secret)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := AccessClaimsFromToken(token, secret)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestAccessClaimsFromToken_RejectsWrongSecret(t *testing.T) {
	t.Parallel()

	token, err := NewAccessToken(uuid.NewString(), "customer", time.Now().Add(time.Hour), []byte("right"))
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(token, []byte("wrong"))
	assert.Error(t, err)
}

func TestAccessClaimsFromToken_RejectsExpired(t *testing.T) {
	t.Parallel()

	token, err := NewAccessToken(uuid.NewString(), "customer", time.Now().Add(-time.Minute), []byte("secret"))
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(token, []byte("secret"))
	assert.Error(t, err)
}

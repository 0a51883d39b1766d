package auth

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	mgr := NewJWTManager("access-secret-32-chars-long!!!!!", "refresh-secret-32-chars-long!!!!", 15*time.Minute, 7*24*time.Hour)
	return NewService(mgr, client)
}

func TestService_RefreshRotation(t *testing.T) {
	svc := setupService(t)

	pair, err := svc.GenerateTokens("user-123", "test@example.com")
	require.NoError(t, err)

	newPair, err := svc.RefreshTokens(pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, newPair.RefreshToken)

	// Rotated access token keeps the original identity.
	claims, err := svc.ValidateAccessToken(newPair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "test@example.com", claims.Email)

	// The old refresh token is revoked after rotation.
	_, err = svc.RefreshTokens(pair.RefreshToken)
	assert.Error(t, err)
}

func TestService_LogoutRevokesAllTokens(t *testing.T) {
	svc := setupService(t)

	pair1, err := svc.GenerateTokens("user-123", "test@example.com")
	require.NoError(t, err)
	pair2, err := svc.GenerateTokens("user-123", "test@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.Logout("user-123"))

	_, err = svc.RefreshTokens(pair1.RefreshToken)
	assert.Error(t, err)
	_, err = svc.RefreshTokens(pair2.RefreshToken)
	assert.Error(t, err)
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/domain"
)

func testUser() *domain.User {
	return &domain.User{
		ID:       "11111111-1111-1111-1111-111111111111",
		Username: "scout_1",
		Role:     domain.RoleModerator,
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, exp, err := tm.GenerateToken(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "11111111-1111-1111-1111-111111111111", claims.UserID)
	require.Equal(t, "scout_1", claims.Username)
	require.Equal(t, domain.RoleModerator, claims.Role)
}

func TestParseTokenExpired(t *testing.T) {
	// NewTokenManager clamps non-positive TTLs, so build the expired issuer directly.
	tm := &TokenManager{secret: []byte("test-secret"), ttl: -time.Minute}

	token, _, err := tm.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = tm.ParseToken(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseTokenWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Hour)
	verifier := NewTokenManager("secret-b", time.Hour)

	token, _, err := issuer.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrTokenExpired)
}

func TestParseTokenGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	_, err := tm.ParseToken("not.a.jwt")
	require.Error(t, err)
}

func TestDefaultTTL(t *testing.T) {
	tm := NewTokenManager("test-secret", 0)
	_, exp, err := tm.GenerateToken(testUser())
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(168*time.Hour), exp, 5*time.Second)
}

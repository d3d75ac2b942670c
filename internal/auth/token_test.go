package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/assignment-service/internal/domain"
)

func TestTokenManagerIssueAndParse(t *testing.T) {
	tm := NewTokenManager("secret", 30*time.Minute)

	issued, err := tm.Issue("alice", domain.RoleStudent)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.Raw)
	assert.NotEmpty(t, issued.ID)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), issued.ExpiresAt, 2*time.Second)

	claims, err := tm.Parse(issued.Raw)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "Student", claims.Role)
	assert.Equal(t, issued.ID, claims.ID)
}

func TestTokenManagerUniqueIDs(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		issued, err := tm.Issue("alice", domain.RoleStudent)
		require.NoError(t, err)
		_, dup := seen[issued.ID]
		require.False(t, dup)
		seen[issued.ID] = struct{}{}
	}
}

func TestTokenManagerMissingSecret(t *testing.T) {
	tm := NewTokenManager("", time.Minute)
	_, err := tm.Issue("alice", domain.RoleFaculty)
	assert.ErrorIs(t, err, ErrSigningKey)
}

func TestTokenManagerRejectsInvalidTokens(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	other := NewTokenManager("other-secret", time.Minute)

	foreign, err := other.Issue("mallory", domain.RoleFaculty)
	require.NoError(t, err)

	expired := NewTokenManager("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := expired.Issue("alice", domain.RoleStudent)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		Role: "Faculty",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "x",
			Subject:   "mallory",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign.Raw,
		"expired":      stale.Raw,
		"alg none":     noneToken,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tm.Parse(raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueParseRoundTrip(t *testing.T) {
	pair, err := Issue("admin@example.com", RoleAdmin, "attendance-register", "secret", time.Minute, time.Hour)
	require.NoError(t, err)

	claims, err := Parse(pair.AccessToken, "secret", "attendance-register")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	pair, err := Issue("admin@example.com", RoleAdmin, "someone-else", "secret", time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = Parse(pair.AccessToken, "secret", "attendance-register")
	assert.Error(t, err)
}

func TestParseRejectsWrongKey(t *testing.T) {
	pair, err := Issue("admin@example.com", RoleAdmin, "attendance-register", "secret", time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = Parse(pair.AccessToken, "other-secret", "attendance-register")
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	pair, err := Issue("admin@example.com", RoleAdmin, "attendance-register", "secret", -time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = Parse(pair.AccessToken, "secret", "attendance-register")
	assert.Error(t, err)
}

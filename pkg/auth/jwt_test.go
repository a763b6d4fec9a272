package auth_test

import (
	"testing"

	"github.com/gmcandra/mebelshop/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	token, err := auth.GenerateToken(7, auth.RoleAdmin, "Candra", "candra@gmcandramebel.id")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
	assert.Equal(t, "Candra", claims.Name)
	assert.Equal(t, "candra@gmcandramebel.id", claims.Email)
}

func TestValidateRejectsTampered(t *testing.T) {
	token, err := auth.GenerateToken(7, auth.RoleUser, "Budi", "budi@example.com")
	require.NoError(t, err)

	_, err = auth.ValidateToken(token + "x")
	assert.Error(t, err)
}

func TestDecodeClaimsIgnoresSignature(t *testing.T) {
	token, err := auth.GenerateToken(3, auth.RoleUser, "Sari", "sari@example.com")
	require.NoError(t, err)

	// Break the signature segment; a structural decode still succeeds.
	claims, err := auth.DecodeClaims(token + "broken")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleUser, claims.Role)
	assert.Equal(t, "Sari", claims.Name)
}

func TestDecodeClaimsFailsClosed(t *testing.T) {
	for _, bad := range []string{"", "garbage", "a.b", "not.a.jwt"} {
		_, err := auth.DecodeClaims(bad)
		assert.ErrorIs(t, err, auth.ErrInvalidToken, "token %q", bad)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("rahasia123")
	require.NoError(t, err)

	assert.True(t, auth.CheckPassword(hash, "rahasia123"))
	assert.False(t, auth.CheckPassword(hash, "salah"))
}

package stores_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmcandra/mebelshop/app/stores"
	"github.com/gmcandra/mebelshop/pkg/auth"
	"github.com/gmcandra/mebelshop/pkg/kv"
)

const sessionKey = "auth:token"

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := auth.GenerateToken(7, auth.RoleAdmin, "Candra Wijaya", "candra@gmcandramebel.id")
	require.NoError(t, err)
	return token
}

func TestLoginWithValidToken(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	s := stores.NewSession(store, sessionKey)

	token := adminToken(t)
	require.NoError(t, s.Login(ctx, token))

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, auth.RoleAdmin, s.Role())
	assert.True(t, s.IsAdmin())
	assert.Equal(t, uint(7), s.UserID())

	id := s.Identity()
	require.NotNil(t, id)
	assert.Equal(t, "Candra Wijaya", id.Name)
	assert.Equal(t, "candra@gmcandramebel.id", id.Email)

	// Storage holds exactly the token that was logged in with.
	raw, err := store.Get(ctx, sessionKey)
	require.NoError(t, err)
	assert.Equal(t, token, string(raw))
}

func TestLoginWithMalformedTokenFailsClosed(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	s := stores.NewSession(store, sessionKey)

	for _, bad := range []string{"", "garbage", "a.b", "not.a.jwt"} {
		err := s.Login(ctx, bad)
		assert.ErrorIs(t, err, auth.ErrInvalidToken, "token %q", bad)

		assert.False(t, s.IsAuthenticated())
		assert.Empty(t, s.Role())
		assert.Nil(t, s.Identity())

		_, err = store.Get(ctx, sessionKey)
		assert.ErrorIs(t, err, kv.ErrNotFound, "bad token must not be persisted")
	}
}

func TestFailedLoginReplacesPriorSession(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	s := stores.NewSession(store, sessionKey)

	require.NoError(t, s.Login(ctx, adminToken(t)))
	require.Error(t, s.Login(ctx, "broken"))

	assert.False(t, s.IsAuthenticated())
	_, err := store.Get(ctx, sessionKey)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestLogoutClearsEverything(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	s := stores.NewSession(store, sessionKey)

	require.NoError(t, s.Login(ctx, adminToken(t)))
	s.Logout(ctx)

	assert.Empty(t, s.Token())
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Role())
	assert.Nil(t, s.Identity())

	_, err := store.Get(ctx, sessionKey)
	assert.ErrorIs(t, err, kv.ErrNotFound)

	// Logging out twice is fine.
	s.Logout(ctx)
	assert.False(t, s.IsAuthenticated())
}

func TestLoadRestoresPersistedSession(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()

	token := adminToken(t)
	require.NoError(t, stores.NewSession(store, sessionKey).Login(ctx, token))

	restored := stores.NewSession(store, sessionKey)
	restored.Load(ctx)

	assert.True(t, restored.IsAuthenticated())
	assert.Equal(t, token, restored.Token())
	assert.Equal(t, auth.RoleAdmin, restored.Role())
}

func TestLoadWithoutTokenIsLoggedOut(t *testing.T) {
	s := stores.NewSession(kv.NewMemory(), sessionKey)
	s.Load(context.Background())
	assert.False(t, s.IsAuthenticated())
}

func TestLoadRemovesUndecodableToken(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, sessionKey, []byte("stale-garbage")))

	s := stores.NewSession(store, sessionKey)
	s.Load(ctx)

	assert.False(t, s.IsAuthenticated())
	_, err := store.Get(ctx, sessionKey)
	assert.ErrorIs(t, err, kv.ErrNotFound, "stale token should be cleared on load")
}

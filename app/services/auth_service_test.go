package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmcandra/mebelshop/app/repositories"
	"github.com/gmcandra/mebelshop/app/services"
	"github.com/gmcandra/mebelshop/pkg/auth"
	"github.com/gmcandra/mebelshop/pkg/kv"
)

func newAuthService(t *testing.T) (*services.AuthService, kv.Store) {
	t.Helper()
	db := testDB(t)
	store := kv.NewMemory()
	return services.NewAuthService(repositories.NewUserRepository(db), store), store
}

func TestRegisterAndLogin(t *testing.T) {
	svc, store := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register("Budi Santoso", "budi@example.com", "rahasia-123", "", "")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleUser, user.Role)
	assert.NotEqual(t, "rahasia-123", user.Password, "password must be stored hashed")

	token, logged, err := svc.Login(ctx, "budi@example.com", "rahasia-123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	claims, err := auth.DecodeClaims(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	// Login opens the server-side session.
	session := svc.Session(ctx, user.ID)
	assert.True(t, session.IsAuthenticated())
	assert.Equal(t, token, session.Token())

	_, err = store.Get(ctx, fmt.Sprintf("session:%d", user.ID))
	assert.NoError(t, err, "session token persisted under the user's key")
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register("Budi Santoso", "budi@example.com", "rahasia-123", "", "")
	require.NoError(t, err)

	_, err = svc.Register("Budi Kedua", "budi@example.com", "rahasia-456", "", "")
	assert.ErrorIs(t, err, services.ErrEmailTaken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Login(ctx, "tidak-ada@example.com", "apapun")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = svc.Register("Budi Santoso", "budi@example.com", "rahasia-123", "", "")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "budi@example.com", "salah")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestLogoutClearsSession(t *testing.T) {
	svc, store := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register("Budi Santoso", "budi@example.com", "rahasia-123", "", "")
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, "budi@example.com", "rahasia-123")
	require.NoError(t, err)

	svc.Logout(ctx, user.ID)

	session := svc.Session(ctx, user.ID)
	assert.False(t, session.IsAuthenticated())
	_, err = store.Get(ctx, fmt.Sprintf("session:%d", user.ID))
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestUpdateRoleClosesOpenSession(t *testing.T) {
	svc, store := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register("Budi Santoso", "budi@example.com", "rahasia-123", "", "")
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, "budi@example.com", "rahasia-123")
	require.NoError(t, err)

	updated, err := svc.UpdateRole(ctx, user.ID, auth.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, updated.Role)

	fresh, err := svc.Profile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, fresh.Role)

	// The old session's token still carries USER; it must be gone.
	_, err = store.Get(ctx, fmt.Sprintf("session:%d", user.ID))
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestDeleteUserRemovesAccountAndSession(t *testing.T) {
	svc, store := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register("Budi Santoso", "budi@example.com", "rahasia-123", "", "")
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, "budi@example.com", "rahasia-123")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, user.ID))

	_, err = svc.Profile(user.ID)
	assert.Error(t, err)
	_, err = store.Get(ctx, fmt.Sprintf("session:%d", user.ID))
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

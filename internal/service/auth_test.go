package service

import (
	"context"
	"testing"

	"github.com/LuanAssis01/sgi-maraba/internal/model"
	"github.com/LuanAssis01/sgi-maraba/internal/store"
	"github.com/LuanAssis01/sgi-maraba/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthService(t *testing.T) (*AuthService, *store.Store) {
	t.Helper()
	st := store.New(storage.NewMemoryBlobs(), nil, zap.NewNop())
	require.NoError(t, st.Load(context.Background()))
	return NewAuthService(st, zap.NewNop()), st
}

func TestAuthService_Authenticate(t *testing.T) {
	svc, _ := newAuthService(t)

	u := svc.Authenticate("maria@email.com", "123456", model.RoleCitizen)
	require.NotNil(t, u)
	assert.Equal(t, "Maria Silva", u.Name)

	assert.Nil(t, svc.Authenticate("maria@email.com", "wrong", model.RoleCitizen))
	assert.Nil(t, svc.Authenticate("maria@email.com", "123456", model.RoleAdmin))
	assert.Nil(t, svc.Authenticate("nobody@email.com", "123456", model.RoleCitizen))
}

func TestAuthService_Register(t *testing.T) {
	svc, st := newAuthService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "Ana", "ana@email.com", "(94) 1", "secret", model.RoleCitizen)
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Len(t, st.Users(), 3)
	assert.NotNil(t, svc.Authenticate("ana@email.com", "secret", model.RoleCitizen))

	_, err = svc.Register(ctx, "Ana 2", "ANA@email.com", "", "x", model.RoleCitizen)
	assert.ErrorIs(t, err, model.ErrDuplicateEmail)
	assert.Len(t, st.Users(), 3)

	_, err = svc.Register(ctx, "Bob", "bob@email.com", "", "x", model.Role("root"))
	assert.Error(t, err)
}

func TestAuthService_LoginLogout(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "admin@maraba.pa.gov.br", "nope", model.RoleAdmin)
	assert.ErrorIs(t, err, model.ErrNotAuthorized)
	_, view := svc.Session()
	assert.Equal(t, model.ViewLogin, view)

	u, err := svc.Login(ctx, "admin@maraba.pa.gov.br", "admin123", model.RoleAdmin)
	require.NoError(t, err)
	user, view := svc.Session()
	assert.Equal(t, model.ViewAdmin, view)
	assert.Equal(t, u.ID, user.ID)

	svc.Logout(ctx)
	user, view = svc.Session()
	assert.Equal(t, model.ViewLogin, view)
	assert.Equal(t, model.Anonymous(), user)
}

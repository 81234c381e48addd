package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgo/chariott/internal/model"
	"github.com/tgo/chariott/internal/pkg/jwt"
	"github.com/tgo/chariott/internal/pkg/redis"
	"github.com/tgo/chariott/internal/repository"
)

func newUserService(t *testing.T) (*UserService, *repository.UserRepository, *jwt.Manager) {
	t.Helper()
	users := repository.NewUserRepository(newDB(t))
	manager := jwt.NewManager("test-secret", 30)
	return NewUserService(users, NewDBCounter(users), manager, 30), users, manager
}

func register(t *testing.T, svc *UserService, email string, userType model.UserType, staff model.StaffType) *model.User {
	t.Helper()
	user, err := svc.Register(context.Background(), &RegisterRequest{
		Email: email, Password: "correct-horse", FirstName: "Ada", UserType: userType, StaffType: staff,
	})
	require.NoError(t, err)
	return user
}

func TestUserService_RegisterValidation(t *testing.T) {
	svc, _, _ := newUserService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"bad email", RegisterRequest{Email: "nope", Password: "correct-horse", UserType: model.UserTypeNormal}},
		{"short password", RegisterRequest{Email: "a@example.com", Password: "short", UserType: model.UserTypeNormal}},
		{"staff without staff type", RegisterRequest{Email: "a@example.com", Password: "correct-horse", UserType: model.UserTypeStaff}},
		{"staff with unknown staff type", RegisterRequest{Email: "a@example.com", Password: "correct-horse", UserType: model.UserTypeStaff, StaffType: "chef"}},
		{"normal with staff type", RegisterRequest{Email: "a@example.com", Password: "correct-horse", UserType: model.UserTypeNormal, StaffType: model.StaffTypeManager}},
		{"unknown user type", RegisterRequest{Email: "a@example.com", Password: "correct-horse", UserType: "admin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, &tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	svc, _, manager := newUserService(t)
	ctx := context.Background()

	user := register(t, svc, "Guest@Example.com", model.UserTypeNormal, "")
	assert.Equal(t, "guest@example.com", user.Email)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	_, err := svc.Register(ctx, &RegisterRequest{Email: "guest@example.com", Password: "correct-horse", UserType: model.UserTypeNormal})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Login(ctx, &LoginRequest{Email: "guest@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	resp, err := svc.Login(ctx, &LoginRequest{Email: "guest@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 1800, resp.ExpiresIn)
	assert.EqualValues(t, 1, resp.User.InteractionCounter)

	claims, err := manager.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "normal", claims.UserType)
}

func TestUserService_ListsAndPreferences(t *testing.T) {
	svc, _, _ := newUserService(t)
	ctx := context.Background()

	guest := register(t, svc, "guest@example.com", model.UserTypeNormal, "")
	register(t, svc, "desk@example.com", model.UserTypeStaff, model.StaffTypeReception)

	staff, err := svc.ListByType(ctx, model.UserTypeStaff)
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Equal(t, model.StaffTypeReception, staff[0].StaffType)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	prefs, err := svc.GetPreferences(ctx, guest.ID)
	require.NoError(t, err)
	assert.Empty(t, prefs)

	_, err = svc.UpdatePreferences(ctx, guest.ID, model.JSONMap{"room": "quiet", "floor": float64(3)})
	require.NoError(t, err)

	prefs, err = svc.GetPreferences(ctx, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, "quiet", prefs["room"])
	assert.Equal(t, float64(3), prefs["floor"])

	n, err := svc.Interactions(ctx, guest.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	_, err = svc.UpdatePreferences(ctx, "missing", model.JSONMap{})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Delete(ctx, guest.ID))
	assert.ErrorIs(t, svc.Delete(ctx, guest.ID), ErrNotFound)
	_, err = svc.Get(ctx, guest.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisCounter_SeedsFromDatabase(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client, err := redis.NewClient("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	users := repository.NewUserRepository(newDB(t))
	user := &model.User{Email: "guest@example.com", PasswordHash: "x", UserType: model.UserTypeNormal}
	require.NoError(t, users.Create(ctx, user))
	require.NoError(t, users.SetCounter(ctx, user.ID, 41))

	counter := NewRedisCounter(client, users)
	n, err := counter.Increment(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 42, n)

	n, err = counter.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 42, n)

	stored, err := users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 42, stored.InteractionCounter)

	_, err = counter.Increment(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

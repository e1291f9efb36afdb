package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vnkhanh/bkhome-server/models"
	"github.com/vnkhanh/bkhome-server/storage"
	"github.com/vnkhanh/bkhome-server/utils"
)

func TestCreateUserHashesPassword(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.users.Create(context.Background(), CreateUserInput{Username: " alice ", Password: "secret"})

	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Empty(t, user.Password)

	var stored models.User
	require.NoError(t, env.db.First(&stored, user.ID).Error)
	assert.NotEqual(t, "secret", stored.Password)
	assert.True(t, utils.PasswordMatches(stored.Password, "secret"))
}

func TestCreateUserConflict(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "alice", models.RoleUser)

	_, err := env.users.Create(context.Background(), CreateUserInput{Username: "alice", Password: "x"})

	assert.ErrorIs(t, err, ErrConflict)
	assert.EqualValues(t, 1, env.rowCount(t, &models.User{}))
}

func TestCreateUserValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.Create(ctx, CreateUserInput{Username: "", Password: "x"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.users.Create(ctx, CreateUserInput{Username: "bob", Password: ""})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.users.Create(ctx, CreateUserInput{Username: "bob", Password: "x", Role: "ROOT"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFindUser(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice", models.RoleOwner)
	ctx := context.Background()

	byID, err := env.users.FindOneByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
	assert.Empty(t, byID.Password)

	byName, err := env.users.FindOneByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)

	_, err = env.users.FindOneByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindAllUsersSearch(t *testing.T) {
	env := newTestEnv(t)
	for _, name := range []string{"alice", "alicia", "bob"} {
		env.user(t, name, models.RoleUser)
	}

	page, err := env.users.FindAll(context.Background(), Query{Search: "ALI"})

	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Pagination.Total)
	for _, u := range page.Items {
		assert.Contains(t, u.Username, "ali")
		assert.Empty(t, u.Password)
	}
}

func TestChangeAvatar(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice", models.RoleUser)
	ctx := context.Background()

	first, err := env.users.ChangeAvatar(ctx, alice.ID, storage.File{Name: "me.png", Data: []byte("1")})
	require.NoError(t, err)
	require.NotNil(t, first.Avatar)
	assert.Equal(t, "avatar/alice/", env.store.Key(*first.Avatar)[:len("avatar/alice/")])

	second, err := env.users.ChangeAvatar(ctx, alice.ID, storage.File{Name: "me2.png", Data: []byte("2")})
	require.NoError(t, err)
	assert.NotEqual(t, *first.Avatar, *second.Avatar)
	assert.False(t, env.store.has(*first.Avatar))
	assert.True(t, env.store.has(*second.Avatar))
}

func TestChangeAvatarUploadFailure(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice", models.RoleUser)
	env.store.failUploadAt = 1

	_, err := env.users.ChangeAvatar(context.Background(), alice.ID, storage.File{Name: "me.png"})

	require.ErrorIs(t, err, ErrBadRequest)
	after, err := env.users.FindOneByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Nil(t, after.Avatar)
}

package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vnkhanh/bkhome-server/models"
)

func TestCreateReview(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner", models.RoleOwner)
	student := env.user(t, "student", models.RoleUser)
	room := env.room(t, owner.ID)

	review, err := env.reviews.Create(context.Background(),
		CreateReviewInput{UserID: student.ID, RoomID: room.ID, Content: "Clean and quiet", Star: 5},
		images("r1.png", "r2.png"))

	require.NoError(t, err)
	assert.Equal(t, 5, review.Star)
	require.NotNil(t, review.User)
	assert.Equal(t, "student", review.User.Username)
	require.Len(t, review.Images, 2)
	for _, img := range review.Images {
		assert.True(t, strings.HasPrefix(env.store.Key(img.ImageURL), "review/"+itoa(room.ID)+"/"))
	}
}

func TestCreateReviewValidation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner", models.RoleOwner)
	student := env.user(t, "student", models.RoleUser)
	room := env.room(t, owner.ID)

	tests := []struct {
		name string
		in   CreateReviewInput
		want error
	}{
		{"owner cannot review", CreateReviewInput{UserID: owner.ID, RoomID: room.ID, Content: "x", Star: 3}, ErrValidation},
		{"star too high", CreateReviewInput{UserID: student.ID, RoomID: room.ID, Content: "x", Star: 6}, ErrValidation},
		{"star too low", CreateReviewInput{UserID: student.ID, RoomID: room.ID, Content: "x", Star: 0}, ErrValidation},
		{"empty content", CreateReviewInput{UserID: student.ID, RoomID: room.ID, Content: " ", Star: 3}, ErrValidation},
		{"unknown user", CreateReviewInput{UserID: 99, RoomID: room.ID, Content: "x", Star: 3}, ErrNotFound},
		{"unknown room", CreateReviewInput{UserID: student.ID, RoomID: 99, Content: "x", Star: 3}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.reviews.Create(context.Background(), tt.in, images("a.png"))
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Zero(t, env.rowCount(t, &models.Review{}))
	assert.Zero(t, env.store.count())
}

func TestCreateReviewUploadFailureCompensates(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner", models.RoleOwner)
	student := env.user(t, "student", models.RoleUser)
	room := env.room(t, owner.ID)
	env.store.failUploadAt = 2

	_, err := env.reviews.Create(context.Background(),
		CreateReviewInput{UserID: student.ID, RoomID: room.ID, Content: "ok", Star: 4},
		images("a.png", "b.png"))

	require.ErrorIs(t, err, ErrBadRequest)
	assert.Zero(t, env.rowCount(t, &models.Review{}))
	assert.Zero(t, env.rowCount(t, &models.ReviewImage{}))
	assert.Zero(t, env.store.count())
}

func TestUpdateReview(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner", models.RoleOwner)
	student := env.user(t, "student", models.RoleUser)
	room := env.room(t, owner.ID)
	ctx := context.Background()
	review, err := env.reviews.Create(ctx, CreateReviewInput{UserID: student.ID, RoomID: room.ID, Content: "ok", Star: 3}, images("a.png"))
	require.NoError(t, err)

	star := 4
	kept, err := env.reviews.Update(ctx, review.ID, UpdateReviewInput{Star: &star}, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, kept.Star)
	assert.Equal(t, "ok", kept.Content)
	assert.Equal(t, reviewImageIDs(review.Images), reviewImageIDs(kept.Images))

	content := "better now"
	replaced, err := env.reviews.Update(ctx, review.ID, UpdateReviewInput{Content: &content}, images("b.png", "c.png"))
	require.NoError(t, err)
	assert.Equal(t, content, replaced.Content)
	assert.Len(t, replaced.Images, 2)
	assert.False(t, env.store.has(review.Images[0].ImageURL))
	assert.Equal(t, 2, env.store.count())

	bad := 9
	_, err = env.reviews.Update(ctx, review.ID, UpdateReviewInput{Star: &bad}, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteReview(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner", models.RoleOwner)
	student := env.user(t, "student", models.RoleUser)
	room := env.room(t, owner.ID, images("room.png")...)
	ctx := context.Background()
	review, err := env.reviews.Create(ctx, CreateReviewInput{UserID: student.ID, RoomID: room.ID, Content: "ok", Star: 3}, images("a.png"))
	require.NoError(t, err)

	require.NoError(t, env.reviews.Delete(ctx, review.ID))

	assert.Zero(t, env.rowCount(t, &models.Review{}))
	assert.Zero(t, env.rowCount(t, &models.ReviewImage{}))
	assert.Equal(t, 1, env.store.count())
	assert.ErrorIs(t, env.reviews.Delete(ctx, review.ID), ErrNotFound)
}

func TestListByRoom(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner", models.RoleOwner)
	student := env.user(t, "student", models.RoleUser)
	room := env.room(t, owner.ID)
	other := env.room(t, owner.ID)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := env.reviews.Create(ctx, CreateReviewInput{UserID: student.ID, RoomID: room.ID, Content: "ok", Star: 3}, nil)
		require.NoError(t, err)
	}
	_, err := env.reviews.Create(ctx, CreateReviewInput{UserID: student.ID, RoomID: other.ID, Content: "ok", Star: 3}, nil)
	require.NoError(t, err)

	page, err := env.reviews.ListByRoom(ctx, room.ID, Query{PageSize: 2})

	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Pagination.Total)
	assert.Len(t, page.Items, 2)

	_, err = env.reviews.ListByRoom(ctx, 99, Query{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateReviewPanicCompensates(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner", models.RoleOwner)
	student := env.user(t, "student", models.RoleUser)
	room := env.room(t, owner.ID)
	env.store.panicUploadAt = env.store.uploads + 2

	assert.Panics(t, func() {
		env.reviews.Create(context.Background(),
			CreateReviewInput{UserID: student.ID, RoomID: room.ID, Content: "ok", Star: 4},
			images("a.png", "b.png"))
	})

	assert.Zero(t, env.rowCount(t, &models.Review{}))
	assert.Zero(t, env.store.count())
}

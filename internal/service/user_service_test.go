package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/maxviazov/forum-service/internal/model"
	"github.com/maxviazov/forum-service/internal/repository"
	"github.com/maxviazov/forum-service/internal/service"
)

func TestUserService_RegisterUser_Validation(t *testing.T) {
	svc := service.NewUserService(service.Deps{}, discard)

	cases := []struct {
		name      string
		input     service.RegisterUserInput
		wantField string
	}{
		{"empty_username", service.RegisterUserInput{Password: "secret-pass"}, "username"},
		{"short_username", service.RegisterUserInput{Username: "ab", Password: "secret-pass"}, "username"},
		{"punctuation_username", service.RegisterUserInput{Username: "bad name!", Password: "secret-pass"}, "username"},
		{"bad_email", service.RegisterUserInput{Username: "alice", Email: "nope", Password: "secret-pass"}, "email"},
		{"short_password", service.RegisterUserInput{Username: "alice", Password: "short"}, "password"},
		{"long_nickname", service.RegisterUserInput{Username: "alice", Password: "secret-pass", Nickname: strings.Repeat("n", 201)}, "nickname"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RegisterUser(context.Background(), tc.input)
			if !serviceErrIsInvalid(err) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if !hasField(err, tc.wantField) {
				t.Fatalf("expected field error for %s, got %+v", tc.wantField, service.FieldErrors(err))
			}
		})
	}
}

func TestUserService_RegisterUser_HashesPassword(t *testing.T) {
	d := newStoreDeps(t)
	svc := service.NewUserService(d, discard)
	ctx := context.Background()

	u, err := svc.RegisterUser(ctx, service.RegisterUserInput{Username: " alice ", Email: "alice@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice", u.Nickname, "nickname defaults to username")
	assert.NotEqual(t, "correct horse", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("correct horse")))

	_, err = svc.RegisterUser(ctx, service.RegisterUserInput{Username: "alice", Password: "another-pass"})
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)

	byName, err := svc.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)
}

func TestUserService_GetUser_InvalidID(t *testing.T) {
	svc := service.NewUserService(service.Deps{}, discard)
	_, err := svc.GetUser(context.Background(), 0)
	if !serviceErrIsInvalid(err) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestUserService_Listings_UnknownUser(t *testing.T) {
	svc := service.NewUserService(newStoreDeps(t), discard)
	_, err := svc.ListUserTopics(context.Background(), 404, repository.Page{Number: 1})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_, err = svc.MarkNotificationsRead(context.Background(), 404)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserService_Listings_DefaultPageSizes(t *testing.T) {
	d := newStoreDeps(t)
	users := service.NewUserService(d, discard)
	ctx := context.Background()
	u, err := users.RegisterUser(ctx, service.RegisterUserInput{Username: "reader", Password: "long-enough"})
	require.NoError(t, err)

	topics, err := users.ListUserTopics(ctx, u.ID, repository.Page{Number: 1})
	require.NoError(t, err)
	assert.Equal(t, service.TopicPageSize, topics.Page.Size)

	replies, err := users.ListUserReplies(ctx, u.ID, repository.Page{Number: 1})
	require.NoError(t, err)
	assert.Equal(t, service.ReplyPageSize, replies.Page.Size)

	notes, err := users.ListUserNotifications(ctx, u.ID, repository.Page{Number: 1, Size: 5000})
	require.NoError(t, err)
	assert.Equal(t, service.MaxPageSize, notes.Page.Size)

	favs, err := users.ListUserFavorites(ctx, u.ID, repository.Page{Number: -4})
	require.NoError(t, err)
	assert.Equal(t, 1, favs.Page.Page)
	assert.Equal(t, service.FavoritePageSize, favs.Page.Size)
	assert.NotNil(t, favs.Items)
}

func TestUserService_MaxPageSizeFromDeps(t *testing.T) {
	d := newStoreDeps(t)
	d.MaxPageSize = 20
	users := service.NewUserService(d, discard)
	ctx := context.Background()
	u, err := users.RegisterUser(ctx, service.RegisterUserInput{Username: "capped", Password: "long-enough"})
	require.NoError(t, err)

	res, err := users.ListUserTransactions(ctx, u.ID, repository.Page{Number: 1, Size: 50})
	require.NoError(t, err)
	assert.Equal(t, 20, res.Page.Size)

	votes, err := users.ListUserVotes(ctx, u.ID, repository.Page{Number: 1})
	require.NoError(t, err)
	assert.Equal(t, service.VotePageSize, votes.Page.Size)
	assert.Equal(t, []model.Vote{}, votes.Items)
}

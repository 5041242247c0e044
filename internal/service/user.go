package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/maxviazov/forum-service/internal/model"
	"github.com/maxviazov/forum-service/internal/repository"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// userService owns accounts and every "my stuff" listing.
type userService struct {
	d     Deps
	pages pager
	log   zerolog.Logger
}

func NewUserService(d Deps, logger zerolog.Logger) UserService {
	l := logger.With().Str("module", "service").Str("component", "user").Logger()
	return &userService{d: d, pages: newPager(d.MaxPageSize), log: l}
}

func (s *userService) RegisterUser(ctx context.Context, in RegisterUserInput) (model.User, error) {
	start := time.Now()
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Nickname = strings.TrimSpace(in.Nickname)
	if err := validate.Struct(in); err != nil {
		ferrs := structFieldErrors(err)
		s.log.Debug().Str("username", in.Username).Interface("field_errors", ferrs).Msg("user validation failed")
		return model.User{}, newInvalidInput(ferrs)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	nickname := in.Nickname
	if nickname == "" {
		nickname = in.Username
	}
	out, err := s.d.Users.Create(ctx, model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Nickname:     nickname,
	})
	if err != nil {
		s.log.Error().Err(err).Str("username", in.Username).Msg("create user failed")
		return model.User{}, err
	}
	s.log.Info().Dur("took", time.Since(start)).Int64("user_id", out.ID).Msg("user registered")
	return out, nil
}

func (s *userService) GetUser(ctx context.Context, id int64) (model.User, error) {
	if err := newInvalidInput(requireID("id", id)); err != nil {
		return model.User{}, err
	}
	return s.d.Users.GetByID(ctx, id)
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return model.User{}, newInvalidInput([]FieldError{{Field: "username", Message: "must not be empty"}})
	}
	return s.d.Users.GetByUsername(ctx, username)
}

// requireUser turns a listing for an unknown user into ErrNotFound instead of an empty page.
func (s *userService) requireUser(ctx context.Context, id int64) error {
	if err := newInvalidInput(requireID("user_id", id)); err != nil {
		return err
	}
	_, err := s.d.Users.GetByID(ctx, id)
	return err
}

// listForUser is the shared shape of the per-user listings.
func listForUser[T any](
	ctx context.Context,
	s *userService,
	what string,
	userID int64,
	page repository.Page,
	def int,
	list func(context.Context, int64, repository.Page) (repository.PageResult[T], error),
) (repository.PageResult[T], error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return repository.PageResult[T]{}, err
	}
	p, err := s.pages.normalize(page, def)
	if err != nil {
		return repository.PageResult[T]{}, err
	}
	res, err := list(ctx, userID, p)
	if err != nil {
		s.log.Error().Err(err).Str("listing", what).Int64("user_id", userID).
			Int("page", p.Number).Int("size", p.Size).Msg("list failed")
		return repository.PageResult[T]{}, err
	}
	return res, nil
}

func (s *userService) ListUserTopics(ctx context.Context, userID int64, page repository.Page) (repository.PageResult[model.Topic], error) {
	return listForUser(ctx, s, "topics", userID, page, TopicPageSize, s.d.Topics.ListByAuthor)
}

func (s *userService) ListUserRepliedTopics(ctx context.Context, userID int64, page repository.Page) (repository.PageResult[model.Topic], error) {
	return listForUser(ctx, s, "replied_topics", userID, page, TopicPageSize, s.d.Topics.ListRepliedByUser)
}

func (s *userService) ListUserReplies(ctx context.Context, userID int64, page repository.Page) (repository.PageResult[model.Reply], error) {
	return listForUser(ctx, s, "replies", userID, page, ReplyPageSize, s.d.Replies.ListByAuthor)
}

func (s *userService) ListUserFavorites(ctx context.Context, userID int64, page repository.Page) (repository.PageResult[model.Favorite], error) {
	return listForUser(ctx, s, "favorites", userID, page, FavoritePageSize, s.d.Favorites.ListByOwner)
}

func (s *userService) ListUserNotifications(ctx context.Context, userID int64, page repository.Page) (repository.PageResult[model.Notification], error) {
	return listForUser(ctx, s, "notifications", userID, page, NotificationPageSize, s.d.Notifications.ListByRecipient)
}

func (s *userService) MarkNotificationsRead(ctx context.Context, userID int64) (int64, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return 0, err
	}
	n, err := s.d.Notifications.MarkAllRead(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", userID).Msg("mark notifications read failed")
		return 0, err
	}
	s.log.Debug().Int64("user_id", userID).Int64("marked", n).Msg("notifications marked read")
	return n, nil
}

func (s *userService) ListUserTransactions(ctx context.Context, userID int64, page repository.Page) (repository.PageResult[model.Transaction], error) {
	return listForUser(ctx, s, "transactions", userID, page, TransactionPageSize, s.d.Transactions.ListByUser)
}

func (s *userService) ListUserVotes(ctx context.Context, userID int64, page repository.Page) (repository.PageResult[model.Vote], error) {
	return listForUser(ctx, s, "votes", userID, page, VotePageSize, s.d.Votes.ListByVoter)
}

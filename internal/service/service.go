// Package service holds business logic orchestration across repositories and handlers.
// Kept intentionally lean: use-case coordination, validation, domain error shaping
// and the write-side bookkeeping (cached topic aggregates, balances, notifications).
package service

import (
	"context"
	"errors"

	"github.com/maxviazov/forum-service/internal/model"
	"github.com/maxviazov/forum-service/internal/repository"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// ErrForbidden is returned when the caller is known but not allowed to act (maps to HTTP 403).
var ErrForbidden = errors.New("forbidden")

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// newInvalidInput builds an aggregated validation error if any field errors are present.
func newInvalidInput(fe []FieldError) error {
	if len(fe) == 0 {
		return nil
	}
	return &invalidInputError{fields: fe}
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	var v interface{ Fields() []FieldError }
	if errors.As(err, &v) && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// Renderer turns user-written markdown into safe HTML.
type Renderer interface {
	Render(markdown string) string
}

// Deps are the collaborators the services draw from. One store backs all of them.
type Deps struct {
	Tx            repository.TxManager
	Users         repository.UserRepository
	Planes        repository.PlaneRepository
	Nodes         repository.NodeRepository
	Topics        repository.TopicRepository
	Replies       repository.ReplyRepository
	Favorites     repository.FavoriteRepository
	Notifications repository.NotificationRepository
	Transactions  repository.TransactionRepository
	Votes         repository.VoteRepository
	Renderer      Renderer
	// MaxPageSize caps client-requested page sizes; zero means MaxPageSize.
	MaxPageSize int
}

// RegisterUserInput is the data needed to open an account.
type RegisterUserInput struct {
	Username string `validate:"required,min=3,max=30,alphanumunicode"`
	Email    string `validate:"omitempty,email,max=254"`
	Password string `validate:"required,min=8,max=72"`
	Nickname string `validate:"max=200"`
}

// UserService defines account and per-user listing use cases.
type UserService interface {
	RegisterUser(ctx context.Context, in RegisterUserInput) (model.User, error)
	GetUser(ctx context.Context, id int64) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	ListUserTopics(ctx context.Context, userID int64, page repository.Page) (repository.PageResult[model.Topic], error)
	ListUserRepliedTopics(ctx context.Context, userID int64, page repository.Page) (repository.PageResult[model.Topic], error)
	ListUserReplies(ctx context.Context, userID int64, page repository.Page) (repository.PageResult[model.Reply], error)
	ListUserFavorites(ctx context.Context, userID int64, page repository.Page) (repository.PageResult[model.Favorite], error)
	ListUserNotifications(ctx context.Context, userID int64, page repository.Page) (repository.PageResult[model.Notification], error)
	MarkNotificationsRead(ctx context.Context, userID int64) (int64, error)
	ListUserTransactions(ctx context.Context, userID int64, page repository.Page) (repository.PageResult[model.Transaction], error)
	ListUserVotes(ctx context.Context, userID int64, page repository.Page) (repository.PageResult[model.Vote], error)
}

// CreateNodeInput describes a new board. An empty Slug is derived from Name.
type CreateNodeInput struct {
	PlaneID         *int64
	Name            string
	Slug            string
	Introduction    string
	Thumb           string
	LimitReputation int
}

// NodeService defines plane and node use cases.
type NodeService interface {
	CreatePlane(ctx context.Context, name string) (model.Plane, error)
	ListPlanes(ctx context.Context) ([]model.Plane, error)
	CreateNode(ctx context.Context, in CreateNodeInput) (model.Node, error)
	GetNode(ctx context.Context, slug string) (model.Node, error)
	ListHotNodes(ctx context.Context, limit int) ([]model.HotNode, error)
}

// CreateTopicInput is a new thread posted by AuthorID into NodeID.
type CreateTopicInput struct {
	AuthorID int64
	NodeID   int64
	Title    string
	Content  string
}

// TopicService defines topic use cases.
type TopicService interface {
	CreateTopic(ctx context.Context, in CreateTopicInput) (model.Topic, error)
	// GetTopic counts a view and returns the topic with rendered content.
	GetTopic(ctx context.Context, id int64) (model.Topic, error)
	ListTopics(ctx context.Context, page repository.Page) (repository.PageResult[model.Topic], error)
	ListTopicsByNode(ctx context.Context, slug string, page repository.Page) (repository.PageResult[model.Topic], error)
}

// CreateReplyInput is a post by AuthorID in TopicID.
type CreateReplyInput struct {
	AuthorID int64
	TopicID  int64
	Content  string
}

// ReplyService defines reply use cases.
type ReplyService interface {
	CreateReply(ctx context.Context, in CreateReplyInput) (model.Reply, error)
	ListReplies(ctx context.Context, topicID int64, page repository.Page) (repository.PageResult[model.Reply], error)
}

// CastVoteInput is one user's up or down vote on a topic or reply.
type CastVoteInput struct {
	VoterID  int64
	Kind     model.InvolvedType
	TargetID int64
	Status   int
}

// RecordTransactionInput is a balance change for UserID.
type RecordTransactionInput struct {
	UserID          int64
	Type            int
	Reward          int
	InvolvedUserID  *int64
	InvolvedTopicID *int64
	InvolvedReplyID *int64
}

// ActivityService defines favorites, votes and the point ledger.
type ActivityService interface {
	AddFavorite(ctx context.Context, userID int64, kind model.InvolvedType, targetID int64) (model.Favorite, error)
	CastVote(ctx context.Context, in CastVoteInput) (model.Vote, error)
	RecordTransaction(ctx context.Context, in RecordTransactionInput) (model.Transaction, error)
}

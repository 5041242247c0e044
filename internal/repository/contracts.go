package repository

import (
	"context"
	"time"

	"github.com/maxviazov/forum-service/internal/model"
)

// Pinger represents a minimal readiness probe capability.
// I use it to decouple health checks from storage implementation details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
// I pass context through so nested calls can honor cancellations and deadlines.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for repositories that support it.
// I prefer a single entry point to keep transaction boundaries explicit and testable.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// UserRepository declares persistence operations for forum accounts.
type UserRepository interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	GetByID(ctx context.Context, id int64) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	// AdjustBalance adds delta to the user's balance and returns the new balance.
	AdjustBalance(ctx context.Context, id int64, delta int) (int, error)
}

// PlaneRepository declares persistence operations for node groups.
type PlaneRepository interface {
	Create(ctx context.Context, p model.Plane) (model.Plane, error)
	GetByID(ctx context.Context, id int64) (model.Plane, error)
	List(ctx context.Context) ([]model.Plane, error)
	// ListWithNodes returns every plane with its nodes attached, both ordered by id.
	ListWithNodes(ctx context.Context) ([]model.Plane, error)
}

// NodeRepository declares persistence operations for boards.
type NodeRepository interface {
	Create(ctx context.Context, n model.Node) (model.Node, error)
	GetByID(ctx context.Context, id int64) (model.Node, error)
	GetBySlug(ctx context.Context, slug string) (model.Node, error)
	ListByPlane(ctx context.Context, planeID int64) ([]model.Node, error)
	// ListHot returns nodes whose topics collected replies, one row per node, ordered by
	// the sum of their topics' reply counts (descending) and then by id.
	ListHot(ctx context.Context, limit int) ([]model.HotNode, error)
	IncrementTopicCount(ctx context.Context, id int64) error
}

// TopicRepository declares persistence operations and listings for topics.
// Every listing resolves node, author and last replier.
type TopicRepository interface {
	Create(ctx context.Context, t model.Topic) (model.Topic, error)
	GetByID(ctx context.Context, id int64) (model.Topic, error)
	// List orders by last_touched, created, last_replied_time and id, all descending.
	List(ctx context.Context, p Page) (PageResult[model.Topic], error)
	ListByNodeSlug(ctx context.Context, slug string, p Page) (PageResult[model.Topic], error)
	// ListByAuthor orders newest first by id.
	ListByAuthor(ctx context.Context, authorID int64, p Page) (PageResult[model.Topic], error)
	// ListRepliedByUser returns each topic the user replied to once, ordered by their latest reply.
	ListRepliedByUser(ctx context.Context, userID int64, p Page) (PageResult[model.Topic], error)
	GetLastCreatedByAuthor(ctx context.Context, authorID int64) (model.Topic, error)
	// RecordReply updates the cached reply aggregates after a reply was stored.
	RecordReply(ctx context.Context, topicID, replierID int64, at time.Time) error
	ApplyVote(ctx context.Context, topicID int64, up, down int) error
	IncrementHits(ctx context.Context, id int64) error
}

// ReplyRepository declares persistence operations and listings for replies.
type ReplyRepository interface {
	Create(ctx context.Context, r model.Reply) (model.Reply, error)
	GetByID(ctx context.Context, id int64) (model.Reply, error)
	// ListByTopic orders chronologically by id and resolves authors.
	ListByTopic(ctx context.Context, topicID int64, p Page) (PageResult[model.Reply], error)
	// ListByAuthor orders newest first and resolves topic and author.
	ListByAuthor(ctx context.Context, authorID int64, p Page) (PageResult[model.Reply], error)
	ApplyVote(ctx context.Context, replyID int64, up, down int) error
}

// FavoriteRepository declares persistence operations for bookmarks.
type FavoriteRepository interface {
	Create(ctx context.Context, f model.Favorite) (model.Favorite, error)
	Exists(ctx context.Context, ownerID int64, kind model.InvolvedType, targetID int64) (bool, error)
	// ListByOwner orders newest first and resolves the topic with its node, author and last replier.
	ListByOwner(ctx context.Context, ownerID int64, p Page) (PageResult[model.Favorite], error)
}

// NotificationRepository declares persistence operations for user notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n model.Notification) (model.Notification, error)
	// ListByRecipient orders newest first and resolves trigger user, topic and recipient.
	ListByRecipient(ctx context.Context, userID int64, p Page) (PageResult[model.Notification], error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}

// TransactionRepository declares persistence operations for the point ledger.
type TransactionRepository interface {
	Create(ctx context.Context, t model.Transaction) (model.Transaction, error)
	ListByUser(ctx context.Context, userID int64, p Page) (PageResult[model.Transaction], error)
}

// VoteRepository declares persistence operations for votes.
type VoteRepository interface {
	Create(ctx context.Context, v model.Vote) (model.Vote, error)
	Find(ctx context.Context, voterID int64, kind model.InvolvedType, targetID int64) (model.Vote, error)
	ListByVoter(ctx context.Context, voterID int64, p Page) (PageResult[model.Vote], error)
}

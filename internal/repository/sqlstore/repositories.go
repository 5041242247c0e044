package sqlstore

import (
	"github.com/jmoiron/sqlx"
	"github.com/maxviazov/forum-service/internal/repository"
)

// Repositories bundles every accessor over one shared handle.
type Repositories struct {
	Users         repository.UserRepository
	Planes        repository.PlaneRepository
	Nodes         repository.NodeRepository
	Topics        repository.TopicRepository
	Replies       repository.ReplyRepository
	Favorites     repository.FavoriteRepository
	Notifications repository.NotificationRepository
	Transactions  repository.TransactionRepository
	Votes         repository.VoteRepository
	Tx            repository.TxManager
	Pinger        repository.Pinger
}

func NewRepositories(db *sqlx.DB) Repositories {
	return Repositories{
		Users:         NewUserRepository(db),
		Planes:        NewPlaneRepository(db),
		Nodes:         NewNodeRepository(db),
		Topics:        NewTopicRepository(db),
		Replies:       NewReplyRepository(db),
		Favorites:     NewFavoriteRepository(db),
		Notifications: NewNotificationRepository(db),
		Transactions:  NewTransactionRepository(db),
		Votes:         NewVoteRepository(db),
		Tx:            NewTxManager(db),
		Pinger:        NewPinger(db),
	}
}

package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/maxviazov/forum-service/internal/model"
	"github.com/maxviazov/forum-service/internal/repository"
)

const transactionColumns = `id, user_id, type, reward, current_balance, involved_user,
	involved_topic, involved_reply, occurrence_time`

type transactionRow struct {
	ID             int64         `db:"id"`
	UserID         int64         `db:"user_id"`
	Type           int           `db:"type"`
	Reward         int           `db:"reward"`
	CurrentBalance int           `db:"current_balance"`
	InvolvedUser   sql.NullInt64 `db:"involved_user"`
	InvolvedTopic  sql.NullInt64 `db:"involved_topic"`
	InvolvedReply  sql.NullInt64 `db:"involved_reply"`
	OccurrenceTime time.Time     `db:"occurrence_time"`
}

func (r transactionRow) model() model.Transaction {
	return model.Transaction{
		ID: r.ID, UserID: r.UserID, Type: r.Type, Reward: r.Reward, CurrentBalance: r.CurrentBalance,
		InvolvedUserID: int64Ptr(r.InvolvedUser), InvolvedTopicID: int64Ptr(r.InvolvedTopic),
		InvolvedReplyID: int64Ptr(r.InvolvedReply), OccurrenceTime: r.OccurrenceTime.UTC(),
	}
}

type transactionRepository struct{ db *sqlx.DB }

func NewTransactionRepository(db *sqlx.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, t model.Transaction) (model.Transaction, error) {
	if err := ensureDB(r.db); err != nil {
		return model.Transaction{}, err
	}
	exec := getQ(ctx, r.db)
	var id int64
	err := sqlx.GetContext(ctx, exec, &id, exec.Rebind(
		`INSERT INTO transactions (user_id, type, reward, current_balance, involved_user,
			involved_topic, involved_reply, occurrence_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`),
		t.UserID, t.Type, t.Reward, t.CurrentBalance, nullInt64(t.InvolvedUserID),
		nullInt64(t.InvolvedTopicID), nullInt64(t.InvolvedReplyID), stamp(t.OccurrenceTime),
	)
	if err != nil {
		return model.Transaction{}, repository.MapError(err)
	}
	var row transactionRow
	if err := sqlx.GetContext(ctx, exec, &row, exec.Rebind(`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`), id); err != nil {
		return model.Transaction{}, repository.MapError(err)
	}
	return row.model(), nil
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID int64, p repository.Page) (repository.PageResult[model.Transaction], error) {
	if err := ensureDB(r.db); err != nil {
		return repository.PageResult[model.Transaction]{}, err
	}
	return listPage(ctx, getQ(ctx, r.db), p,
		`SELECT COUNT(*) FROM transactions WHERE user_id = ?`,
		`SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = ?
		ORDER BY id DESC`,
		[]any{userID}, transactionRow.model)
}

var _ repository.TransactionRepository = (*transactionRepository)(nil)

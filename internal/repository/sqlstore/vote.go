package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/maxviazov/forum-service/internal/model"
	"github.com/maxviazov/forum-service/internal/repository"
)

const voteColumns = `id, involved_user, trigger_user, involved_type, involved_topic,
	involved_reply, status, occurrence_time`

type voteRow struct {
	ID             int64         `db:"id"`
	InvolvedUser   int64         `db:"involved_user"`
	TriggerUser    sql.NullInt64 `db:"trigger_user"`
	InvolvedType   int           `db:"involved_type"`
	InvolvedTopic  sql.NullInt64 `db:"involved_topic"`
	InvolvedReply  sql.NullInt64 `db:"involved_reply"`
	Status         int           `db:"status"`
	OccurrenceTime time.Time     `db:"occurrence_time"`
}

func (r voteRow) model() model.Vote {
	return model.Vote{
		ID: r.ID, InvolvedUserID: r.InvolvedUser, TriggerUserID: int64Ptr(r.TriggerUser),
		InvolvedType: model.InvolvedType(r.InvolvedType), InvolvedTopicID: int64Ptr(r.InvolvedTopic),
		InvolvedReplyID: int64Ptr(r.InvolvedReply), Status: r.Status, OccurrenceTime: r.OccurrenceTime.UTC(),
	}
}

type voteRepository struct{ db *sqlx.DB }

func NewVoteRepository(db *sqlx.DB) repository.VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) Create(ctx context.Context, v model.Vote) (model.Vote, error) {
	if err := ensureDB(r.db); err != nil {
		return model.Vote{}, err
	}
	exec := getQ(ctx, r.db)
	var id int64
	err := sqlx.GetContext(ctx, exec, &id, exec.Rebind(
		`INSERT INTO votes (involved_user, trigger_user, involved_type, involved_topic,
			involved_reply, status, occurrence_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`),
		v.InvolvedUserID, nullInt64(v.TriggerUserID), int(v.InvolvedType), nullInt64(v.InvolvedTopicID),
		nullInt64(v.InvolvedReplyID), v.Status, stamp(v.OccurrenceTime),
	)
	if err != nil {
		return model.Vote{}, repository.MapError(err)
	}
	var row voteRow
	if err := sqlx.GetContext(ctx, exec, &row, exec.Rebind(`SELECT `+voteColumns+` FROM votes WHERE id = ?`), id); err != nil {
		return model.Vote{}, repository.MapError(err)
	}
	return row.model(), nil
}

// Find returns the voter's vote on a target, or ErrNotFound.
func (r *voteRepository) Find(ctx context.Context, voterID int64, kind model.InvolvedType, targetID int64) (model.Vote, error) {
	if err := ensureDB(r.db); err != nil {
		return model.Vote{}, err
	}
	exec := getQ(ctx, r.db)
	var row voteRow
	err := sqlx.GetContext(ctx, exec, &row, exec.Rebind(
		`SELECT `+voteColumns+` FROM votes
		 WHERE involved_user = ? AND involved_type = ? AND `+targetColumn(kind)+` = ?
		 ORDER BY id DESC
		 LIMIT 1`),
		voterID, int(kind), targetID,
	)
	if err != nil {
		return model.Vote{}, repository.MapError(err)
	}
	return row.model(), nil
}

func (r *voteRepository) ListByVoter(ctx context.Context, voterID int64, p repository.Page) (repository.PageResult[model.Vote], error) {
	if err := ensureDB(r.db); err != nil {
		return repository.PageResult[model.Vote]{}, err
	}
	return listPage(ctx, getQ(ctx, r.db), p,
		`SELECT COUNT(*) FROM votes WHERE involved_user = ?`,
		`SELECT `+voteColumns+` FROM votes
		WHERE involved_user = ?
		ORDER BY id DESC`,
		[]any{voterID}, voteRow.model)
}

var _ repository.VoteRepository = (*voteRepository)(nil)

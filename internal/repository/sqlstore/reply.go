package sqlstore

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/maxviazov/forum-service/internal/model"
	"github.com/maxviazov/forum-service/internal/repository"
)

const replySelect = `SELECT
	r.id AS id, r.topic_id AS topic_id, r.author_id AS author_id, r.content AS content,
	r.up_vote AS up_vote, r.down_vote AS down_vote, r.last_touched AS last_touched,
	r.created AS created, r.updated AS updated,
	a.username AS author_username, a.nickname AS author_nickname, a.avatar AS author_avatar,
	t.title AS topic_title, t.node_id AS topic_node_id
FROM replies r
JOIN users a ON a.id = r.author_id
JOIN topics t ON t.id = r.topic_id`

type replyRow struct {
	ID             int64     `db:"id"`
	TopicID        int64     `db:"topic_id"`
	AuthorID       int64     `db:"author_id"`
	Content        string    `db:"content"`
	UpVote         int       `db:"up_vote"`
	DownVote       int       `db:"down_vote"`
	LastTouched    time.Time `db:"last_touched"`
	Created        time.Time `db:"created"`
	Updated        time.Time `db:"updated"`
	AuthorUsername string    `db:"author_username"`
	AuthorNickname string    `db:"author_nickname"`
	AuthorAvatar   string    `db:"author_avatar"`
	TopicTitle     string    `db:"topic_title"`
	TopicNodeID    int64     `db:"topic_node_id"`
}

func (r replyRow) model() model.Reply {
	return model.Reply{
		ID: r.ID, TopicID: r.TopicID, AuthorID: r.AuthorID, Content: r.Content,
		UpVote: r.UpVote, DownVote: r.DownVote, LastTouched: r.LastTouched.UTC(),
		Created: r.Created.UTC(), Updated: r.Updated.UTC(),
		Author: &model.UserRef{ID: r.AuthorID, Username: r.AuthorUsername, Nickname: r.AuthorNickname, Avatar: r.AuthorAvatar},
		Topic:  &model.TopicRef{ID: r.TopicID, Title: r.TopicTitle, NodeID: r.TopicNodeID},
	}
}

// withoutTopic drops the topic reference for listings inside a single topic.
func (r replyRow) withoutTopic() model.Reply {
	m := r.model()
	m.Topic = nil
	return m
}

type replyRepository struct{ db *sqlx.DB }

func NewReplyRepository(db *sqlx.DB) repository.ReplyRepository {
	return &replyRepository{db: db}
}

func (r *replyRepository) Create(ctx context.Context, rp model.Reply) (model.Reply, error) {
	if err := ensureDB(r.db); err != nil {
		return model.Reply{}, err
	}
	rp.Created = stamp(rp.Created)
	if rp.Updated.IsZero() {
		rp.Updated = rp.Created
	}
	if rp.LastTouched.IsZero() {
		rp.LastTouched = rp.Created
	}
	exec := getQ(ctx, r.db)
	var id int64
	err := sqlx.GetContext(ctx, exec, &id, exec.Rebind(
		`INSERT INTO replies (topic_id, author_id, content, up_vote, down_vote, last_touched, created, updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`),
		rp.TopicID, rp.AuthorID, rp.Content, rp.UpVote, rp.DownVote,
		stamp(rp.LastTouched), rp.Created, stamp(rp.Updated),
	)
	if err != nil {
		return model.Reply{}, repository.MapError(err)
	}
	return r.GetByID(ctx, id)
}

func (r *replyRepository) GetByID(ctx context.Context, id int64) (model.Reply, error) {
	if err := ensureDB(r.db); err != nil {
		return model.Reply{}, err
	}
	exec := getQ(ctx, r.db)
	var row replyRow
	if err := sqlx.GetContext(ctx, exec, &row, exec.Rebind(replySelect+` WHERE r.id = ?`), id); err != nil {
		return model.Reply{}, repository.MapError(err)
	}
	return row.model(), nil
}

func (r *replyRepository) ListByTopic(ctx context.Context, topicID int64, p repository.Page) (repository.PageResult[model.Reply], error) {
	if err := ensureDB(r.db); err != nil {
		return repository.PageResult[model.Reply]{}, err
	}
	return listPage(ctx, getQ(ctx, r.db), p,
		`SELECT COUNT(*) FROM replies WHERE topic_id = ?`,
		replySelect+`
		WHERE r.topic_id = ?
		ORDER BY r.id ASC`,
		[]any{topicID}, replyRow.withoutTopic)
}

func (r *replyRepository) ListByAuthor(ctx context.Context, authorID int64, p repository.Page) (repository.PageResult[model.Reply], error) {
	if err := ensureDB(r.db); err != nil {
		return repository.PageResult[model.Reply]{}, err
	}
	return listPage(ctx, getQ(ctx, r.db), p,
		`SELECT COUNT(*) FROM replies WHERE author_id = ?`,
		replySelect+`
		WHERE r.author_id = ?
		ORDER BY r.id DESC`,
		[]any{authorID}, replyRow.model)
}

func (r *replyRepository) ApplyVote(ctx context.Context, replyID int64, up, down int) error {
	if err := ensureDB(r.db); err != nil {
		return err
	}
	exec := getQ(ctx, r.db)
	res, err := exec.ExecContext(ctx, exec.Rebind(
		`UPDATE replies SET up_vote = up_vote + ?, down_vote = down_vote + ? WHERE id = ?`),
		up, down, replyID,
	)
	if err != nil {
		return repository.MapError(err)
	}
	return requireAffected(res)
}

var _ repository.ReplyRepository = (*replyRepository)(nil)

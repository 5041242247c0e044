package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/maxviazov/forum-service/internal/model"
	"github.com/maxviazov/forum-service/internal/repository"
)

// topicColumns selects a topic with its node, author and last replier in one row.
const topicColumns = `SELECT
	t.id AS id, t.node_id AS node_id, t.author_id AS author_id, t.title AS title, t.content AS content,
	t.status AS status, t.hits AS hits, t.reply_count AS reply_count,
	t.up_vote AS up_vote, t.down_vote AS down_vote,
	t.last_replied_by AS last_replied_by, t.last_replied_time AS last_replied_time,
	t.last_touched AS last_touched, t.created AS created, t.updated AS updated,
	n.name AS node_name, n.slug AS node_slug,
	a.username AS author_username, a.nickname AS author_nickname, a.avatar AS author_avatar,
	lr.username AS last_replied_by_username, lr.nickname AS last_replied_by_nickname,
	lr.avatar AS last_replied_by_avatar
FROM topics t`

const topicJoins = `
JOIN nodes n ON n.id = t.node_id
JOIN users a ON a.id = t.author_id
LEFT JOIN users lr ON lr.id = t.last_replied_by`

const topicSelect = topicColumns + topicJoins

// Touch order is total: id breaks every remaining tie.
const topicTouchOrder = `
ORDER BY t.last_touched DESC, t.created DESC, t.last_replied_time DESC NULLS LAST, t.id DESC`

type topicRow struct {
	ID              int64          `db:"id"`
	NodeID          int64          `db:"node_id"`
	AuthorID        int64          `db:"author_id"`
	Title           string         `db:"title"`
	Content         string         `db:"content"`
	Status          int            `db:"status"`
	Hits            int            `db:"hits"`
	ReplyCount      int            `db:"reply_count"`
	UpVote          int            `db:"up_vote"`
	DownVote        int            `db:"down_vote"`
	LastRepliedBy   sql.NullInt64  `db:"last_replied_by"`
	LastRepliedTime sql.NullTime   `db:"last_replied_time"`
	LastTouched     time.Time      `db:"last_touched"`
	Created         time.Time      `db:"created"`
	Updated         time.Time      `db:"updated"`
	NodeName        string         `db:"node_name"`
	NodeSlug        string         `db:"node_slug"`
	AuthorUsername  string         `db:"author_username"`
	AuthorNickname  string         `db:"author_nickname"`
	AuthorAvatar    string         `db:"author_avatar"`
	LastUsername    sql.NullString `db:"last_replied_by_username"`
	LastNickname    sql.NullString `db:"last_replied_by_nickname"`
	LastAvatar      sql.NullString `db:"last_replied_by_avatar"`
}

func (r topicRow) model() model.Topic {
	return model.Topic{
		ID: r.ID, NodeID: r.NodeID, AuthorID: r.AuthorID, Title: r.Title, Content: r.Content,
		Status: r.Status, Hits: r.Hits, ReplyCount: r.ReplyCount, UpVote: r.UpVote, DownVote: r.DownVote,
		LastRepliedByID: int64Ptr(r.LastRepliedBy), LastRepliedTime: timePtr(r.LastRepliedTime),
		LastTouched: r.LastTouched.UTC(), Created: r.Created.UTC(), Updated: r.Updated.UTC(),
		Node:          &model.NodeRef{ID: r.NodeID, Name: r.NodeName, Slug: r.NodeSlug},
		Author:        &model.UserRef{ID: r.AuthorID, Username: r.AuthorUsername, Nickname: r.AuthorNickname, Avatar: r.AuthorAvatar},
		LastRepliedBy: userRefFrom(r.LastRepliedBy, r.LastUsername, r.LastNickname, r.LastAvatar),
	}
}

type topicRepository struct{ db *sqlx.DB }

func NewTopicRepository(db *sqlx.DB) repository.TopicRepository {
	return &topicRepository{db: db}
}

func (r *topicRepository) Create(ctx context.Context, t model.Topic) (model.Topic, error) {
	if err := ensureDB(r.db); err != nil {
		return model.Topic{}, err
	}
	t.Created = stamp(t.Created)
	if t.Updated.IsZero() {
		t.Updated = t.Created
	}
	if t.LastTouched.IsZero() {
		t.LastTouched = t.Created
	}
	exec := getQ(ctx, r.db)
	var id int64
	err := sqlx.GetContext(ctx, exec, &id, exec.Rebind(
		`INSERT INTO topics (node_id, author_id, title, content, status, hits, reply_count,
			up_vote, down_vote, last_replied_by, last_replied_time, last_touched, created, updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`),
		t.NodeID, t.AuthorID, t.Title, t.Content, t.Status, t.Hits, t.ReplyCount,
		t.UpVote, t.DownVote, nullInt64(t.LastRepliedByID), nullTime(t.LastRepliedTime),
		stamp(t.LastTouched), t.Created, stamp(t.Updated),
	)
	if err != nil {
		return model.Topic{}, repository.MapError(err)
	}
	return r.GetByID(ctx, id)
}

func (r *topicRepository) GetByID(ctx context.Context, id int64) (model.Topic, error) {
	return r.getOne(ctx, topicSelect+`
		WHERE t.id = ?`, id)
}

func (r *topicRepository) GetLastCreatedByAuthor(ctx context.Context, authorID int64) (model.Topic, error) {
	return r.getOne(ctx, topicSelect+`
		WHERE t.author_id = ?
		ORDER BY t.created DESC, t.id DESC
		LIMIT 1`, authorID)
}

func (r *topicRepository) getOne(ctx context.Context, query string, args ...any) (model.Topic, error) {
	if err := ensureDB(r.db); err != nil {
		return model.Topic{}, err
	}
	exec := getQ(ctx, r.db)
	var row topicRow
	if err := sqlx.GetContext(ctx, exec, &row, exec.Rebind(query), args...); err != nil {
		return model.Topic{}, repository.MapError(err)
	}
	return row.model(), nil
}

func (r *topicRepository) List(ctx context.Context, p repository.Page) (repository.PageResult[model.Topic], error) {
	if err := ensureDB(r.db); err != nil {
		return repository.PageResult[model.Topic]{}, err
	}
	return listPage(ctx, getQ(ctx, r.db), p,
		`SELECT COUNT(*) FROM topics`,
		topicSelect+topicTouchOrder,
		nil, topicRow.model)
}

// ListByNodeSlug lists one node's topics in touch order. An unknown slug is an empty page.
func (r *topicRepository) ListByNodeSlug(ctx context.Context, slug string, p repository.Page) (repository.PageResult[model.Topic], error) {
	if err := ensureDB(r.db); err != nil {
		return repository.PageResult[model.Topic]{}, err
	}
	return listPage(ctx, getQ(ctx, r.db), p,
		`SELECT COUNT(*) FROM topics t JOIN nodes n ON n.id = t.node_id WHERE n.slug = ?`,
		topicSelect+`
		WHERE n.slug = ?`+topicTouchOrder,
		[]any{slug}, topicRow.model)
}

func (r *topicRepository) ListByAuthor(ctx context.Context, authorID int64, p repository.Page) (repository.PageResult[model.Topic], error) {
	if err := ensureDB(r.db); err != nil {
		return repository.PageResult[model.Topic]{}, err
	}
	return listPage(ctx, getQ(ctx, r.db), p,
		`SELECT COUNT(*) FROM topics WHERE author_id = ?`,
		topicSelect+`
		WHERE t.author_id = ?
		ORDER BY t.id DESC`,
		[]any{authorID}, topicRow.model)
}

// ListRepliedByUser collapses the user's replies to one row per topic and
// orders topics by the user's latest reply in each.
func (r *topicRepository) ListRepliedByUser(ctx context.Context, userID int64, p repository.Page) (repository.PageResult[model.Topic], error) {
	if err := ensureDB(r.db); err != nil {
		return repository.PageResult[model.Topic]{}, err
	}
	return listPage(ctx, getQ(ctx, r.db), p,
		`SELECT COUNT(DISTINCT topic_id) FROM replies WHERE author_id = ?`,
		topicColumns+`
		JOIN (
			SELECT topic_id, MAX(id) AS last_reply_id
			FROM replies
			WHERE author_id = ?
			GROUP BY topic_id
		) mine ON mine.topic_id = t.id`+topicJoins+`
		ORDER BY mine.last_reply_id DESC`,
		[]any{userID}, topicRow.model)
}

func (r *topicRepository) RecordReply(ctx context.Context, topicID, replierID int64, at time.Time) error {
	if err := ensureDB(r.db); err != nil {
		return err
	}
	at = stamp(at)
	exec := getQ(ctx, r.db)
	res, err := exec.ExecContext(ctx, exec.Rebind(
		`UPDATE topics
		 SET reply_count = reply_count + 1, last_replied_by = ?, last_replied_time = ?,
		     last_touched = ?, updated = ?
		 WHERE id = ?`),
		replierID, at, at, at, topicID,
	)
	if err != nil {
		return repository.MapError(err)
	}
	return requireAffected(res)
}

func (r *topicRepository) ApplyVote(ctx context.Context, topicID int64, up, down int) error {
	if err := ensureDB(r.db); err != nil {
		return err
	}
	exec := getQ(ctx, r.db)
	res, err := exec.ExecContext(ctx, exec.Rebind(
		`UPDATE topics SET up_vote = up_vote + ?, down_vote = down_vote + ? WHERE id = ?`),
		up, down, topicID,
	)
	if err != nil {
		return repository.MapError(err)
	}
	return requireAffected(res)
}

func (r *topicRepository) IncrementHits(ctx context.Context, id int64) error {
	if err := ensureDB(r.db); err != nil {
		return err
	}
	exec := getQ(ctx, r.db)
	res, err := exec.ExecContext(ctx, exec.Rebind(`UPDATE topics SET hits = hits + 1 WHERE id = ?`), id)
	if err != nil {
		return repository.MapError(err)
	}
	return requireAffected(res)
}

var _ repository.TopicRepository = (*topicRepository)(nil)

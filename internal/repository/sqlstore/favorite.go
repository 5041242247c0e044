package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/maxviazov/forum-service/internal/model"
	"github.com/maxviazov/forum-service/internal/repository"
)

const favoriteColumns = `id, owner_user_id, involved_type, involved_topic, involved_reply, created`

type favoriteRow struct {
	ID            int64         `db:"id"`
	OwnerUserID   int64         `db:"owner_user_id"`
	InvolvedType  int           `db:"involved_type"`
	InvolvedTopic sql.NullInt64 `db:"involved_topic"`
	InvolvedReply sql.NullInt64 `db:"involved_reply"`
	Created       time.Time     `db:"created"`
}

func (r favoriteRow) model() model.Favorite {
	return model.Favorite{
		ID: r.ID, OwnerUserID: r.OwnerUserID, InvolvedType: model.InvolvedType(r.InvolvedType),
		InvolvedTopicID: int64Ptr(r.InvolvedTopic), InvolvedReplyID: int64Ptr(r.InvolvedReply),
		Created: r.Created.UTC(),
	}
}

type favoriteRepository struct{ db *sqlx.DB }

func NewFavoriteRepository(db *sqlx.DB) repository.FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Create(ctx context.Context, f model.Favorite) (model.Favorite, error) {
	if err := ensureDB(r.db); err != nil {
		return model.Favorite{}, err
	}
	exec := getQ(ctx, r.db)
	var id int64
	err := sqlx.GetContext(ctx, exec, &id, exec.Rebind(
		`INSERT INTO favorites (owner_user_id, involved_type, involved_topic, involved_reply, created)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING id`),
		f.OwnerUserID, int(f.InvolvedType), nullInt64(f.InvolvedTopicID), nullInt64(f.InvolvedReplyID), stamp(f.Created),
	)
	if err != nil {
		return model.Favorite{}, repository.MapError(err)
	}
	var row favoriteRow
	if err := sqlx.GetContext(ctx, exec, &row, exec.Rebind(`SELECT `+favoriteColumns+` FROM favorites WHERE id = ?`), id); err != nil {
		return model.Favorite{}, repository.MapError(err)
	}
	return row.model(), nil
}

func (r *favoriteRepository) Exists(ctx context.Context, ownerID int64, kind model.InvolvedType, targetID int64) (bool, error) {
	if err := ensureDB(r.db); err != nil {
		return false, err
	}
	exec := getQ(ctx, r.db)
	var exists bool
	err := sqlx.GetContext(ctx, exec, &exists, exec.Rebind(
		`SELECT EXISTS(SELECT 1 FROM favorites
		 WHERE owner_user_id = ? AND involved_type = ? AND `+targetColumn(kind)+` = ?)`),
		ownerID, int(kind), targetID,
	)
	if err != nil {
		return false, repository.MapError(err)
	}
	return exists, nil
}

// ListByOwner pages the bookmarks newest first, then resolves the bookmarked
// topics (with node, author and last replier) in one batched query.
func (r *favoriteRepository) ListByOwner(ctx context.Context, ownerID int64, p repository.Page) (repository.PageResult[model.Favorite], error) {
	if err := ensureDB(r.db); err != nil {
		return repository.PageResult[model.Favorite]{}, err
	}
	exec := getQ(ctx, r.db)
	res, err := listPage(ctx, exec, p,
		`SELECT COUNT(*) FROM favorites WHERE owner_user_id = ?`,
		`SELECT `+favoriteColumns+` FROM favorites
		WHERE owner_user_id = ?
		ORDER BY id DESC`,
		[]any{ownerID}, favoriteRow.model)
	if err != nil || len(res.Items) == 0 {
		return res, err
	}

	ids := make([]int64, 0, len(res.Items))
	for _, f := range res.Items {
		if f.InvolvedTopicID != nil {
			ids = append(ids, *f.InvolvedTopicID)
		}
	}
	if len(ids) == 0 {
		return res, nil
	}
	query, args, err := sqlx.In(topicSelect+` WHERE t.id IN (?)`, ids)
	if err != nil {
		return repository.PageResult[model.Favorite]{}, err
	}
	var rows []topicRow
	if err := sqlx.SelectContext(ctx, exec, &rows, exec.Rebind(query), args...); err != nil {
		return repository.PageResult[model.Favorite]{}, repository.MapError(err)
	}
	topics := make(map[int64]model.Topic, len(rows))
	for _, row := range rows {
		topics[row.ID] = row.model()
	}
	for i := range res.Items {
		if id := res.Items[i].InvolvedTopicID; id != nil {
			if t, ok := topics[*id]; ok {
				res.Items[i].Topic = &t
			}
		}
	}
	return res, nil
}

var _ repository.FavoriteRepository = (*favoriteRepository)(nil)

package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/maxviazov/forum-service/internal/model"
	"github.com/maxviazov/forum-service/internal/repository"
)

const nodeSelect = `SELECT
	nd.id AS id, nd.plane_id AS plane_id, nd.name AS name, nd.slug AS slug, nd.thumb AS thumb,
	nd.introduction AS introduction, nd.custom_style AS custom_style,
	nd.limit_reputation AS limit_reputation, nd.topic_count AS topic_count,
	nd.created AS created, nd.updated AS updated,
	pl.name AS plane_name
FROM nodes nd
LEFT JOIN planes pl ON pl.id = nd.plane_id`

type nodeRow struct {
	ID              int64          `db:"id"`
	PlaneID         sql.NullInt64  `db:"plane_id"`
	Name            string         `db:"name"`
	Slug            string         `db:"slug"`
	Thumb           string         `db:"thumb"`
	Introduction    string         `db:"introduction"`
	CustomStyle     string         `db:"custom_style"`
	LimitReputation int            `db:"limit_reputation"`
	TopicCount      int            `db:"topic_count"`
	Created         time.Time      `db:"created"`
	Updated         time.Time      `db:"updated"`
	PlaneName       sql.NullString `db:"plane_name"`
}

func (r nodeRow) model() model.Node {
	n := model.Node{
		ID: r.ID, PlaneID: int64Ptr(r.PlaneID), Name: r.Name, Slug: r.Slug, Thumb: r.Thumb,
		Introduction: r.Introduction, CustomStyle: r.CustomStyle, LimitReputation: r.LimitReputation,
		TopicCount: r.TopicCount, Created: r.Created.UTC(), Updated: r.Updated.UTC(),
	}
	if r.PlaneID.Valid {
		n.Plane = &model.PlaneRef{ID: r.PlaneID.Int64, Name: r.PlaneName.String}
	}
	return n
}

type hotNodeRow struct {
	nodeRow
	ReplyTotal int `db:"reply_total"`
}

type nodeRepository struct{ db *sqlx.DB }

func NewNodeRepository(db *sqlx.DB) repository.NodeRepository {
	return &nodeRepository{db: db}
}

func (r *nodeRepository) Create(ctx context.Context, n model.Node) (model.Node, error) {
	if err := ensureDB(r.db); err != nil {
		return model.Node{}, err
	}
	n.Created = stamp(n.Created)
	if n.Updated.IsZero() {
		n.Updated = n.Created
	}
	exec := getQ(ctx, r.db)
	var id int64
	err := sqlx.GetContext(ctx, exec, &id, exec.Rebind(
		`INSERT INTO nodes (plane_id, name, slug, thumb, introduction, custom_style,
			limit_reputation, topic_count, created, updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`),
		nullInt64(n.PlaneID), n.Name, n.Slug, n.Thumb, n.Introduction, n.CustomStyle,
		n.LimitReputation, n.TopicCount, n.Created, stamp(n.Updated),
	)
	if err != nil {
		return model.Node{}, repository.MapError(err)
	}
	return r.GetByID(ctx, id)
}

func (r *nodeRepository) GetByID(ctx context.Context, id int64) (model.Node, error) {
	return r.getOne(ctx, nodeSelect+` WHERE nd.id = ?`, id)
}

func (r *nodeRepository) GetBySlug(ctx context.Context, slug string) (model.Node, error) {
	return r.getOne(ctx, nodeSelect+` WHERE nd.slug = ?`, slug)
}

func (r *nodeRepository) getOne(ctx context.Context, query string, args ...any) (model.Node, error) {
	if err := ensureDB(r.db); err != nil {
		return model.Node{}, err
	}
	exec := getQ(ctx, r.db)
	var row nodeRow
	if err := sqlx.GetContext(ctx, exec, &row, exec.Rebind(query), args...); err != nil {
		return model.Node{}, repository.MapError(err)
	}
	return row.model(), nil
}

func (r *nodeRepository) ListByPlane(ctx context.Context, planeID int64) ([]model.Node, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.db)
	var rows []nodeRow
	if err := sqlx.SelectContext(ctx, exec, &rows, exec.Rebind(
		nodeSelect+` WHERE nd.plane_id = ? ORDER BY nd.id`), planeID); err != nil {
		return nil, repository.MapError(err)
	}
	out := make([]model.Node, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.model())
	}
	return out, nil
}

// ListHot ranks nodes by ReplyTotal, the sum of reply_count over the node's topics,
// then by node id. Aggregating per node before the join keeps exactly one row per node,
// and topics without replies never qualify a node.
func (r *nodeRepository) ListHot(ctx context.Context, limit int) ([]model.HotNode, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, repository.ErrInvalidArgument
	}
	exec := getQ(ctx, r.db)
	var rows []hotNodeRow
	err := sqlx.SelectContext(ctx, exec, &rows, exec.Rebind(`SELECT
			nd.id AS id, nd.plane_id AS plane_id, nd.name AS name, nd.slug AS slug, nd.thumb AS thumb,
			nd.introduction AS introduction, nd.custom_style AS custom_style,
			nd.limit_reputation AS limit_reputation, nd.topic_count AS topic_count,
			nd.created AS created, nd.updated AS updated,
			pl.name AS plane_name,
			hot.reply_total AS reply_total
		FROM nodes nd
		JOIN (
			SELECT node_id, SUM(reply_count) AS reply_total
			FROM topics
			WHERE reply_count > 0
			GROUP BY node_id
		) hot ON hot.node_id = nd.id
		LEFT JOIN planes pl ON pl.id = nd.plane_id
		ORDER BY hot.reply_total DESC, nd.id ASC
		LIMIT ?`), limit)
	if err != nil {
		return nil, repository.MapError(err)
	}
	out := make([]model.HotNode, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.HotNode{Node: row.nodeRow.model(), ReplyTotal: row.ReplyTotal})
	}
	return out, nil
}

func (r *nodeRepository) IncrementTopicCount(ctx context.Context, id int64) error {
	if err := ensureDB(r.db); err != nil {
		return err
	}
	exec := getQ(ctx, r.db)
	res, err := exec.ExecContext(ctx, exec.Rebind(
		`UPDATE nodes SET topic_count = topic_count + 1, updated = ? WHERE id = ?`), now(), id)
	if err != nil {
		return repository.MapError(err)
	}
	return requireAffected(res)
}

var _ repository.NodeRepository = (*nodeRepository)(nil)

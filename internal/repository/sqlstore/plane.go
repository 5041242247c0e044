package sqlstore

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/maxviazov/forum-service/internal/model"
	"github.com/maxviazov/forum-service/internal/repository"
)

type planeRow struct {
	ID      int64     `db:"id"`
	Name    string    `db:"name"`
	Created time.Time `db:"created"`
	Updated time.Time `db:"updated"`
}

func (r planeRow) model() model.Plane {
	return model.Plane{ID: r.ID, Name: r.Name, Created: r.Created.UTC(), Updated: r.Updated.UTC()}
}

type planeRepository struct{ db *sqlx.DB }

func NewPlaneRepository(db *sqlx.DB) repository.PlaneRepository {
	return &planeRepository{db: db}
}

func (r *planeRepository) Create(ctx context.Context, p model.Plane) (model.Plane, error) {
	if err := ensureDB(r.db); err != nil {
		return model.Plane{}, err
	}
	p.Created = stamp(p.Created)
	if p.Updated.IsZero() {
		p.Updated = p.Created
	}
	exec := getQ(ctx, r.db)
	var id int64
	err := sqlx.GetContext(ctx, exec, &id, exec.Rebind(
		`INSERT INTO planes (name, created, updated) VALUES (?, ?, ?) RETURNING id`),
		p.Name, p.Created, stamp(p.Updated),
	)
	if err != nil {
		return model.Plane{}, repository.MapError(err)
	}
	return r.GetByID(ctx, id)
}

func (r *planeRepository) GetByID(ctx context.Context, id int64) (model.Plane, error) {
	if err := ensureDB(r.db); err != nil {
		return model.Plane{}, err
	}
	exec := getQ(ctx, r.db)
	var row planeRow
	if err := sqlx.GetContext(ctx, exec, &row, exec.Rebind(
		`SELECT id, name, created, updated FROM planes WHERE id = ?`), id); err != nil {
		return model.Plane{}, repository.MapError(err)
	}
	return row.model(), nil
}

func (r *planeRepository) List(ctx context.Context) ([]model.Plane, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.db)
	var rows []planeRow
	if err := sqlx.SelectContext(ctx, exec, &rows,
		`SELECT id, name, created, updated FROM planes ORDER BY id`); err != nil {
		return nil, repository.MapError(err)
	}
	out := make([]model.Plane, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.model())
	}
	return out, nil
}

// ListWithNodes loads planes and all their nodes in two queries and stitches them in memory.
func (r *planeRepository) ListWithNodes(ctx context.Context) ([]model.Plane, error) {
	planes, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.db)
	var rows []nodeRow
	if err := sqlx.SelectContext(ctx, exec, &rows,
		nodeSelect+`
		WHERE nd.plane_id IS NOT NULL
		ORDER BY nd.plane_id, nd.id`); err != nil {
		return nil, repository.MapError(err)
	}
	byPlane := make(map[int64][]model.Node, len(planes))
	for _, row := range rows {
		n := row.model()
		byPlane[*n.PlaneID] = append(byPlane[*n.PlaneID], n)
	}
	for i := range planes {
		planes[i].Nodes = byPlane[planes[i].ID]
	}
	return planes, nil
}

var _ repository.PlaneRepository = (*planeRepository)(nil)

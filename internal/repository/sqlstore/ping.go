package sqlstore

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/maxviazov/forum-service/internal/repository"
)

type pinger struct{ db *sqlx.DB }

// NewPinger adapts the shared handle to the repository.Pinger interface.
func NewPinger(db *sqlx.DB) repository.Pinger { return &pinger{db: db} }

func (p *pinger) Ping(ctx context.Context) error {
	if err := ensureDB(p.db); err != nil {
		return err
	}
	return p.db.PingContext(ctx)
}

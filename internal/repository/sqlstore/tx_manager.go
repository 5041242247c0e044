// Package sqlstore implements the repository contracts with plain SQL over sqlx.
// Queries are written with '?' placeholders and rebound per driver, so the same
// code serves Postgres (pgx) and SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/maxviazov/forum-service/internal/repository"
)

// q is a minimal query executor implemented by both *sqlx.DB and *sqlx.Tx.
type q interface {
	sqlx.ExtContext
}

type txKey struct{}

func withTx(ctx context.Context, tx *sqlx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// getQ returns the transaction riding in ctx, or the shared handle.
func getQ(ctx context.Context, db *sqlx.DB) q {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok && tx != nil {
		return tx
	}
	return db
}

type txManager struct{ db *sqlx.DB }

func NewTxManager(db *sqlx.DB) repository.TxManager { return &txManager{db: db} }

// WithinTx runs fn in a transaction. A transaction already in ctx is reused,
// so services can compose without opening nested ones.
func (m *txManager) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	if err := ensureDB(m.db); err != nil {
		return err
	}
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok && tx != nil {
		return fn(ctx)
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return repository.MapError(err)
	}
	defer func() {
		// no-op after commit
		_ = tx.Rollback()
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		return repository.MapError(err)
	}
	if err := tx.Commit(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return repository.MapError(err)
	}
	return nil
}

var _ repository.TxManager = (*txManager)(nil)

// helper to assert we didn't accidentally nil the handle
func ensureDB(db *sqlx.DB) error {
	if db == nil {
		return errors.New("sql handle is nil")
	}
	return nil
}

// listPage is the shape every paged accessor shares: count the filtered rows,
// cut the page range, then fetch exactly that range. An empty range never
// reaches the database a second time.
func listPage[R any, T any](
	ctx context.Context,
	exec q,
	p repository.Page,
	countSQL string,
	selectSQL string,
	args []any,
	convert func(R) T,
) (repository.PageResult[T], error) {
	if err := p.Validate(); err != nil {
		return repository.PageResult[T]{}, err
	}

	var total int
	if err := sqlx.GetContext(ctx, exec, &total, exec.Rebind(countSQL), args...); err != nil {
		return repository.PageResult[T]{}, repository.MapError(err)
	}
	d, err := repository.ComputePage(total, p.Number, p.Size)
	if err != nil {
		return repository.PageResult[T]{}, err
	}
	if d.Empty() {
		return repository.EmptyResult[T](d), nil
	}

	var rows []R
	rowArgs := append(append(make([]any, 0, len(args)+2), args...), d.Limit(), d.Offset())
	if err := sqlx.SelectContext(ctx, exec, &rows, exec.Rebind(selectSQL+"\nLIMIT ? OFFSET ?"), rowArgs...); err != nil {
		return repository.PageResult[T]{}, repository.MapError(err)
	}
	res := repository.PageResult[T]{Items: make([]T, 0, len(rows)), Page: d}
	for _, r := range rows {
		res.Items = append(res.Items, convert(r))
	}
	return res, nil
}

package service_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/maxviazov/forum-service/internal/repository"
	"github.com/maxviazov/forum-service/internal/repository/sqlstore"
	"github.com/maxviazov/forum-service/internal/service"
)

var discard = zerolog.New(io.Discard)

// upperRenderer stands in for markdown rendering so tests can see it ran.
type upperRenderer struct{}

func (upperRenderer) Render(md string) string { return "<p>" + md + "</p>" }

// newStoreDeps wires every service dependency to a fresh in-memory SQLite store.
func newStoreDeps(t *testing.T) service.Deps {
	t.Helper()
	ctx := context.Background()
	store, err := repository.NewSQLite(ctx, ":memory:", nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	r := sqlstore.NewRepositories(store.DB())
	return service.Deps{
		Tx: r.Tx, Users: r.Users, Planes: r.Planes, Nodes: r.Nodes, Topics: r.Topics,
		Replies: r.Replies, Favorites: r.Favorites, Notifications: r.Notifications,
		Transactions: r.Transactions, Votes: r.Votes, Renderer: upperRenderer{},
	}
}

func serviceErrIsInvalid(err error) bool {
	return errors.Is(err, service.ErrInvalidInput)
}

func hasField(err error, field string) bool {
	for _, f := range service.FieldErrors(err) {
		if f.Field == field {
			return true
		}
	}
	return false
}

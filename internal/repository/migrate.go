package repository

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/maxviazov/forum-service/migrations"
	"github.com/pressly/goose/v3"
)

// Migrate applies every pending embedded migration for the store's dialect.
func (s *Store) Migrate(ctx context.Context) error {
	dialect := goose.DialectPostgres
	if s.dialect == DialectSQLite {
		dialect = goose.DialectSQLite3
	}
	fsys, err := fs.Sub(migrations.FS, s.dialect)
	if err != nil {
		return fmt.Errorf("failed to open migrations for %s: %w", s.dialect, err)
	}
	provider, err := goose.NewProvider(dialect, s.db.DB, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	for _, r := range results {
		s.log.Info().
			Int64("version", r.Source.Version).
			Str("file", r.Source.Path).
			Dur("took", r.Duration).
			Msg("migration applied")
	}
	return nil
}

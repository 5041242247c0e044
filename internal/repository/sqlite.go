package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// sqlitePragmas are applied on every new connection.
var sqlitePragmas = []string{
	"_pragma=foreign_keys(1)",
	"_pragma=busy_timeout(5000)",
	"_pragma=journal_mode(WAL)",
}

// NewSQLite opens an embedded SQLite store. path may be ":memory:".
func NewSQLite(ctx context.Context, path string, logger *zerolog.Logger) (*Store, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	db, err := sqlx.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// SQLite serializes writers; one connection also keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}

	logger.Info().Str("path", path).Msg("Opened SQLite database")
	return &Store{db: db, dialect: DialectSQLite, log: logger.With().Str("component", "store").Logger()}, nil
}

func sqliteDSN(path string) string {
	params := strings.Join(sqlitePragmas, "&")
	if path == ":memory:" {
		// WAL is meaningless in memory and rejected by some builds.
		params = strings.Join(sqlitePragmas[:2], "&")
	}
	return "file:" + path + "?" + params
}

// Package migrations embeds the goose SQL migrations for every supported dialect.
package migrations

import "embed"

// FS holds postgres/*.sql and sqlite/*.sql; each directory is a complete, ordered history.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

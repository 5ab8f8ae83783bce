// Package migrations embeds the goose SQL migrations of the SQL-backed
// key-value media. Each dialect lives in its own directory.
package migrations

import "embed"

const (
	SQLiteDir   = "sqlite"
	PostgresDir = "postgres"
)

//go:embed sqlite/*.sql postgres/*.sql
var Migrations embed.FS

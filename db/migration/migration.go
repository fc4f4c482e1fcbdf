// Package migration embeds the database schema migrations.
package migration

import "embed"

// FS holds the ordered *.up.sql / *.down.sql migration files.
//
//go:embed *.sql
var FS embed.FS

// Package migrations embeds the SQL schema migrations for the sqlite knowledge store.
package migrations

import "embed"

// FS holds the embedded SQL migration files.
//
//go:embed *.sql
var FS embed.FS

// Package migrations embeds the SQL schema files applied at startup when the
// Postgres session backend is selected.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

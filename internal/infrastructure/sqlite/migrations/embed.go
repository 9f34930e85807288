// Package migrations embeds the SQLite schema used by the embedded store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

package migrations

import "embed"

// FS contains embedded SQLite migrations for spaces storage.
//
//go:embed *.sql
var FS embed.FS

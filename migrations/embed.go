// Package migrations holds the SQLite schema
package migrations

import "embed"

// FS contains the numbered migration files
//
//go:embed *.sql
var FS embed.FS

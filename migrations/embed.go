// Package migrations provides the embedded SQL migration files.
package migrations

import "embed"

// FS contains every *.up.sql and *.down.sql file for the proverbs schema.
//
//go:embed *.sql
var FS embed.FS

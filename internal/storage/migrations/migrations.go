// Package migrations embeds the goose migrations for every SQL backend.
package migrations

import "embed"

// Migrations holds one directory per goose dialect.
//
//go:embed sqlite/*.sql postgres/*.sql
var Migrations embed.FS

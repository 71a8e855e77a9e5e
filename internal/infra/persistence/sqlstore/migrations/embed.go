// Package migrations embeds the versioned schema for each SQL dialect.
package migrations

import "embed"

// FS holds one directory of golang-migrate files per dialect.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS

// Package migrations holds the schema of the repair history database.
// Files are applied in name order; NNN_name.up.sql creates, NNN_name.down.sql reverts.
package migrations

import "embed"

// FS holds every migration script.
//
//go:embed *.sql
var FS embed.FS

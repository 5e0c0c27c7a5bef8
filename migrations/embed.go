// Package migrations embeds the SQL schema migrations for each supported
// database, one sub-directory per dialect.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS

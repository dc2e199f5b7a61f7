// Package migrations embeds the goose SQL migrations so binaries can apply
// the schema without shipping loose files. Pass FS to postgres.MigrateFS.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

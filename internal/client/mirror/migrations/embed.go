// Package migrations embeds the mirror's goose migration scripts.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

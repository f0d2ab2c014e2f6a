// Package db embeds the goose SQL migrations shipped with the binary.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS

// Package db carries the schema migrations so the binaries do not depend on
// a migrations directory at runtime.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS

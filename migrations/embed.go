// Package migrations embeds the SQL schema for each supported database.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Dir returns the migration directory for a database driver ("postgres" or "sqlite").
func Dir(driver string) (fs.FS, error) {
	return fs.Sub(FS, driver)
}

// Package assets bundles the files the server ships inside its binary:
// the default dictionary and the SQL migrations.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed words.txt
var Words string

//go:embed sql/*.sql
var migrations embed.FS

// Migrations returns the migration scripts rooted at the sql directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "sql")
	if err != nil {
		// sql/ is part of the embed pattern, so Sub cannot fail.
		panic(err)
	}
	return sub
}

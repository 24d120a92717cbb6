package migrate

import (
	"embed"
	"io/fs"
	"os"
)

// DefaultDir is where new migrations are written on disk; the same files are
// embedded into the binary.
const DefaultDir = "pkg/migrate/migrations"

const embeddedDir = "migrations"

//go:embed migrations/*.sql
var embedded embed.FS

// Source locates a set of goose SQL migrations.
type Source struct {
	FS  fs.FS
	Dir string
}

// Embedded returns the migrations compiled into the binary.
func Embedded() Source {
	return Source{FS: embedded, Dir: embeddedDir}
}

// FromDisk reads migrations from a directory relative to the working directory.
func FromDisk(dir string) Source {
	return Source{FS: os.DirFS("."), Dir: dir}
}

package model

import (
	"io/fs"
	"time"
)

// Path represents a file system path.
type Path string

// SourceStats is the stat snapshot of a source file captured when a mutant is
// synthesized. The cache layer uses it for timestamp invalidation so the
// toolchain accepts the swapped artifact as up to date.
type SourceStats struct {
	MTime time.Time `yaml:"mtime"`
	Size  int64     `yaml:"size"`
}

// FileMode is the mode of the original source file, carried onto the artifact.
type FileMode = fs.FileMode

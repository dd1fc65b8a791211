package domain

import (
	"path/filepath"
	"time"
)

const (
	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "kiln.yaml"

	// StateDirName is the name of the internal state directory.
	// It is never watched and never part of the output tree.
	StateDirName = ".kiln"

	// DefaultOutputRoot is the output root used when the configuration names none.
	DefaultOutputRoot = "dist"

	// CategoryBin holds the compiled server binary.
	CategoryBin = "bin"

	// CategoryWWW holds the bundled frontend.
	CategoryWWW = "www"

	// DefaultDebounce is the watch debounce window.
	DefaultDebounce = 300 * time.Millisecond

	// DefaultPort is the port handed to the run step when none is configured.
	DefaultPort = 8080

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// Environment variables read by the CLI.
const (
	EnvMode   = "KILN_MODE"
	EnvOutput = "KILN_OUTPUT"
)

// Environment variables exported to every action.
const (
	EnvActionMode = "KILN_MODE"
	EnvActionOut  = "KILN_OUT"
	EnvActionRoot = "KILN_ROOT"
)

// DefaultCategories returns the fixed category directories of the output tree.
func DefaultCategories() []string {
	return []string{CategoryBin, CategoryWWW}
}

// OutputTree is the directory hierarchy receiving build artifacts.
type OutputTree struct {
	// Root is the absolute output root.
	Root string
	// Categories are subdirectories of Root created on prepare.
	Categories []string
}

// Dirs returns the root followed by every category directory.
func (o OutputTree) Dirs() []string {
	dirs := make([]string, 0, len(o.Categories)+1)
	dirs = append(dirs, o.Root)
	for _, c := range o.Categories {
		dirs = append(dirs, filepath.Join(o.Root, c))
	}
	return dirs
}

// Category returns the absolute path of a category directory.
func (o OutputTree) Category(name string) string {
	return filepath.Join(o.Root, name)
}

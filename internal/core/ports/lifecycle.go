package ports

import "go.trai.ch/kiln/internal/core/domain"

// DirectoryLifecycle owns the output tree on disk.
//
//go:generate mockgen -source=lifecycle.go -destination=mocks/mock_lifecycle.go -package=mocks
type DirectoryLifecycle interface {
	// Prepare creates the output root and its categories.
	// With clean set, an existing root is removed first.
	Prepare(clean bool) error
	// EnsureDirs creates the given directories if missing.
	EnsureDirs(dirs ...string) error
	// Remove deletes the output root.
	Remove() error
}

// DirectoryLifecycleFactory binds a DirectoryLifecycle to a project's output tree.
type DirectoryLifecycleFactory interface {
	ForTree(projectRoot string, tree domain.OutputTree) DirectoryLifecycle
}

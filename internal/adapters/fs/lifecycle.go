package fs

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.DirectoryLifecycle        = (*OutputTree)(nil)
	_ ports.DirectoryLifecycleFactory = (*OutputTreeFactory)(nil)
)

// OutputTree creates, cleans and removes a project's output directories.
// Prepare and Remove hold the write lock; EnsureDirs runs under the read
// lock so targets of one wave can create their directories concurrently.
type OutputTree struct {
	projectRoot string
	tree        domain.OutputTree
	mu          *sync.RWMutex
}

// NewOutputTree binds a lifecycle to an output tree.
func NewOutputTree(projectRoot string, tree domain.OutputTree) *OutputTree {
	return &OutputTree{
		projectRoot: projectRoot,
		tree:        tree,
		mu:          &sync.RWMutex{},
	}
}

// Prepare creates the root and category directories. With clean set, an
// existing root is removed first.
func (o *OutputTree) Prepare(clean bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.checkRoot(); err != nil {
		return err
	}

	if clean {
		if err := os.RemoveAll(o.tree.Root); err != nil {
			return ioError(err, o.tree.Root)
		}
	}

	for _, dir := range o.tree.Dirs() {
		if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
			return ioError(err, dir)
		}
	}
	return nil
}

// EnsureDirs creates each directory that does not exist yet.
func (o *OutputTree) EnsureDirs(dirs ...string) error {
	o.mu.RLock()
	defer o.mu.RUnlock()

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
			return ioError(err, dir)
		}
	}
	return nil
}

// Remove deletes the output root and everything below it.
func (o *OutputTree) Remove() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.checkRoot(); err != nil {
		return err
	}
	if err := os.RemoveAll(o.tree.Root); err != nil {
		return ioError(err, o.tree.Root)
	}
	return nil
}

// checkRoot refuses roots that would take the project with them.
func (o *OutputTree) checkRoot() error {
	root, err := filepath.Abs(o.tree.Root)
	if err != nil {
		return ioError(err, o.tree.Root)
	}
	project, err := filepath.Abs(o.projectRoot)
	if err != nil {
		return ioError(err, o.projectRoot)
	}

	unsafe := func(reason string) error {
		return zerr.With(zerr.With(zerr.Wrap(domain.ErrOutputRootUnsafe, reason), "path", root), "project", project)
	}

	if root == filepath.Dir(root) {
		return unsafe("output root is a filesystem root")
	}
	if root == project {
		return unsafe("output root is the project root")
	}
	rel, err := filepath.Rel(project, root)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return unsafe("output root is outside the project")
	}
	return nil
}

func ioError(err error, path string) error {
	return zerr.With(zerr.Wrap(domain.ErrOutputTreePrepareFailed, err.Error()), "path", path)
}

// OutputTreeFactory hands out lifecycles that share one lock per output root.
type OutputTreeFactory struct {
	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

// NewOutputTreeFactory creates a new OutputTreeFactory.
func NewOutputTreeFactory() *OutputTreeFactory {
	return &OutputTreeFactory{locks: make(map[string]*sync.RWMutex)}
}

// ForTree returns the lifecycle of tree.
func (f *OutputTreeFactory) ForTree(projectRoot string, tree domain.OutputTree) ports.DirectoryLifecycle {
	f.mu.Lock()
	defer f.mu.Unlock()

	lock, ok := f.locks[tree.Root]
	if !ok {
		lock = &sync.RWMutex{}
		f.locks[tree.Root] = lock
	}
	return &OutputTree{projectRoot: projectRoot, tree: tree, mu: lock}
}

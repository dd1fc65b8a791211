package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/core/ports"
)

const (
	// WalkerNodeID is the unique identifier for the walker Graft node.
	WalkerNodeID graft.ID = "adapter.fs.walker"
	// ResolverNodeID is the unique identifier for the resolver Graft node.
	ResolverNodeID graft.ID = "adapter.fs.resolver"
	// StalenessNodeID is the unique identifier for the staleness checker Graft node.
	StalenessNodeID graft.ID = "adapter.fs.staleness"
	// LifecycleNodeID is the unique identifier for the output tree factory Graft node.
	LifecycleNodeID graft.ID = "adapter.fs.lifecycle"
)

func init() {
	graft.Register(graft.Node[*Walker]{
		ID:        WalkerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Walker, error) {
			return NewWalker(), nil
		},
	})

	graft.Register(graft.Node[*Resolver]{
		ID:        ResolverNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Resolver, error) {
			return NewResolver(), nil
		},
	})

	graft.Register(graft.Node[ports.StalenessChecker]{
		ID:        StalenessNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{ResolverNodeID, WalkerNodeID},
		Run: func(ctx context.Context) (ports.StalenessChecker, error) {
			resolver, err := graft.Dep[*Resolver](ctx)
			if err != nil {
				return nil, err
			}
			walker, err := graft.Dep[*Walker](ctx)
			if err != nil {
				return nil, err
			}
			return NewStalenessChecker(resolver, walker), nil
		},
	})

	graft.Register(graft.Node[ports.DirectoryLifecycleFactory]{
		ID:        LifecycleNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.DirectoryLifecycleFactory, error) {
			return NewOutputTreeFactory(), nil
		},
	})
}

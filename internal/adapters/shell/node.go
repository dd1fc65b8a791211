package shell

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/core/ports"
)

// NodeID is the unique identifier for the action runner Graft node.
const NodeID graft.ID = "adapter.action_runner"

func init() {
	graft.Register(graft.Node[ports.ActionRunner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{},
		Run: func(_ context.Context) (ports.ActionRunner, error) {
			return NewRunner(), nil
		},
	})
}

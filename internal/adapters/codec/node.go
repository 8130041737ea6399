package codec

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/tusk/internal/core/ports"
)

// NodeID is the unique identifier for the codec Graft node.
const NodeID graft.ID = "adapter.codec"

func init() {
	graft.Register(graft.Node[ports.CodecSet]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.CodecSet, error) {
			return NewSet()
		},
	})
}

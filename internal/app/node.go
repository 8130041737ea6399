package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/tusk/internal/adapters/codec"     //nolint:depguard // Wired in app layer
	"go.trai.ch/tusk/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/tusk/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/tusk/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/tusk/internal/adapters/parser"    //nolint:depguard // Wired in app layer
	"go.trai.ch/tusk/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/tusk/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/tusk/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			parser.NodeID,
			codec.NodeID,
			fs.HasherNodeID,
			fs.MapperNodeID,
			fs.WriterNodeID,
			fs.ResolverNodeID,
			watcher.NodeID,
			telemetry.TracerNodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	p, err := graft.Dep[ports.Parser](ctx)
	if err != nil {
		return nil, err
	}
	codecs, err := graft.Dep[ports.CodecSet](ctx)
	if err != nil {
		return nil, err
	}
	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}
	mapper, err := graft.Dep[ports.FileMapper](ctx)
	if err != nil {
		return nil, err
	}
	writer, err := graft.Dep[ports.ArtifactWriter](ctx)
	if err != nil {
		return nil, err
	}
	finder, err := graft.Dep[ports.SourceFinder](ctx)
	if err != nil {
		return nil, err
	}
	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}
	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}
	return New(loader, log, p, codecs, hasher, mapper, writer, finder, w, tracer), nil
}

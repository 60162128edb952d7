package app

import (
	"context"

	"github.com/grindlemire/graft"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/percolate/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/percolate/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/percolate/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/percolate/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/percolate/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/percolate/internal/core/ports"
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
			fs.HasherNodeID,
			fs.WalkerNodeID,
			watcher.NodeID,
			telemetry.ProviderNodeID,
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
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewComponents(app, log), nil
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

	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}

	walker, err := graft.Dep[*fs.Walker](ctx)
	if err != nil {
		return nil, err
	}

	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	provider, err := graft.Dep[*sdktrace.TracerProvider](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, log, hasher, walker, w, provider), nil
}

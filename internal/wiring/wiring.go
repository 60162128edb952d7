// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/percolate/internal/adapters/config"
	_ "go.trai.ch/percolate/internal/adapters/fs"
	_ "go.trai.ch/percolate/internal/adapters/logger"
	_ "go.trai.ch/percolate/internal/adapters/telemetry"
	_ "go.trai.ch/percolate/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/percolate/internal/app"
)

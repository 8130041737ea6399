// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/tusk/internal/adapters/codec"
	_ "go.trai.ch/tusk/internal/adapters/config"
	_ "go.trai.ch/tusk/internal/adapters/fs"
	_ "go.trai.ch/tusk/internal/adapters/logger"
	_ "go.trai.ch/tusk/internal/adapters/parser"
	_ "go.trai.ch/tusk/internal/adapters/telemetry"
	_ "go.trai.ch/tusk/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/tusk/internal/app"
)

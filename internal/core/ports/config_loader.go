package ports

import "go.trai.ch/tusk/internal/core/domain"

// ConfigLoader resolves the tool options for a working directory.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load discovers tusk.yaml from cwd upwards and overlays the environment.
	Load(cwd string) (domain.Options, error)
}

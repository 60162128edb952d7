package ports

import "go.trai.ch/percolate/internal/core/domain"

// ConfigLoader defines the interface for loading cache settings.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration file at path and returns the resolved settings.
	// A missing file yields defaults rooted at the file's directory.
	Load(path string) (*domain.Settings, error)
}

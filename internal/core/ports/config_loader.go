package ports

import "go.trai.ch/kiln/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the project configuration.
	// path is either the configuration file itself or a directory from which
	// the file is discovered by walking up.
	Load(path string) (*domain.Project, error)

	// DiscoverRoot walks up from cwd to the directory containing kiln.yaml.
	DiscoverRoot(cwd string) (string, error)
}

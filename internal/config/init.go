package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

const defaultConfigurationTemplate = `tree:
  all: false
  depth: 10
  sort: false
  format: raw
  copy: false
  skip_unreadable: false
`

// InitOptions controls where the default configuration is written.
type InitOptions struct {
	FileSystem    afero.Fs
	HomeDirectory string
	Force         bool
}

// InitializeConfiguration writes the default configuration into the global
// configuration directory and returns its path.
func InitializeConfiguration(options InitOptions) (string, error) {
	fileSystem := options.FileSystem
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	if options.HomeDirectory == "" {
		return "", fmt.Errorf("resolve home directory for configuration: home directory is unknown")
	}

	configurationDirectory := filepath.Join(options.HomeDirectory, GlobalConfigDirectoryName)
	if err := fileSystem.MkdirAll(configurationDirectory, 0o755); err != nil {
		return "", fmt.Errorf("create configuration directory %s: %w", configurationDirectory, err)
	}
	destinationPath := filepath.Join(configurationDirectory, ConfigFileName)

	if _, err := fileSystem.Stat(destinationPath); err == nil {
		if !options.Force {
			return "", fmt.Errorf("configuration file already exists at %s", destinationPath)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("inspect configuration path %s: %w", destinationPath, err)
	}

	if err := afero.WriteFile(fileSystem, destinationPath, []byte(defaultConfigurationTemplate), 0o600); err != nil {
		return "", fmt.Errorf("write configuration to %s: %w", destinationPath, err)
	}
	return destinationPath, nil
}

// Package config loads tree defaults from configuration files and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "config.yaml"
	// GlobalConfigDirectoryName is the directory under the home directory holding the global file.
	GlobalConfigDirectoryName = ".tree"

	keyIncludeHidden  = "tree.all"
	keyMaxDepth       = "tree.depth"
	keySortEntries    = "tree.sort"
	keyFormat         = "tree.format"
	keyCopy           = "tree.copy"
	keySkipUnreadable = "tree.skip_unreadable"
)

var environmentBindings = map[string]string{
	keyIncludeHidden:  "TREE_ALL",
	keyMaxDepth:       "TREE_DEPTH",
	keySortEntries:    "TREE_SORT",
	keyFormat:         "TREE_FORMAT",
	keyCopy:           "TREE_COPY",
	keySkipUnreadable: "TREE_SKIP_UNREADABLE",
}

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	FileSystem       afero.Fs
	HomeDirectory    string
	ExplicitFilePath string
	WorkingDirectory string
}

// ApplicationConfiguration holds command defaults.
type ApplicationConfiguration struct {
	Tree TreeConfiguration `mapstructure:"tree"`
}

// TreeConfiguration defines the defaults of the tree command. Nil fields are unset.
type TreeConfiguration struct {
	IncludeHidden  *bool  `mapstructure:"all"`
	MaxDepth       *int   `mapstructure:"depth"`
	SortEntries    *bool  `mapstructure:"sort"`
	Format         string `mapstructure:"format"`
	Copy           *bool  `mapstructure:"copy"`
	SkipUnreadable *bool  `mapstructure:"skip_unreadable"`
}

// LoadApplicationConfiguration merges the global file, the explicit file and
// the environment, later sources overriding earlier ones.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	fileSystem := options.FileSystem
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}

	var merged ApplicationConfiguration

	if options.HomeDirectory != "" {
		globalPath := filepath.Join(options.HomeDirectory, GlobalConfigDirectoryName, ConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(fileSystem, globalPath, false)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	if options.ExplicitFilePath != "" {
		explicitPath := resolveExplicitPath(options.WorkingDirectory, options.ExplicitFilePath)
		explicitConfig, loadErr := loadConfigurationFromPath(fileSystem, explicitPath, true)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(explicitConfig)
	}

	environmentConfig, environmentErr := loadEnvironmentConfiguration()
	if environmentErr != nil {
		return ApplicationConfiguration{}, environmentErr
	}
	return merged.Merge(environmentConfig), nil
}

func resolveExplicitPath(workingDirectory, explicitPath string) string {
	if filepath.IsAbs(explicitPath) || workingDirectory == "" {
		return explicitPath
	}
	return filepath.Join(workingDirectory, explicitPath)
}

func loadConfigurationFromPath(fileSystem afero.Fs, path string, required bool) (ApplicationConfiguration, error) {
	info, statErr := fileSystem.Stat(path)
	if statErr != nil {
		if errors.Is(statErr, fs.ErrNotExist) && !required {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetFs(fileSystem)
	reader.SetConfigFile(path)
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var configuration ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&configuration); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return configuration, nil
}

func loadEnvironmentConfiguration() (ApplicationConfiguration, error) {
	reader := viper.New()
	for key, variable := range environmentBindings {
		if bindErr := reader.BindEnv(key, variable); bindErr != nil {
			return ApplicationConfiguration{}, fmt.Errorf("bind environment variable %s: %w", variable, bindErr)
		}
	}
	var configuration ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&configuration); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode environment configuration: %w", decodeErr)
	}
	return configuration, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (configuration ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := configuration
	result.Tree = result.Tree.merge(override.Tree)
	return result
}

func (configuration TreeConfiguration) merge(override TreeConfiguration) TreeConfiguration {
	result := configuration
	if override.IncludeHidden != nil {
		result.IncludeHidden = cloneBool(override.IncludeHidden)
	}
	if override.MaxDepth != nil {
		result.MaxDepth = cloneInt(override.MaxDepth)
	}
	if override.SortEntries != nil {
		result.SortEntries = cloneBool(override.SortEntries)
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Copy != nil {
		result.Copy = cloneBool(override.Copy)
	}
	if override.SkipUnreadable != nil {
		result.SkipUnreadable = cloneBool(override.SkipUnreadable)
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

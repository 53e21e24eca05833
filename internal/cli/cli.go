// Package cli provides the command line interface.
package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/tree/internal/config"
	"github.com/temirov/tree/internal/output"
	"github.com/temirov/tree/internal/services/clipboard"
	"github.com/temirov/tree/internal/tree"
	"github.com/temirov/tree/internal/types"
	"github.com/temirov/tree/internal/utils"
)

const (
	allFlagName            = "all"
	allFlagShorthand       = "a"
	depthFlagName          = "depth"
	sortFlagName           = "sort"
	skipUnreadableFlagName = "skip-unreadable"
	formatFlagName         = "format"
	copyFlagName           = "copy"
	configFlagName         = "config"
	versionFlagName        = "version"
	initConfigFlagName     = "init-config"
	forceFlagName          = "force"

	allFlagDescription            = "include entries whose name starts with a dot"
	depthFlagDescription          = "deepest directory level to list"
	sortFlagDescription           = "sort entries by name instead of listing order"
	skipUnreadableFlagDescription = "label unreadable directories as skipped instead of stopping"
	formatFlagDescription         = "output format (raw, json, xml)"
	copyFlagDescription           = "copy the rendered tree to the clipboard"
	configFlagDescription         = "path to a configuration file"
	versionFlagDescription        = "display application version"
	initConfigFlagDescription     = "write the default configuration to ~/.tree/config.yaml and exit"
	forceFlagDescription          = "overwrite an existing configuration with --init-config"

	rootUse              = "tree [DIR]"
	rootShortDescription = "render a directory as a tree"
	rootLongDescription  = `tree prints a directory and its subdirectories as a tree.
Without DIR the working directory is rendered. Entries starting with a dot are
hidden unless -a/--all is given.`
	rootUsageExample = `  # Render the working directory
  tree

  # Render ./cmd including hidden entries
  tree cmd --all

  # Two levels as JSON
  tree --depth 1 --format json .`

	usageMessage                = "usage: tree || tree <DIR> [-a | --all]"
	versionTemplate             = "tree version: %s\n"
	configurationWrittenFormat  = "configuration written to %s\n"
	invalidFormatMessage        = "invalid format value '%s'"
	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	renderTreeErrorFormat       = "rendering %s: %w"
	warningCopyFailed           = "Warning: unable to copy tree to clipboard"
	debugRenderingTree          = "rendering tree"
)

// ErrUsage reports an argument combination the command does not accept.
var ErrUsage = errors.New(usageMessage)

// Environment carries the process-level dependencies of the command.
// Zero fields are filled from the operating system.
type Environment struct {
	Stdout           io.Writer
	Stderr           io.Writer
	FileSystem       afero.Fs
	Logger           *zap.Logger
	Copier           clipboard.Copier
	WorkingDirectory string
	HomeDirectory    string
}

func (environment Environment) withDefaults() (Environment, error) {
	if environment.Stdout == nil {
		environment.Stdout = os.Stdout
	}
	if environment.Stderr == nil {
		environment.Stderr = os.Stderr
	}
	if environment.FileSystem == nil {
		environment.FileSystem = afero.NewOsFs()
	}
	if environment.Logger == nil {
		environment.Logger = zap.NewNop()
	}
	if environment.Copier == nil {
		environment.Copier = clipboard.NewService()
	}
	if environment.WorkingDirectory == "" {
		workingDirectory, workingDirectoryErr := os.Getwd()
		if workingDirectoryErr != nil {
			return Environment{}, fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryErr)
		}
		environment.WorkingDirectory = workingDirectory
	}
	if environment.HomeDirectory == "" {
		if homeDirectory, homeErr := os.UserHomeDir(); homeErr == nil {
			environment.HomeDirectory = homeDirectory
		}
	}
	return environment, nil
}

// Execute runs the tree application with the process arguments.
func Execute(logger *zap.Logger) error {
	return ExecuteWithArguments(Environment{Logger: logger}, os.Args[1:])
}

// ExecuteWithArguments runs the tree application with explicit dependencies.
// Usage errors print the usage line and are not returned.
func ExecuteWithArguments(environment Environment, arguments []string) error {
	resolvedEnvironment, environmentErr := environment.withDefaults()
	if environmentErr != nil {
		return environmentErr
	}
	rootCommand := createRootCommand(resolvedEnvironment)
	normalizedArguments := normalizeCopyFlagArguments(arguments)
	if normalizedArguments == nil {
		// cobra falls back to os.Args when given nil
		normalizedArguments = []string{}
	}
	rootCommand.SetArgs(normalizedArguments)
	rootCommand.SetOut(resolvedEnvironment.Stdout)
	rootCommand.SetErr(resolvedEnvironment.Stderr)

	executionErr := rootCommand.Execute()
	if errors.Is(executionErr, ErrUsage) {
		fmt.Fprintln(resolvedEnvironment.Stdout, usageMessage)
		return nil
	}
	return executionErr
}

// commandFlags holds the raw flag values before configuration is applied.
type commandFlags struct {
	includeHidden  bool
	maxDepth       int
	sortEntries    bool
	skipUnreadable bool
	format         string
	copyOutput     bool
	configPath     string
	showVersion    bool
	initConfig     bool
	forceInit      bool
}

// treeSettings is the effective configuration of one invocation.
type treeSettings struct {
	options    tree.Options
	format     string
	copyOutput bool
}

// createRootCommand builds the root Cobra command.
func createRootCommand(environment Environment) *cobra.Command {
	var flags commandFlags

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(command *cobra.Command, arguments []string) error {
			if len(arguments) > 1 {
				return ErrUsage
			}
			return nil
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			if flags.showVersion {
				fmt.Fprintf(environment.Stdout, versionTemplate, utils.GetApplicationVersion())
				return nil
			}
			if flags.initConfig {
				return runInitConfig(environment, flags.forceInit)
			}
			return runTree(command.Flags(), environment, flags, arguments)
		},
	}
	rootCommand.SetFlagErrorFunc(func(command *cobra.Command, flagErr error) error {
		return ErrUsage
	})

	defaults := tree.DefaultOptions()
	rootCommand.Flags().BoolVarP(&flags.includeHidden, allFlagName, allFlagShorthand, defaults.IncludeHidden, allFlagDescription)
	rootCommand.Flags().IntVar(&flags.maxDepth, depthFlagName, defaults.MaxDepth, depthFlagDescription)
	rootCommand.Flags().BoolVar(&flags.sortEntries, sortFlagName, defaults.SortEntries, sortFlagDescription)
	rootCommand.Flags().BoolVar(&flags.skipUnreadable, skipUnreadableFlagName, defaults.SkipUnreadable, skipUnreadableFlagDescription)
	rootCommand.Flags().StringVar(&flags.format, formatFlagName, types.FormatRaw, formatFlagDescription)
	rootCommand.Flags().StringVar(&flags.configPath, configFlagName, "", configFlagDescription)
	rootCommand.Flags().BoolVar(&flags.showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.Flags().BoolVar(&flags.initConfig, initConfigFlagName, false, initConfigFlagDescription)
	rootCommand.Flags().BoolVar(&flags.forceInit, forceFlagName, false, forceFlagDescription)
	registerCopyFlag(rootCommand.Flags(), &flags.copyOutput)
	return rootCommand
}

func runInitConfig(environment Environment, force bool) error {
	writtenPath, initErr := config.InitializeConfiguration(config.InitOptions{
		FileSystem:    environment.FileSystem,
		HomeDirectory: environment.HomeDirectory,
		Force:         force,
	})
	if initErr != nil {
		return initErr
	}
	fmt.Fprintf(environment.Stdout, configurationWrittenFormat, writtenPath)
	return nil
}

// runTree validates the requested root and streams its tree to the selected renderer.
func runTree(flagSet *pflag.FlagSet, environment Environment, flags commandFlags, arguments []string) error {
	configuration, configurationErr := config.LoadApplicationConfiguration(config.LoadOptions{
		FileSystem:       environment.FileSystem,
		HomeDirectory:    environment.HomeDirectory,
		ExplicitFilePath: flags.configPath,
		WorkingDirectory: environment.WorkingDirectory,
	})
	if configurationErr != nil {
		return configurationErr
	}
	settings := resolveSettings(flagSet, flags, configuration.Tree)
	if !output.IsSupportedFormat(settings.format) {
		return fmt.Errorf(invalidFormatMessage, settings.format)
	}

	root := environment.WorkingDirectory
	if len(arguments) == 1 {
		root = arguments[0]
		if validationErr := tree.ValidateRoot(environment.FileSystem, root); validationErr != nil {
			var pathErr *tree.PathError
			if errors.As(validationErr, &pathErr) {
				environment.Logger.Error(pathErr.Diagnostic())
				return nil
			}
			return validationErr
		}
	}

	label := filepath.Base(environment.WorkingDirectory)
	environment.Logger.Debug(debugRenderingTree,
		zap.String("label", label),
		zap.String("root", root),
		zap.Bool("all", settings.options.IncludeHidden),
		zap.Int("depth", settings.options.MaxDepth),
		zap.Bool("sort", settings.options.SortEntries),
		zap.String("format", settings.format),
	)
	return renderTree(environment, label, root, settings)
}

func renderTree(environment Environment, label string, root string, settings treeSettings) error {
	var captured bytes.Buffer
	destination := environment.Stdout
	if settings.copyOutput {
		destination = io.MultiWriter(environment.Stdout, &captured)
	}

	renderer, rendererErr := output.NewStreamRenderer(settings.format, destination)
	if rendererErr != nil {
		return rendererErr
	}
	walker := tree.NewRenderer(environment.FileSystem)
	if walkErr := walker.Render(label, root, settings.options, renderer.Handle); walkErr != nil {
		return fmt.Errorf(renderTreeErrorFormat, root, walkErr)
	}
	if flushErr := renderer.Flush(); flushErr != nil {
		return flushErr
	}

	if settings.copyOutput {
		if copyErr := environment.Copier.Copy(captured.String()); copyErr != nil {
			environment.Logger.Warn(warningCopyFailed, zap.Error(copyErr))
		}
	}
	return nil
}

// resolveSettings applies built-in defaults, then configuration, then explicitly set flags.
func resolveSettings(flagSet *pflag.FlagSet, flags commandFlags, configured config.TreeConfiguration) treeSettings {
	settings := treeSettings{
		options: tree.DefaultOptions(),
		format:  types.FormatRaw,
	}

	settings.options.IncludeHidden = chooseBool(flagSet, allFlagName, flags.includeHidden, configured.IncludeHidden, settings.options.IncludeHidden)
	settings.options.SortEntries = chooseBool(flagSet, sortFlagName, flags.sortEntries, configured.SortEntries, settings.options.SortEntries)
	settings.options.SkipUnreadable = chooseBool(flagSet, skipUnreadableFlagName, flags.skipUnreadable, configured.SkipUnreadable, settings.options.SkipUnreadable)
	settings.copyOutput = chooseBool(flagSet, copyFlagName, flags.copyOutput, configured.Copy, settings.copyOutput)

	switch {
	case flagSet.Changed(depthFlagName):
		settings.options.MaxDepth = flags.maxDepth
	case configured.MaxDepth != nil:
		settings.options.MaxDepth = *configured.MaxDepth
	}

	switch {
	case flagSet.Changed(formatFlagName):
		settings.format = flags.format
	case configured.Format != "":
		settings.format = configured.Format
	}
	settings.format = strings.ToLower(strings.TrimSpace(settings.format))
	return settings
}

func chooseBool(flagSet *pflag.FlagSet, name string, flagValue bool, configured *bool, fallback bool) bool {
	if flagSet.Changed(name) {
		return flagValue
	}
	if configured != nil {
		return *configured
	}
	return fallback
}

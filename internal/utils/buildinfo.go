package utils

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/spf13/afero"
)

const (
	unknownVersion     = "unknown"
	developmentVersion = "(devel)"
)

var gitDescribeArguments = [][]string{
	{"describe", "--tags", "--exact-match"},
	{"describe", "--tags", "--long", "--dirty"},
}

// versionSources groups the lookups used to resolve the application version.
type versionSources struct {
	readBuildInfo func() (*debug.BuildInfo, bool)
	describe      func(directory string, arguments []string) (string, error)
	fileSystem    afero.Fs
	startPath     string
}

// GetApplicationVersion returns the module version from build info, falling
// back to git describe when running from a checkout.
func GetApplicationVersion() string {
	return resolveVersion(versionSources{
		readBuildInfo: debug.ReadBuildInfo,
		describe:      gitDescribe,
		fileSystem:    afero.NewOsFs(),
		startPath:     ".",
	})
}

func resolveVersion(sources versionSources) string {
	if buildInfo, available := sources.readBuildInfo(); available && buildInfo.Main.Version != "" && buildInfo.Main.Version != developmentVersion {
		return buildInfo.Main.Version
	}

	repositoryRoot, lookupErr := findGitDirectory(sources.fileSystem, sources.startPath)
	if lookupErr != nil {
		return unknownVersion
	}
	for _, arguments := range gitDescribeArguments {
		described, describeErr := sources.describe(repositoryRoot, arguments)
		if describeErr == nil && described != "" {
			return described
		}
	}
	return unknownVersion
}

func gitDescribe(directory string, arguments []string) (string, error) {
	// #nosec G204
	command := exec.Command("git", arguments...)
	command.Dir = directory
	described, err := command.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(described)), nil
}

// findGitDirectory walks upward from startDirectory to the directory holding .git.
func findGitDirectory(fileSystem afero.Fs, startDirectory string) (string, error) {
	absoluteStartDirectory, absoluteErr := filepath.Abs(startDirectory)
	if absoluteErr != nil {
		return "", fmt.Errorf("failed to get absolute path for %s: %w", startDirectory, absoluteErr)
	}

	currentDirectory := absoluteStartDirectory
	for {
		isDirectory, statErr := afero.IsDir(fileSystem, filepath.Join(currentDirectory, GitDirectoryName))
		if statErr == nil && isDirectory {
			return currentDirectory, nil
		}
		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			break
		}
		currentDirectory = parentDirectory
	}
	return "", fmt.Errorf(".git directory not found in or above %s", absoluteStartDirectory)
}

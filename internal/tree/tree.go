// Package tree walks a directory and produces the connector-prefixed lines of
// its textual tree.
package tree

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
)

const (
	// DefaultMaxDepth is the deepest level descended into when no depth is configured.
	DefaultMaxDepth = 10

	connectorMiddle = "├── "
	connectorLast   = "└── "
	indentContinued = "│   "
	indentBlank     = "    "
	directorySuffix = "/"
	hiddenPrefix    = "."

	skippedLabelFormat       = "skipped: %v"
	errorReadDirectoryFormat = "reading directory %s: %w"
	errorNilHandler          = "tree handler is nil"
)

// Options controls which entries are listed and how deep the walk goes.
type Options struct {
	IncludeHidden bool
	// MaxDepth is compared against the depth of a directory before it is
	// listed. The root's children sit at depth 0.
	MaxDepth    int
	SortEntries bool
	// SkipUnreadable replaces a failing directory listing with a single
	// "skipped: <reason>" line instead of aborting the walk.
	SkipUnreadable bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{MaxDepth: DefaultMaxDepth}
}

// Line is a single printable record of the tree.
type Line struct {
	Prefix      string
	Connector   string
	Name        string
	Suffix      string
	Path        string
	Depth       int
	IsDirectory bool
	Header      bool
	Skipped     bool
}

// String joins the visible parts of the line.
func (line Line) String() string {
	return line.Prefix + line.Connector + line.Name + line.Suffix
}

// IsLast reports whether the line closes its directory.
func (line Line) IsLast() bool {
	return line.Connector == connectorLast
}

// Handler consumes lines as they are produced. Returning an error stops the walk.
type Handler func(line Line) error

// Renderer walks directories on the configured filesystem.
type Renderer struct {
	fileSystem afero.Fs
}

// NewRenderer constructs a Renderer. A nil filesystem selects the operating system.
func NewRenderer(fileSystem afero.Fs) *Renderer {
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	return &Renderer{fileSystem: fileSystem}
}

// Render emits the header line for label followed by the tree of root.
// The header names the label, not root; callers pass the base name of the
// working directory. Every call re-reads the filesystem.
func (renderer *Renderer) Render(label string, root string, options Options, handler Handler) error {
	if handler == nil {
		return errors.New(errorNilHandler)
	}
	header := Line{
		Name:        label,
		Suffix:      directorySuffix,
		Path:        root,
		Depth:       -1,
		IsDirectory: true,
		Header:      true,
	}
	if err := handler(header); err != nil {
		return err
	}
	return renderer.walk(root, "", 0, options, handler)
}

func (renderer *Renderer) walk(directoryPath string, prefix string, depth int, options Options, handler Handler) error {
	if depth > options.MaxDepth {
		return nil
	}

	names, listErr := renderer.listEntries(directoryPath, options)
	if listErr != nil {
		if options.SkipUnreadable {
			return handler(Line{
				Prefix:    prefix,
				Connector: connectorLast,
				Name:      fmt.Sprintf(skippedLabelFormat, skipReason(listErr)),
				Path:      directoryPath,
				Depth:     depth,
				Skipped:   true,
			})
		}
		return fmt.Errorf(errorReadDirectoryFormat, directoryPath, listErr)
	}

	count := len(names)
	for index, name := range names {
		isLast := index == count-1
		childPath := filepath.Join(directoryPath, name)
		isDirectory := renderer.isDirectory(childPath)

		line := Line{
			Prefix:      prefix,
			Connector:   connectorMiddle,
			Name:        name,
			Path:        childPath,
			Depth:       depth,
			IsDirectory: isDirectory,
		}
		childPrefix := prefix + indentContinued
		if isLast {
			line.Connector = connectorLast
			childPrefix = prefix + indentBlank
		}
		if isDirectory {
			line.Suffix = directorySuffix
		}
		if err := handler(line); err != nil {
			return err
		}

		if !isDirectory {
			continue
		}
		if err := renderer.walk(childPath, childPrefix, depth+1, options, handler); err != nil {
			return err
		}
	}
	return nil
}

// listEntries returns entry names in the order the filesystem yields them,
// filtered and optionally sorted per options.
func (renderer *Renderer) listEntries(directoryPath string, options Options) ([]string, error) {
	directory, openErr := renderer.fileSystem.Open(directoryPath)
	if openErr != nil {
		return nil, openErr
	}
	names, readErr := directory.Readdirnames(-1)
	closeErr := directory.Close()
	if readErr != nil {
		return nil, readErr
	}
	if closeErr != nil {
		return nil, closeErr
	}

	if !options.IncludeHidden {
		names = slices.DeleteFunc(names, func(name string) bool {
			return strings.HasPrefix(name, hiddenPrefix)
		})
	}
	if options.SortEntries {
		slices.Sort(names)
	}
	return names, nil
}

// isDirectory follows symbolic links; entries that cannot be stat'ed are leaves.
func (renderer *Renderer) isDirectory(path string) bool {
	info, statErr := renderer.fileSystem.Stat(path)
	return statErr == nil && info.IsDir()
}

func skipReason(err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) && pathErr.Err != nil {
		return pathErr.Err
	}
	return err
}

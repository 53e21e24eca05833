package tree

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"

	"github.com/spf13/afero"
)

// ErrorKind classifies why a root path was rejected.
type ErrorKind int

const (
	// ErrorKindNotFound covers missing paths and paths that are not directories.
	ErrorKindNotFound ErrorKind = iota + 1
	// ErrorKindPermissionDenied means the path could not be stat'ed due to access rights.
	ErrorKindPermissionDenied
	// ErrorKindOtherIO wraps every other filesystem failure.
	ErrorKindOtherIO
)

const (
	notFoundDiagnosticFormat         = "error: the directory '%s' does not exist."
	permissionDeniedDiagnosticFormat = "error: you do not have the necessary permissions to access '%s'."
	otherIODiagnosticFormat          = "error checking directory:\n%v"
)

func (kind ErrorKind) String() string {
	switch kind {
	case ErrorKindNotFound:
		return "not found"
	case ErrorKindPermissionDenied:
		return "permission denied"
	case ErrorKindOtherIO:
		return "io error"
	default:
		return "unknown"
	}
}

// PathError reports a root path that failed validation.
type PathError struct {
	Path string
	Kind ErrorKind
	Err  error
}

// Diagnostic returns the user-facing message for the failure.
func (pathError *PathError) Diagnostic() string {
	switch pathError.Kind {
	case ErrorKindPermissionDenied:
		return fmt.Sprintf(permissionDeniedDiagnosticFormat, pathError.Path)
	case ErrorKindOtherIO:
		return fmt.Sprintf(otherIODiagnosticFormat, pathError.Err)
	default:
		return fmt.Sprintf(notFoundDiagnosticFormat, pathError.Path)
	}
}

func (pathError *PathError) Error() string {
	return pathError.Diagnostic()
}

func (pathError *PathError) Unwrap() error {
	return pathError.Err
}

// ValidateRoot confirms that path exists and is a directory.
// Entries found during the walk are not validated again.
func ValidateRoot(fileSystem afero.Fs, path string) error {
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	info, statErr := fileSystem.Stat(path)
	if statErr != nil {
		return &PathError{Path: path, Kind: classifyStatError(statErr), Err: statErr}
	}
	if !info.IsDir() {
		return &PathError{Path: path, Kind: ErrorKindNotFound, Err: syscall.ENOTDIR}
	}
	return nil
}

func classifyStatError(err error) ErrorKind {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
		return ErrorKindNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrorKindPermissionDenied
	default:
		return ErrorKindOtherIO
	}
}

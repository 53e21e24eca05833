package tree_test

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/temirov/tree/internal/tree"
)

// statFailureFs fails every Stat call with the configured error.
type statFailureFs struct {
	afero.Fs
	statErr error
}

func (fileSystem statFailureFs) Stat(name string) (os.FileInfo, error) {
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fileSystem.statErr}
}

func TestValidateRootClassifiesFailures(t *testing.T) {
	t.Parallel()

	memoryFs := afero.NewMemMapFs()
	if err := memoryFs.MkdirAll("/project/docs", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := afero.WriteFile(memoryFs, "/project/readme.md", []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	testCases := []struct {
		name               string
		fileSystem         afero.Fs
		path               string
		expectValid        bool
		expectedKind       tree.ErrorKind
		expectedDiagnostic string
	}{
		{
			name:        "existing_directory",
			fileSystem:  memoryFs,
			path:        "/project/docs",
			expectValid: true,
		},
		{
			name:               "missing_path",
			fileSystem:         memoryFs,
			path:               "/does/not/exist",
			expectedKind:       tree.ErrorKindNotFound,
			expectedDiagnostic: "error: the directory '/does/not/exist' does not exist.",
		},
		{
			name:               "regular_file",
			fileSystem:         memoryFs,
			path:               "/project/readme.md",
			expectedKind:       tree.ErrorKindNotFound,
			expectedDiagnostic: "error: the directory '/project/readme.md' does not exist.",
		},
		{
			name:               "permission_denied",
			fileSystem:         statFailureFs{Fs: memoryFs, statErr: fs.ErrPermission},
			path:               "/locked",
			expectedKind:       tree.ErrorKindPermissionDenied,
			expectedDiagnostic: "error: you do not have the necessary permissions to access '/locked'.",
		},
		{
			name:               "other_io_failure",
			fileSystem:         statFailureFs{Fs: memoryFs, statErr: errors.New("device not ready")},
			path:               "/mnt/disk",
			expectedKind:       tree.ErrorKindOtherIO,
			expectedDiagnostic: "error checking directory:\nstat /mnt/disk: device not ready",
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			validationErr := tree.ValidateRoot(testCase.fileSystem, testCase.path)
			if testCase.expectValid {
				if validationErr != nil {
					t.Fatalf("expected valid path, got %v", validationErr)
				}
				return
			}
			var pathErr *tree.PathError
			if !errors.As(validationErr, &pathErr) {
				t.Fatalf("expected *tree.PathError, got %T (%v)", validationErr, validationErr)
			}
			if pathErr.Kind != testCase.expectedKind {
				t.Fatalf("expected kind %s, got %s", testCase.expectedKind, pathErr.Kind)
			}
			if pathErr.Diagnostic() != testCase.expectedDiagnostic {
				t.Fatalf("expected diagnostic %q, got %q", testCase.expectedDiagnostic, pathErr.Diagnostic())
			}
			if !strings.Contains(validationErr.Error(), testCase.path) {
				t.Fatalf("expected path in error message, got %q", validationErr.Error())
			}
		})
	}
}

func TestValidateRootUnwrapsCause(t *testing.T) {
	t.Parallel()
	validationErr := tree.ValidateRoot(statFailureFs{Fs: afero.NewMemMapFs(), statErr: fs.ErrPermission}, "/locked")
	if !errors.Is(validationErr, fs.ErrPermission) {
		t.Fatalf("expected wrapped permission error, got %v", validationErr)
	}
}

// Package output renders tree lines in the supported output formats.
package output

import (
	"fmt"
	"io"

	"github.com/temirov/tree/internal/tree"
	"github.com/temirov/tree/internal/types"
)

const invalidFormatMessage = "invalid format value '%s'"

// StreamRenderer consumes tree lines as they are produced and writes the final
// representation on Flush.
type StreamRenderer interface {
	Handle(line tree.Line) error
	Flush() error
}

// IsSupportedFormat reports whether the provided format is recognized.
func IsSupportedFormat(format string) bool {
	switch format {
	case types.FormatRaw, types.FormatJSON, types.FormatXML:
		return true
	default:
		return false
	}
}

// NewStreamRenderer selects the renderer for format.
func NewStreamRenderer(format string, stdout io.Writer) (StreamRenderer, error) {
	switch format {
	case types.FormatRaw:
		return NewRawStreamRenderer(stdout), nil
	case types.FormatJSON:
		return NewJSONStreamRenderer(stdout), nil
	case types.FormatXML:
		return NewXMLStreamRenderer(stdout), nil
	default:
		return nil, fmt.Errorf(invalidFormatMessage, format)
	}
}

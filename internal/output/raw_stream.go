package output

import (
	"fmt"
	"io"

	"github.com/temirov/tree/internal/tree"
)

type rawStreamRenderer struct {
	stdout io.Writer
}

// NewRawStreamRenderer writes each line as soon as it arrives.
func NewRawStreamRenderer(stdout io.Writer) StreamRenderer {
	return &rawStreamRenderer{stdout: stdout}
}

func (renderer *rawStreamRenderer) Handle(line tree.Line) error {
	if renderer.stdout == nil {
		return nil
	}
	_, err := fmt.Fprintln(renderer.stdout, line.String())
	return err
}

func (renderer *rawStreamRenderer) Flush() error {
	return nil
}

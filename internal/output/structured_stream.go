package output

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/temirov/tree/internal/tree"
	"github.com/temirov/tree/internal/types"
)

const errorOrphanLineFormat = "line %q arrived before the tree header"

// treeNodeBuilder rebuilds the nested structure from lines delivered in
// depth-first order.
type treeNodeBuilder struct {
	root  *types.TreeOutputNode
	stack []*types.TreeOutputNode
}

func (builder *treeNodeBuilder) add(line tree.Line) error {
	if line.Header {
		builder.root = &types.TreeOutputNode{
			Path: line.Path,
			Name: line.Name,
			Type: types.NodeTypeDirectory,
		}
		builder.stack = []*types.TreeOutputNode{builder.root}
		return nil
	}
	if builder.root == nil || line.Depth < 0 || line.Depth >= len(builder.stack) {
		return fmt.Errorf(errorOrphanLineFormat, line.String())
	}

	builder.stack = builder.stack[:line.Depth+1]
	parent := builder.stack[line.Depth]
	node := &types.TreeOutputNode{Path: line.Path, Name: line.Name, Type: types.NodeTypeFile}
	switch {
	case line.Skipped:
		node.Type = types.NodeTypeSkipped
	case line.IsDirectory:
		node.Type = types.NodeTypeDirectory
	}
	parent.Children = append(parent.Children, node)
	if line.IsDirectory {
		builder.stack = append(builder.stack, node)
	}
	return nil
}

type jsonStreamRenderer struct {
	stdout  io.Writer
	builder treeNodeBuilder
}

// NewJSONStreamRenderer writes the collected tree as one indented JSON document.
func NewJSONStreamRenderer(stdout io.Writer) StreamRenderer {
	return &jsonStreamRenderer{stdout: stdout}
}

func (renderer *jsonStreamRenderer) Handle(line tree.Line) error {
	return renderer.builder.add(line)
}

func (renderer *jsonStreamRenderer) Flush() error {
	if renderer.stdout == nil || renderer.builder.root == nil {
		return nil
	}
	encoded, err := json.MarshalIndent(renderer.builder.root, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tree to JSON: %w", err)
	}
	_, err = fmt.Fprintln(renderer.stdout, string(encoded))
	return err
}

type xmlStreamRenderer struct {
	stdout  io.Writer
	builder treeNodeBuilder
}

// NewXMLStreamRenderer writes the collected tree as one indented XML document.
func NewXMLStreamRenderer(stdout io.Writer) StreamRenderer {
	return &xmlStreamRenderer{stdout: stdout}
}

func (renderer *xmlStreamRenderer) Handle(line tree.Line) error {
	return renderer.builder.add(line)
}

func (renderer *xmlStreamRenderer) Flush() error {
	if renderer.stdout == nil || renderer.builder.root == nil {
		return nil
	}
	encoded, err := xml.MarshalIndent(renderer.builder.root, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tree to XML: %w", err)
	}
	if _, err := io.WriteString(renderer.stdout, xml.Header); err != nil {
		return err
	}
	_, err = fmt.Fprintln(renderer.stdout, string(encoded))
	return err
}

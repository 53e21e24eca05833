package output_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/temirov/tree/internal/output"
	"github.com/temirov/tree/internal/tree"
	"github.com/temirov/tree/internal/types"
)

func sampleLines() []tree.Line {
	return []tree.Line{
		{Name: "work", Suffix: "/", Path: "/work", Depth: -1, IsDirectory: true, Header: true},
		{Connector: "├── ", Name: "a.txt", Path: "/work/a.txt", Depth: 0},
		{Connector: "├── ", Name: "sub", Suffix: "/", Path: "/work/sub", Depth: 0, IsDirectory: true},
		{Prefix: "│   ", Connector: "└── ", Name: "c.txt", Path: "/work/sub/c.txt", Depth: 1},
		{Connector: "└── ", Name: "locked", Suffix: "/", Path: "/work/locked", Depth: 0, IsDirectory: true},
		{Prefix: "    ", Connector: "└── ", Name: "skipped: permission denied", Path: "/work/locked", Depth: 1, Skipped: true},
	}
}

func feed(t *testing.T, renderer output.StreamRenderer, lines []tree.Line) {
	t.Helper()
	for index, line := range lines {
		if err := renderer.Handle(line); err != nil {
			t.Fatalf("handle line %d failed: %v", index, err)
		}
	}
	if err := renderer.Flush(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
}

func TestRawStreamRendererWritesLines(t *testing.T) {
	t.Parallel()
	var stdout bytes.Buffer
	feed(t, output.NewRawStreamRenderer(&stdout), sampleLines())

	expected := strings.Join([]string{
		"work/",
		"├── a.txt",
		"├── sub/",
		"│   └── c.txt",
		"└── locked/",
		"    └── skipped: permission denied",
	}, "\n") + "\n"
	if stdout.String() != expected {
		t.Fatalf("unexpected raw output\nexpected:\n%s\ngot:\n%s", expected, stdout.String())
	}
}

func TestJSONStreamRendererNestsChildren(t *testing.T) {
	t.Parallel()
	var stdout bytes.Buffer
	feed(t, output.NewJSONStreamRenderer(&stdout), sampleLines())

	var decoded types.TreeOutputNode
	if err := json.Unmarshal(stdout.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout.String())
	}
	if decoded.Name != "work" || decoded.Type != types.NodeTypeDirectory {
		t.Fatalf("unexpected root node: %+v", decoded)
	}
	if len(decoded.Children) != 3 {
		t.Fatalf("expected 3 root children, got %d", len(decoded.Children))
	}
	subdirectory := decoded.Children[1]
	if subdirectory.Type != types.NodeTypeDirectory || len(subdirectory.Children) != 1 || subdirectory.Children[0].Name != "c.txt" {
		t.Fatalf("unexpected subdirectory node: %+v", subdirectory)
	}
	locked := decoded.Children[2]
	if len(locked.Children) != 1 || locked.Children[0].Type != types.NodeTypeSkipped {
		t.Fatalf("expected skipped child under locked, got %+v", locked)
	}
}

func TestXMLStreamRendererWritesDocument(t *testing.T) {
	t.Parallel()
	var stdout bytes.Buffer
	feed(t, output.NewXMLStreamRenderer(&stdout), sampleLines())

	rendered := stdout.String()
	for _, fragment := range []string{"<?xml", "<node>", "<name>work</name>", "<name>c.txt</name>", "<type>skipped</type>"} {
		if !strings.Contains(rendered, fragment) {
			t.Fatalf("expected fragment %q in output: %s", fragment, rendered)
		}
	}
}

func TestStructuredRenderersRejectLinesBeforeHeader(t *testing.T) {
	t.Parallel()
	renderers := map[string]output.StreamRenderer{
		types.FormatJSON: output.NewJSONStreamRenderer(&bytes.Buffer{}),
		types.FormatXML:  output.NewXMLStreamRenderer(&bytes.Buffer{}),
	}
	for format, renderer := range renderers {
		if err := renderer.Handle(tree.Line{Connector: "└── ", Name: "orphan"}); err == nil {
			t.Fatalf("%s renderer accepted a line before the header", format)
		}
	}
}

func TestNewStreamRendererSelectsFormat(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		format      string
		expectError bool
	}{
		{format: types.FormatRaw},
		{format: types.FormatJSON},
		{format: types.FormatXML},
		{format: "yaml", expectError: true},
	}
	for _, testCase := range testCases {
		renderer, err := output.NewStreamRenderer(testCase.format, &bytes.Buffer{})
		if testCase.expectError {
			if err == nil {
				t.Fatalf("expected error for format %s", testCase.format)
			}
			if output.IsSupportedFormat(testCase.format) {
				t.Fatalf("format %s reported as supported", testCase.format)
			}
			continue
		}
		if err != nil || renderer == nil {
			t.Fatalf("unexpected error for format %s: %v", testCase.format, err)
		}
	}
}

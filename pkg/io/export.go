package io

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/nodecrawl/pkg/errors"
	"github.com/matzehuels/nodecrawl/pkg/node"
)

// Output format names.
const (
	FormatText = "txt"
	FormatJSON = "json"
)

// Formats lists the supported output formats.
var Formats = []string{FormatText, FormatJSON}

// TextLine returns the txt representation of n.
func TextLine(n node.Node) string {
	if n.IsLink() {
		return n.Link()
	}
	return fmt.Sprintf("%s %s %s", n.Type, n.Address(), n.Name)
}

// WriteText writes one line per node to w.
func WriteText(nodes []node.Node, w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, n := range nodes {
		if _, err := bw.WriteString(TextLine(n) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteJSON writes nodes to w as an indented JSON array. A nil slice is
// written as [].
func WriteJSON(nodes []node.Node, w io.Writer) error {
	if nodes == nil {
		nodes = []node.Node{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(nodes); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Encode renders nodes in the named format.
func Encode(format string, nodes []node.Node) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatText:
		err = WriteText(nodes, &buf)
	case FormatJSON:
		err = WriteJSON(nodes, &buf)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportText writes nodes to a txt file at path.
func ExportText(nodes []node.Node, path string) error {
	return export(path, func(w io.Writer) error { return WriteText(nodes, w) })
}

// ExportJSON writes nodes to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(nodes []node.Node, path string) error {
	return export(path, func(w io.Writer) error { return WriteJSON(nodes, w) })
}

func export(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/nodecrawl/pkg/node"
)

// ReadJSON decodes a JSON node array from r.
//
// Entries without a type are rejected, as are non-link entries without a
// server. ReadJSON does not close r.
func ReadJSON(r io.Reader) ([]node.Node, error) {
	var nodes []node.Node
	if err := json.NewDecoder(r).Decode(&nodes); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	for i, n := range nodes {
		if n.Type == "" {
			return nil, fmt.Errorf("node %d: missing type", i)
		}
		if !n.IsLink() && n.Server == "" {
			return nil, fmt.Errorf("node %d (%s): missing server", i, n.Name)
		}
	}
	return nodes, nil
}

// ImportJSON reads a JSON node file at path.
func ImportJSON(path string) ([]node.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

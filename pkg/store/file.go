package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	nio "github.com/matzehuels/nodecrawl/pkg/io"
	"github.com/matzehuels/nodecrawl/pkg/node"
)

// File stores nodes in a JSON file. Save merges new nodes after the existing
// ones, keeping the first occurrence of each identity.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile creates a file store at path. The file is created on first Save.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file.
func (f *File) Path() string { return f.path }

func (f *File) Save(ctx context.Context, runID string, nodes []node.Node) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing, err := f.read()
	if err != nil {
		return err
	}
	set := node.NewSet()
	set.AddAll(existing)
	set.AddAll(nodes)

	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nio.ExportJSON(set.Nodes(), f.path)
}

// List returns the stored nodes. A missing file is an empty store.
func (f *File) List(ctx context.Context) ([]node.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read()
}

func (f *File) Close(ctx context.Context) error { return nil }

func (f *File) read() ([]node.Node, error) {
	nodes, err := nio.ImportJSON(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return nodes, err
}

var _ Store = (*File)(nil)

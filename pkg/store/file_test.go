package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/nodecrawl/pkg/node"
)

func TestFileEmpty(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "nodes.json"))
	nodes, err := f.List(context.Background())
	if err != nil || len(nodes) != 0 {
		t.Errorf("List() = %v, %v", nodes, err)
	}
}

func TestFileSaveMerges(t *testing.T) {
	ctx := context.Background()
	f := NewFile(filepath.Join(t.TempDir(), "sub", "nodes.json"))
	defer f.Close(ctx)

	first := []node.Node{
		{Type: "ss", Name: "a", Server: "h", Port: 1, Config: map[string]any{"v": "old"}},
		node.NewLink("vmess://x"),
	}
	if err := f.Save(ctx, "run-1", first); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	second := []node.Node{
		{Type: "ss", Name: "a", Server: "h", Port: 1, Config: map[string]any{"v": "new"}},
		node.NewLink("trojan://y"),
	}
	if err := f.Save(ctx, "run-2", second); err != nil {
		t.Fatal(err)
	}

	nodes, err := f.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(nodes))
	}
	if nodes[0].Config["v"] != "old" {
		t.Errorf("existing node should be kept, got %v", nodes[0].Config)
	}
	if nodes[2].Link() != "trojan://y" {
		t.Errorf("new node should be appended, got %+v", nodes[2])
	}
}

func TestFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	f := NewFile(path)
	if _, err := f.List(context.Background()); err == nil {
		t.Error("expected decode error")
	}
	if err := f.Save(context.Background(), "r", nil); err == nil {
		t.Error("Save should not overwrite an unreadable file")
	}
}

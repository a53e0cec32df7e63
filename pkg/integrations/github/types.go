package github

import "strings"

// Entry types in a git tree.
const (
	EntryBlob   = "blob"
	EntryTree   = "tree"
	EntryCommit = "commit" // submodule
)

// Tree is a recursive listing of a branch.
type Tree struct {
	SHA       string      `json:"sha"`
	Entries   []TreeEntry `json:"entries"`
	Truncated bool        `json:"truncated"` // GitHub caps recursive listings at 100k entries / 7 MB
}

// TreeEntry represents a file or directory in the repository tree.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"` // "blob", "tree" or "commit"
	Size int64  `json:"size,omitempty"`
	SHA  string `json:"sha,omitempty"`
}

// Blobs returns the file entries of t in listing order.
func (t *Tree) Blobs() []TreeEntry {
	var out []TreeEntry
	for _, e := range t.Entries {
		if e.Type == EntryBlob {
			out = append(out, e)
		}
	}
	return out
}

type treeResponse struct {
	SHA  string `json:"sha"`
	Tree []struct {
		Path string `json:"path"`
		Type string `json:"type"`
		Size int64  `json:"size"`
		SHA  string `json:"sha"`
	} `json:"tree"`
	Truncated bool `json:"truncated"`
}

func (r *treeResponse) toTree() Tree {
	t := Tree{SHA: r.SHA, Truncated: r.Truncated, Entries: make([]TreeEntry, 0, len(r.Tree))}
	for _, item := range r.Tree {
		t.Entries = append(t.Entries, TreeEntry{
			Path: item.Path,
			Type: item.Type,
			Size: item.Size,
			SHA:  item.SHA,
		})
	}
	return t
}

// contentResponse is the contents API payload for a single file.
// Content is a pointer so a missing field can be told apart from "".
type contentResponse struct {
	Type     string  `json:"type"`
	Path     string  `json:"path"`
	Size     int64   `json:"size"`
	Encoding string  `json:"encoding"`
	Content  *string `json:"content"`
}

func stripNewlines(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, s)
}

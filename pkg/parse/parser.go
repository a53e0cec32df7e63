// Package parse extracts proxy nodes from the text of repository files.
//
// Each [Parser] understands one family of formats and claims files by
// extension:
//
//   - [Clash] reads the "proxies" list of Clash YAML configurations (.yaml, .yml)
//   - [Links] captures share links line by line from plain text (.txt)
//   - [JSON] reads Clash-style or sing-box JSON configurations (.json)
//
// A [Registry] dispatches a path to the first parser that supports it. Parsers
// never fail the crawl: an unparsable body yields an error that callers log,
// and a body with nothing recognizable yields no nodes.
package parse

import (
	"path"
	"strings"

	"github.com/matzehuels/nodecrawl/pkg/node"
)

// Parser extracts nodes from file content.
type Parser interface {
	// Name returns a short identifier used in logs (e.g., "clash").
	Name() string
	// Supports reports whether this parser handles the given file path.
	Supports(path string) bool
	// Parse returns the nodes found in content, in document order.
	Parse(content string) ([]node.Node, error)
}

// DefaultExtensions lists the file extensions handled by [Default].
var DefaultExtensions = []string{".yaml", ".yml", ".txt", ".json"}

// Registry holds parsers in priority order.
type Registry struct {
	parsers []Parser
}

// NewRegistry creates a registry that consults parsers in the given order.
func NewRegistry(parsers ...Parser) *Registry {
	return &Registry{parsers: parsers}
}

// Default returns the standard registry: Clash YAML, link text, then JSON.
// If schemes is empty, [DefaultSchemes] is used for link detection.
func Default(schemes []string) *Registry {
	links := NewLinks(schemes)
	return NewRegistry(Clash{}, links, NewJSON(links))
}

// For returns the first parser supporting path. Matching is case-insensitive.
func (r *Registry) For(p string) (Parser, bool) {
	lower := strings.ToLower(p)
	for _, parser := range r.parsers {
		if parser.Supports(lower) {
			return parser, true
		}
	}
	return nil, false
}

// Parse dispatches content to the parser for path. Unsupported paths yield
// no nodes and no error.
func (r *Registry) Parse(p, content string) ([]node.Node, error) {
	parser, ok := r.For(p)
	if !ok {
		return nil, nil
	}
	return parser.Parse(content)
}

// Parsers returns the registered parsers in priority order.
func (r *Registry) Parsers() []Parser {
	out := make([]Parser, len(r.parsers))
	copy(out, r.parsers)
	return out
}

func hasExt(p string, exts ...string) bool {
	ext := strings.ToLower(path.Ext(p))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

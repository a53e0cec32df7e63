package parse

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/nodecrawl/pkg/node"
)

// DefaultSchemes are the link prefixes captured from text files.
var DefaultSchemes = []string{"ss://", "vmess://", "trojan://", "vless://"}

// Links captures share links from plain text, one per line. Links are kept
// verbatim and never decoded.
type Links struct {
	schemes []string
}

// NewLinks creates a link parser for the given scheme prefixes.
// An empty list selects [DefaultSchemes].
func NewLinks(schemes []string) *Links {
	if len(schemes) == 0 {
		schemes = DefaultSchemes
	}
	return &Links{schemes: schemes}
}

func (l *Links) Name() string              { return "links" }
func (l *Links) Supports(path string) bool { return hasExt(path, ".txt") }

// Schemes returns the recognized prefixes.
func (l *Links) Schemes() []string { return l.schemes }

// Parse returns a link node for every trimmed line that starts with a known
// scheme. Subscription files are often published as one base64 blob; when no
// line matches and the body decodes as base64, the decoded text is scanned
// instead.
func (l *Links) Parse(content string) ([]node.Node, error) {
	nodes := l.scan(content)
	if len(nodes) > 0 {
		return nodes, nil
	}
	if decoded, ok := decodeBase64Body(content); ok {
		return l.scan(decoded), nil
	}
	return nil, nil
}

// Lines returns link nodes for the given lines, used by the JSON parser for
// string arrays.
func (l *Links) Lines(lines []string) []node.Node {
	var nodes []node.Node
	for _, line := range lines {
		if link, ok := l.match(line); ok {
			nodes = append(nodes, node.NewLink(link))
		}
	}
	return nodes
}

func (l *Links) scan(content string) []node.Node {
	var nodes []node.Node
	for line := range strings.Lines(content) {
		if link, ok := l.match(line); ok {
			nodes = append(nodes, node.NewLink(link))
		}
	}
	return nodes
}

func (l *Links) match(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}
	for _, s := range l.schemes {
		if strings.HasPrefix(line, s) {
			return line, true
		}
	}
	return "", false
}

var base64Encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

func decodeBase64Body(content string) (string, bool) {
	compact := strings.Join(strings.Fields(content), "")
	if compact == "" {
		return "", false
	}
	for _, enc := range base64Encodings {
		data, err := enc.DecodeString(compact)
		if err == nil && utf8.Valid(data) {
			return string(data), true
		}
	}
	return "", false
}

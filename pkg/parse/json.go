package parse

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matzehuels/nodecrawl/pkg/node"
)

// outbound types in sing-box configs that are routing constructs, not servers.
var ignoredOutbounds = map[string]bool{
	"selector": true,
	"urltest":  true,
	"direct":   true,
	"block":    true,
	"dns":      true,
}

// sing-box type names mapped to their Clash equivalents.
var outboundTypes = map[string]string{
	"shadowsocks": "ss",
	"hy2":         "hysteria2",
	"hy":          "hysteria",
}

// JSON parses JSON configurations: Clash-style objects with "proxies",
// sing-box objects with "outbounds", and plain arrays of share links.
type JSON struct {
	links *Links
}

// NewJSON creates a JSON parser that uses links for string arrays.
func NewJSON(links *Links) *JSON {
	if links == nil {
		links = NewLinks(nil)
	}
	return &JSON{links: links}
}

func (p *JSON) Name() string              { return "json" }
func (p *JSON) Supports(path string) bool { return hasExt(path, ".json") }

// Parse decodes content and extracts nodes from whichever known layout it has.
// Unknown layouts yield no nodes.
func (p *JSON) Parse(content string) ([]node.Node, error) {
	var doc any
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}

	switch t := doc.(type) {
	case map[string]any:
		if proxies, ok := t["proxies"]; ok {
			return proxyList(proxies), nil
		}
		if outbounds, ok := t["outbounds"]; ok {
			return singBoxOutbounds(outbounds), nil
		}
	case []any:
		var lines []string
		for _, item := range t {
			if s, ok := item.(string); ok {
				lines = append(lines, s)
			}
		}
		return p.links.Lines(lines), nil
	}
	return nil, nil
}

func singBoxOutbounds(v any) []node.Node {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var nodes []node.Node
	for _, item := range list {
		ob, ok := item.(map[string]any)
		if !ok {
			continue
		}
		typ := strings.ToLower(scalar(ob["type"]))
		if ignoredOutbounds[typ] {
			continue
		}
		if mapped, ok := outboundTypes[typ]; ok {
			typ = mapped
		}

		server := strings.TrimSpace(scalar(ob["server"]))
		port, ok := toPort(ob["server_port"])
		if server == "" || !ok {
			continue
		}
		nodes = append(nodes, node.Node{
			Type:   orUnknown(typ),
			Name:   orUnknown(scalar(ob["tag"])),
			Server: server,
			Port:   port,
			Config: ob,
		})
	}
	return nodes
}

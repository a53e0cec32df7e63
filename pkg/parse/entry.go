package parse

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/nodecrawl/pkg/node"
)

// fromProxyEntry converts one Clash-style proxy mapping into a node. Entries
// without a server or a usable port are rejected.
func fromProxyEntry(entry map[string]any) (node.Node, bool) {
	n := node.Node{
		Type:   orUnknown(scalar(entry["type"])),
		Name:   orUnknown(scalar(entry["name"])),
		Server: strings.TrimSpace(scalar(entry["server"])),
		Config: entry,
	}
	port, ok := toPort(entry["port"])
	if n.Server == "" || !ok {
		return node.Node{}, false
	}
	n.Port = port
	return n, true
}

// scalar renders strings and numbers as text; anything else becomes "".
func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int, int64, uint64, float64, bool:
		return fmt.Sprint(t)
	default:
		return ""
	}
}

func orUnknown(s string) string {
	if s == "" {
		return node.Unknown
	}
	return s
}

// toPort accepts integer ports and numeric strings. JSON decodes every number
// as float64, so whole floats such as 443.0 count as integers from either
// format.
func toPort(v any) (int, bool) {
	var p int64
	switch t := v.(type) {
	case int:
		p = int64(t)
	case int64:
		p = t
	case uint64:
		if t > math.MaxUint16 {
			return 0, false
		}
		p = int64(t)
	case float64:
		if t != math.Trunc(t) || t < 1 || t > math.MaxUint16 {
			return 0, false
		}
		p = int64(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		p = int64(n)
	default:
		return 0, false
	}
	if p <= 0 || p > math.MaxUint16 {
		return 0, false
	}
	return int(p), true
}

// normalize rewrites map[any]any values into map[string]any and non-finite
// floats into their YAML spelling so that configs survive JSON encoding.
func normalize(v any) any {
	switch t := v.(type) {
	case float64:
		return finite(t)
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	default:
		return v
	}
}

// finite returns f, or its YAML spelling when f is NaN or infinite.
func finite(f float64) any {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	default:
		return f
	}
}

// proxyList converts a "proxies" value into nodes, skipping entries that are
// not mappings or lack an endpoint.
func proxyList(v any) []node.Node {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var nodes []node.Node
	for _, item := range list {
		entry, ok := normalize(item).(map[string]any)
		if !ok {
			continue
		}
		if n, ok := fromProxyEntry(entry); ok {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

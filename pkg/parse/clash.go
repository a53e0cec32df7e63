package parse

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/nodecrawl/pkg/node"
)

// Clash parses Clash YAML configurations. Only the top-level "proxies" list is
// read; proxy groups and rules are ignored.
type Clash struct{}

func (Clash) Name() string              { return "clash" }
func (Clash) Supports(path string) bool { return hasExt(path, ".yaml", ".yml") }

// Parse decodes content as YAML. A document whose top level is not a mapping
// yields no nodes. Each proxy keeps its full mapping as Config.
func (Clash) Parse(content string) ([]node.Node, error) {
	var doc any
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("clash yaml: %w", err)
	}
	m, ok := normalize(doc).(map[string]any)
	if !ok {
		return nil, nil
	}
	return proxyList(m["proxies"]), nil
}

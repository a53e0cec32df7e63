// Package node defines the normalized proxy-node record shared by parsers,
// the crawler and the output writers, together with its identity key and an
// insertion-ordered deduplicating set.
//
// Two kinds of nodes exist:
//   - Structured nodes parsed from Clash or sing-box configurations. They carry
//     a server and port, and Config holds the original entry verbatim.
//   - Link nodes captured from subscription text. Type is [TypeLink], Name is
//     [NameLink] and Config["link"] holds the link exactly as published. Links
//     are opaque: nothing in this module decodes them.
package node

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// TypeLink is the type of nodes captured as raw share links.
	TypeLink = "url"

	// NameLink is the name given to every raw link node.
	NameLink = "raw-link"

	// Unknown is used for a missing type or name in a structured entry.
	Unknown = "unknown"
)

// Node is a single proxy endpoint discovered in a repository file.
type Node struct {
	Type   string         `json:"type" bson:"type"`
	Name   string         `json:"name" bson:"name"`
	Server string         `json:"server,omitempty" bson:"server,omitempty"`
	Port   int            `json:"port,omitempty" bson:"port,omitempty"`
	Config map[string]any `json:"config" bson:"config"`
	Origin *Origin        `json:"origin,omitempty" bson:"origin,omitempty"`
}

// Origin records where a node was first seen. It is not part of the identity.
type Origin struct {
	Repo   string `json:"repo" bson:"repo"`
	Branch string `json:"branch,omitempty" bson:"branch,omitempty"`
	Path   string `json:"path" bson:"path"`
}

// Key identifies a node for deduplication. It is comparable and can be used
// as a map key.
type Key struct {
	Type   string
	Server string
	Port   int
	Name   string
	Link   string
}

// String renders the key in a stable form, suitable for hashing. Fields are
// length-prefixed so that no two distinct keys render the same.
func (k Key) String() string {
	var b strings.Builder
	for _, f := range []string{k.Type, k.Server, strconv.Itoa(k.Port), k.Name, k.Link} {
		b.WriteString(strconv.Itoa(len(f)))
		b.WriteByte(':')
		b.WriteString(f)
	}
	return b.String()
}

// NewLink creates a link node holding link verbatim.
func NewLink(link string) Node {
	return Node{
		Type:   TypeLink,
		Name:   NameLink,
		Config: map[string]any{"link": link},
	}
}

// Link returns the raw link of a link node, or "" for structured nodes.
func (n Node) Link() string {
	if n.Config == nil {
		return ""
	}
	s, _ := n.Config["link"].(string)
	return s
}

// IsLink reports whether n was captured as a raw share link.
func (n Node) IsLink() bool {
	return n.Server == "" && n.Link() != ""
}

// Key returns the identity of n: type, server, port and name. Nodes without a
// server are link nodes whose only distinguishing data is the link itself, so
// the link joins the key in that case.
func (n Node) Key() Key {
	k := Key{Type: n.Type, Server: n.Server, Port: n.Port, Name: n.Name}
	if n.Server == "" {
		k.Link = n.Link()
	}
	return k
}

// Address returns "server:port", or "" for link nodes.
func (n Node) Address() string {
	if n.Server == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", n.Server, n.Port)
}

// WithOrigin returns a copy of n stamped with the given origin.
func (n Node) WithOrigin(o Origin) Node {
	n.Origin = &o
	return n
}

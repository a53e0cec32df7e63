package node

// Set is an insertion-ordered collection of nodes with unique keys.
// The first node added for a key wins; later duplicates are dropped.
//
// Set is not safe for concurrent use.
type Set struct {
	seen  map[Key]struct{}
	nodes []Node
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{seen: make(map[Key]struct{})}
}

// Add inserts n unless a node with the same key is already present.
// It reports whether n was added.
func (s *Set) Add(n Node) bool {
	k := n.Key()
	if _, ok := s.seen[k]; ok {
		return false
	}
	s.seen[k] = struct{}{}
	s.nodes = append(s.nodes, n)
	return true
}

// AddAll inserts every node in order and returns how many were new.
func (s *Set) AddAll(nodes []Node) int {
	added := 0
	for _, n := range nodes {
		if s.Add(n) {
			added++
		}
	}
	return added
}

// Contains reports whether a node with key k is present.
func (s *Set) Contains(k Key) bool {
	_, ok := s.seen[k]
	return ok
}

// Len returns the number of unique nodes.
func (s *Set) Len() int { return len(s.nodes) }

// Nodes returns the nodes in first-seen order. The slice is a copy.
func (s *Set) Nodes() []Node {
	out := make([]Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Dedup returns nodes with duplicates removed, keeping first occurrences.
func Dedup(nodes []Node) []Node {
	s := NewSet()
	s.AddAll(nodes)
	return s.Nodes()
}

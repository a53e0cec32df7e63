package node

import "testing"

func TestSetFirstOccurrenceWins(t *testing.T) {
	s := NewSet()

	first := Node{Type: "ss", Name: "a", Server: "h", Port: 1, Origin: &Origin{Repo: "first/repo"}}
	dup := Node{Type: "ss", Name: "a", Server: "h", Port: 1, Origin: &Origin{Repo: "second/repo"}}

	if !s.Add(first) {
		t.Fatal("first Add should succeed")
	}
	if s.Add(dup) {
		t.Fatal("duplicate Add should be rejected")
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	if got := s.Nodes()[0].Origin.Repo; got != "first/repo" {
		t.Errorf("kept origin %q, want first/repo", got)
	}
}

func TestSetPreservesOrder(t *testing.T) {
	s := NewSet()
	added := s.AddAll([]Node{
		NewLink("ss://3"),
		NewLink("ss://1"),
		NewLink("ss://3"),
		NewLink("ss://2"),
		NewLink("ss://1"),
	})
	if added != 3 {
		t.Errorf("AddAll() = %d, want 3", added)
	}

	want := []string{"ss://3", "ss://1", "ss://2"}
	got := s.Nodes()
	if len(got) != len(want) {
		t.Fatalf("got %d nodes, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Link() != want[i] {
			t.Errorf("node %d = %q, want %q", i, got[i].Link(), want[i])
		}
	}
}

func TestSetNodesIsCopy(t *testing.T) {
	s := NewSet()
	s.Add(NewLink("ss://1"))

	nodes := s.Nodes()
	nodes[0].Name = "mutated"

	if s.Nodes()[0].Name != NameLink {
		t.Error("Nodes() should return a copy")
	}
}

func TestSetContains(t *testing.T) {
	s := NewSet()
	n := Node{Type: "vmess", Name: "x", Server: "s", Port: 2}
	s.Add(n)

	if !s.Contains(n.Key()) {
		t.Error("Contains() = false for added node")
	}
	if s.Contains(NewLink("vmess://x").Key()) {
		t.Error("Contains() = true for absent node")
	}
}

func TestDedup(t *testing.T) {
	if got := Dedup(nil); len(got) != 0 {
		t.Errorf("Dedup(nil) = %v", got)
	}
	nodes := []Node{NewLink("a"), NewLink("a"), NewLink("b")}
	if got := Dedup(nodes); len(got) != 2 {
		t.Errorf("Dedup() len = %d, want 2", len(got))
	}
}

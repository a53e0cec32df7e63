package node

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewLink(t *testing.T) {
	n := NewLink("vmess://abc")

	if n.Type != TypeLink || n.Name != NameLink {
		t.Errorf("got type=%q name=%q", n.Type, n.Name)
	}
	if n.Server != "" || n.Port != 0 {
		t.Errorf("link node should have no server/port, got %q:%d", n.Server, n.Port)
	}
	if n.Link() != "vmess://abc" {
		t.Errorf("Link() = %q", n.Link())
	}
	if !n.IsLink() {
		t.Error("IsLink() = false, want true")
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		a, b Node
		same bool
	}{
		{
			name: "same endpoint and name",
			a:    Node{Type: "ss", Name: "hk", Server: "1.1.1.1", Port: 443},
			b:    Node{Type: "ss", Name: "hk", Server: "1.1.1.1", Port: 443, Config: map[string]any{"cipher": "x"}},
			same: true,
		},
		{
			name: "different port",
			a:    Node{Type: "ss", Name: "hk", Server: "1.1.1.1", Port: 443},
			b:    Node{Type: "ss", Name: "hk", Server: "1.1.1.1", Port: 8443},
			same: false,
		},
		{
			name: "different name",
			a:    Node{Type: "ss", Name: "hk", Server: "1.1.1.1", Port: 443},
			b:    Node{Type: "ss", Name: "jp", Server: "1.1.1.1", Port: 443},
			same: false,
		},
		{
			name: "different type",
			a:    Node{Type: "ss", Name: "hk", Server: "1.1.1.1", Port: 443},
			b:    Node{Type: "trojan", Name: "hk", Server: "1.1.1.1", Port: 443},
			same: false,
		},
		{
			name: "distinct links",
			a:    NewLink("ss://one"),
			b:    NewLink("ss://two"),
			same: false,
		},
		{
			name: "identical links",
			a:    NewLink("ss://one"),
			b:    NewLink("ss://one"),
			same: true,
		},
		{
			name: "origin ignored",
			a:    NewLink("ss://one").WithOrigin(Origin{Repo: "a/b", Path: "x.txt"}),
			b:    NewLink("ss://one").WithOrigin(Origin{Repo: "c/d", Path: "y.txt"}),
			same: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Key() == tt.b.Key(); got != tt.same {
				t.Errorf("keys equal = %v, want %v (%v vs %v)", got, tt.same, tt.a.Key(), tt.b.Key())
			}
		})
	}
}

func TestKeyString(t *testing.T) {
	n := Node{Type: "ss", Name: "hk", Server: "1.1.1.1", Port: 443}
	if got := n.Key().String(); got != "2:ss7:1.1.1.13:4432:hk0:" {
		t.Errorf("String() = %q", got)
	}
	if got := NewLink("ss://x").Key().String(); got != "3:url0:1:08:raw-link6:ss://x" {
		t.Errorf("String() = %q", got)
	}

	// separators inside fields must not make distinct keys collide
	a := Key{Server: "a", Port: 1, Name: "2|x"}
	b := Key{Server: "a|1", Port: 2, Name: "x"}
	if a.String() == b.String() {
		t.Errorf("%+v and %+v render the same: %q", a, b, a.String())
	}
}

func TestAddress(t *testing.T) {
	n := Node{Server: "example.com", Port: 80}
	if n.Address() != "example.com:80" {
		t.Errorf("Address() = %q", n.Address())
	}
	if NewLink("ss://x").Address() != "" {
		t.Error("link node should have empty address")
	}
}

func TestNodeJSON(t *testing.T) {
	data, err := json.Marshal(NewLink("trojan://x"))
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if strings.Contains(s, `"server"`) || strings.Contains(s, `"port"`) || strings.Contains(s, `"origin"`) {
		t.Errorf("empty fields should be omitted: %s", s)
	}
	if !strings.Contains(s, `"link":"trojan://x"`) {
		t.Errorf("link missing from config: %s", s)
	}
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nodecrawl/pkg/node"
)

type memStore struct {
	nodes []node.Node
	err   error
}

func (m *memStore) Save(_ context.Context, _ string, nodes []node.Node) error {
	m.nodes = append(m.nodes, nodes...)
	return nil
}
func (m *memStore) List(context.Context) ([]node.Node, error) { return m.nodes, m.err }
func (m *memStore) Close(context.Context) error              { return nil }

func testServer(t *testing.T, s *memStore) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(NewHandler(s, log.New(io.Discard))))
	t.Cleanup(srv.Close)
	return srv
}

func sample() []node.Node {
	return []node.Node{
		{Type: "ss", Name: "a", Server: "1.1.1.1", Port: 443},
		node.NewLink("vmess://x"),
		{Type: "SS", Name: "b", Server: "2.2.2.2", Port: 80},
	}
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, body
}

func TestHealth(t *testing.T) {
	srv := testServer(t, &memStore{})
	resp, body := get(t, srv.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if string(body) != "{\"status\":\"ok\"}\n" {
		t.Errorf("body = %q", body)
	}
}

func TestListNodes(t *testing.T) {
	srv := testServer(t, &memStore{nodes: sample()})

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"?type=ss", 2},
		{"?type=url", 1},
		{"?type=trojan", 0},
		{"?limit=1", 1},
		{"?limit=0", 3},
		{"?type=ss&limit=1", 1},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, body := get(t, srv.URL+"/nodes"+tt.query)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			var nodes []node.Node
			if err := json.Unmarshal(body, &nodes); err != nil {
				t.Fatalf("decode: %v (%s)", err, body)
			}
			if len(nodes) != tt.want {
				t.Errorf("got %d nodes, want %d", len(nodes), tt.want)
			}
		})
	}
}

func TestListNodesBadLimit(t *testing.T) {
	srv := testServer(t, &memStore{})
	for _, q := range []string{"?limit=x", "?limit=-1"} {
		resp, _ := get(t, srv.URL+"/nodes"+q)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d", q, resp.StatusCode)
		}
	}
}

func TestListNodesText(t *testing.T) {
	srv := testServer(t, &memStore{nodes: sample()})
	resp, body := get(t, srv.URL+"/nodes.txt")
	if resp.Header.Get("Content-Type") != "text/plain; charset=utf-8" {
		t.Errorf("content type = %q", resp.Header.Get("Content-Type"))
	}
	want := "ss 1.1.1.1:443 a\nvmess://x\nSS 2.2.2.2:80 b\n"
	if string(body) != want {
		t.Errorf("body =\n%s\nwant\n%s", body, want)
	}
}

func TestEmptyStoreIsEmptyArray(t *testing.T) {
	srv := testServer(t, &memStore{})
	_, body := get(t, srv.URL+"/nodes")
	if string(body) != "[]\n" {
		t.Errorf("body = %q", body)
	}
}

func TestStoreError(t *testing.T) {
	srv := testServer(t, &memStore{err: errors.New("boom")})
	for _, path := range []string{"/nodes", "/nodes.txt", "/stats"} {
		resp, _ := get(t, srv.URL+path)
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("%s: status = %d", path, resp.StatusCode)
		}
	}
}

func TestStats(t *testing.T) {
	srv := testServer(t, &memStore{nodes: sample()})
	_, body := get(t, srv.URL+"/stats")
	var got struct {
		Total  int            `json:"total"`
		ByType map[string]int `json:"by_type"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.Total != 3 || got.ByType["ss"] != 1 || got.ByType["url"] != 1 {
		t.Errorf("stats = %+v", got)
	}
}

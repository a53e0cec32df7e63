package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/matzehuels/nodecrawl/pkg/node"
)

func TestDocumentID(t *testing.T) {
	a := node.Node{Type: "ss", Name: "a", Server: "h", Port: 1, Config: map[string]any{"x": 1}}
	b := node.Node{Type: "ss", Name: "a", Server: "h", Port: 1, Config: map[string]any{"x": 2}}
	c := node.Node{Type: "ss", Name: "a", Server: "h", Port: 2}

	if DocumentID(a) != DocumentID(b) {
		t.Error("config must not affect the document id")
	}
	if DocumentID(a) == DocumentID(c) {
		t.Error("different identities must get different ids")
	}
	if len(DocumentID(a)) != 16 {
		t.Errorf("id should be 16 hex chars: %q", DocumentID(a))
	}
	if DocumentID(node.NewLink("ss://a")) == DocumentID(node.NewLink("ss://b")) {
		t.Error("distinct links must get distinct ids")
	}
	d := node.Node{Type: "ss", Server: "a", Port: 1, Name: "2|x"}
	e := node.Node{Type: "ss", Server: "a|1", Port: 2, Name: "x"}
	if DocumentID(d) == DocumentID(e) {
		t.Error("field separators must not collide ids")
	}
}

func TestWriteModels(t *testing.T) {
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	nodes := []node.Node{node.NewLink("ss://a"), node.NewLink("ss://b")}
	models := writeModels("run", nodes, now)

	if len(models) != 2 {
		t.Fatalf("got %d models", len(models))
	}
	m, ok := models[1].(*mongo.UpdateOneModel)
	if !ok {
		t.Fatalf("model type %T", models[1])
	}
	if m.Upsert == nil || !*m.Upsert {
		t.Error("models must upsert")
	}
	filter := m.Filter.(bson.D)
	if filter[0].Value != DocumentID(nodes[1]) {
		t.Errorf("filter = %v", filter)
	}
	set := m.Update.(bson.D)[0].Value.(bson.D)
	if set[2].Key != "seq" || set[2].Value != 1 {
		t.Errorf("seq = %v", set[2])
	}
}

// TestStore runs against a live server when NODECRAWL_TEST_MONGO is set.
func TestStore(t *testing.T) {
	uri := os.Getenv("NODECRAWL_TEST_MONGO")
	if uri == "" {
		t.Skip("NODECRAWL_TEST_MONGO not set")
	}
	ctx := context.Background()
	s, err := NewStore(ctx, Config{URI: uri, Database: "nodecrawl_test", Collection: "nodes_" + uuid.NewString()[:8]})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close(ctx)
	defer s.coll.Drop(ctx)

	nodes := []node.Node{
		{Type: "ss", Name: "a", Server: "h", Port: 1, Config: map[string]any{"cipher": "x"}},
		node.NewLink("vmess://z"),
	}
	if err := s.Save(ctx, "run-1", nodes); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, "run-2", nodes[:1]); err != nil {
		t.Fatal(err)
	}

	got, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d nodes, want 2 (upsert by identity)", len(got))
	}
	if got[1].Key() != nodes[0].Key() {
		t.Errorf("most recently seen node should sort last: %+v", got)
	}
}

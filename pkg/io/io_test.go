package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/nodecrawl/pkg/errors"
	"github.com/matzehuels/nodecrawl/pkg/node"
)

func sampleNodes() []node.Node {
	return []node.Node{
		{
			Type:   "ss",
			Name:   "hk-01",
			Server: "1.2.3.4",
			Port:   8388,
			Config: map[string]any{"cipher": "aes-128-gcm"},
			Origin: &node.Origin{Repo: "freefq/free", Branch: "master", Path: "clash.yaml"},
		},
		node.NewLink("vmess://eyJhZGQiOiJ4In0="),
		{Type: "trojan", Name: "jp <fast> & cheap", Server: "example.com", Port: 443},
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(sampleNodes(), &buf); err != nil {
		t.Fatalf("WriteText() error: %v", err)
	}
	want := "ss 1.2.3.4:8388 hk-01\n" +
		"vmess://eyJhZGQiOiJ4In0=\n" +
		"trojan example.com:443 jp <fast> & cheap\n"
	if buf.String() != want {
		t.Errorf("WriteText() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(nil, &buf); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected empty output, got %q", buf.String())
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(sampleNodes(), &buf); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`"type": "ss"`,
		`"port": 8388`,
		`"link": "vmess://eyJhZGQiOiJ4In0="`,
		`"repo": "freefq/free"`,
		`jp <fast> & cheap`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
	if !strings.HasPrefix(out, "[\n  {") {
		t.Errorf("output should be an indented array:\n%s", out)
	}
}

func TestWriteJSONNil(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(nil, &buf); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("nil nodes should encode as [], got %q", buf.String())
	}
}

func TestJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	in := sampleNodes()
	if err := WriteJSON(in, &buf); err != nil {
		t.Fatal(err)
	}
	out, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d nodes, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i].Key() != in[i].Key() {
			t.Errorf("node %d key = %v, want %v", i, out[i].Key(), in[i].Key())
		}
	}
	if out[0].Origin == nil || out[0].Origin.Path != "clash.yaml" {
		t.Errorf("origin lost: %+v", out[0].Origin)
	}
}

func TestReadJSONInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `[{`},
		{"object", `{"type":"ss"}`},
		{"missing type", `[{"name":"x","server":"h","port":1}]`},
		{"missing server", `[{"type":"ss","name":"x","port":1}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadJSON(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEncode(t *testing.T) {
	for _, f := range Formats {
		data, err := Encode(f, sampleNodes())
		if err != nil {
			t.Errorf("Encode(%s) error: %v", f, err)
		}
		if len(data) == 0 {
			t.Errorf("Encode(%s) returned no data", f)
		}
	}

	_, err := Encode("xml", nil)
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Encode(xml) err = %v", err)
	}
}

func TestExportImport(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "nodes.txt")
	js := filepath.Join(dir, "nodes.json")

	if err := ExportText(sampleNodes(), txt); err != nil {
		t.Fatal(err)
	}
	if err := ExportJSON(sampleNodes(), js); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(txt)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(string(data), "\n") != 3 {
		t.Errorf("nodes.txt should have 3 lines:\n%s", data)
	}

	nodes, err := ImportJSON(js)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 3 {
		t.Errorf("ImportJSON() = %d nodes", len(nodes))
	}

	if _, err := ImportJSON(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
	if err := ExportText(nil, filepath.Join(dir, "no", "such", "dir.txt")); err == nil {
		t.Error("expected error for unwritable path")
	}
}

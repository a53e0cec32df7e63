package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/nodecrawl/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunParseMergesFiles(t *testing.T) {
	dir := t.TempDir()
	clash := writeFile(t, dir, "clash.yaml", "proxies:\n  - {name: a, type: ss, server: h, port: 1}\n")
	links := writeFile(t, dir, "nodes.txt", "vmess://x\nvmess://x\ntrojan://y\n")

	var out bytes.Buffer
	err := runParse(context.Background(), nil, &out, parseOpts{format: "txt"}, []string{clash, links})
	if err != nil {
		t.Fatalf("runParse() error: %v", err)
	}

	want := "ss h:1 a\nvmess://x\ntrojan://y\n"
	if out.String() != want {
		t.Errorf("output =\n%s\nwant\n%s", out.String(), want)
	}
}

func TestRunParseJSONOrigin(t *testing.T) {
	dir := t.TempDir()
	links := writeFile(t, dir, "nodes.txt", "ss://a\n")

	var out bytes.Buffer
	if err := runParse(context.Background(), nil, &out, parseOpts{format: "json"}, []string{links}); err != nil {
		t.Fatal(err)
	}
	var decoded []struct {
		Origin struct {
			Path string `json:"path"`
		} `json:"origin"`
	}
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 1 || decoded[0].Origin.Path != links {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestRunParseStdin(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("trojan://a\nhttp://b\n")
	err := runParse(context.Background(), in, &out, parseOpts{format: "txt", as: ".txt"}, []string{"-"})
	if err != nil {
		t.Fatal(err)
	}
	if out.String() != "trojan://a\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunParseErrors(t *testing.T) {
	dir := t.TempDir()
	readme := writeFile(t, dir, "README.md", "ss://a\n")
	broken := writeFile(t, dir, "bad.yaml", "proxies: [\n")
	ok := writeFile(t, dir, "ok.txt", "ss://a\n")

	tests := []struct {
		name  string
		opts  parseOpts
		files []string
		code  errors.Code
	}{
		{"unsupported extension", parseOpts{format: "txt"}, []string{readme}, errors.ErrCodeUnsupported},
		{"invalid yaml", parseOpts{format: "txt"}, []string{broken}, ""},
		{"missing file", parseOpts{format: "txt"}, []string{filepath.Join(dir, "nope.txt")}, ""},
		{"bad format", parseOpts{format: "csv"}, []string{ok}, errors.ErrCodeInvalidFormat},
		{"bad --as", parseOpts{format: "txt", as: "txt"}, []string{ok}, errors.ErrCodeInvalidExtension},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runParse(context.Background(), nil, &bytes.Buffer{}, tt.opts, tt.files)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.code != "" && errors.GetCode(err) != tt.code {
				t.Errorf("code = %q, want %q (%v)", errors.GetCode(err), tt.code, err)
			}
		})
	}
}

func TestRunParseOutputFile(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "n.txt", "ss://a\n")
	outPath := filepath.Join(dir, "out.txt")

	if err := runParse(context.Background(), nil, &bytes.Buffer{}, parseOpts{format: "txt", output: outPath}, []string{in}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ss://a\n" {
		t.Errorf("file = %q", data)
	}
}

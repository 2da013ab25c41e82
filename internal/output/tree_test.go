package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func sampleTree() Tree {
	return Tree{
		Root: "just",
		Nodes: []TreeNode{
			{Name: "k", Children: []TreeNode{
				{Name: "logs", Leaf: true, Detail: "kubectl logs POD"},
				{Name: "pods", Leaf: true, Detail: "kubectl get pods", Children: nil},
			}},
			{Name: "up", Leaf: true, Detail: "docker compose up"},
		},
	}
}

func TestTree_RenderText(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var buf bytes.Buffer
	w := New(&buf, &bytes.Buffer{})
	if err := w.WriteOK(FormatTable, sampleTree()); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"just",
		"├── k",
		"│   ├── logs  kubectl logs POD",
		"│   └── pods  kubectl get pods",
		"└── up  docker compose up",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestTree_RenderTextEmpty(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var buf bytes.Buffer
	if err := (Tree{Root: "just"}).RenderText(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "just\n(empty)\n" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestTree_CSV(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, &bytes.Buffer{})
	if err := w.WriteOK(FormatCSV, sampleTree()); err != nil {
		t.Fatal(err)
	}
	want := "path,detail\nk logs,kubectl logs POD\nk pods,kubectl get pods\nup,docker compose up\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestTree_JSON(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, &bytes.Buffer{})
	if err := w.WriteOK(FormatJSON, sampleTree()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"tree":[{"name":"k","children":[{"name":"logs","leaf":true,"detail":"kubectl logs POD"}`) {
		t.Fatalf("unexpected json: %s", buf.String())
	}
}

package msgcat

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRenderDefault(t *testing.T) {
	c := MustDefault()
	got, err := c.Render("summary.row", map[string]any{"Name": "e4", "White": 0.5, "Black": 0.25, "Draw": 0.125})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "• e4: W 50.0% / B 25.0% / D 12.5%" {
		t.Fatalf("row = %q", got)
	}
	if _, err := c.Render("summary.row", map[string]any{"Name": "e4"}); err == nil {
		t.Fatalf("expected missing key error")
	}
	if _, err := c.Render("nope", nil); err == nil {
		t.Fatalf("expected unknown template error")
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("summary:\n  failed: \"{{.Name}} FAILED\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("summary.failed", map[string]any{"Name": "d4"})
	if err != nil || got != "d4 FAILED" {
		t.Fatalf("failed = %q, %v", got, err)
	}

	if err := os.WriteFile(filepath.Join(dir, "b.yml"), []byte("summary:\n  failed: dup\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("expected duplicate key error")
	}
}

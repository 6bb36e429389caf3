package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/park285/cheese-montecarlo/internal/domain"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	all := c.All()
	wantOrder := []string{"e4", "d4", "Sicilian Defense", "French Defense", "Caro-Kann Defense", "Ruy Lopez", "Queen's Gambit", "King + Rook vs King"}
	if len(all) != len(wantOrder) {
		t.Fatalf("got %d scenarios, want %d", len(all), len(wantOrder))
	}
	for i, name := range wantOrder {
		if all[i].Name != name {
			t.Fatalf("scenario %d = %q, want %q", i, all[i].Name, name)
		}
	}

	sicilian := all[2]
	if len(sicilian.Opening) != 1 || len(sicilian.Defense) != 1 || sicilian.ECO != "B20" {
		t.Fatalf("unexpected sicilian: %+v", sicilian)
	}
	qg := all[6]
	if qg.ECO != "D06" || len(qg.Opening) < 3 {
		t.Fatalf("eco scenario not resolved: %+v", qg)
	}
	krk := all[7]
	if !krk.IsPlacement() || krk.Turn != domain.ColorWhite {
		t.Fatalf("unexpected placement: %+v", krk)
	}
}

func TestSelectKeepsCatalogOrder(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Select([]string{"ruy lopez", "e4"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(got) != 2 || got[0].Name != "e4" || got[1].Name != "Ruy Lopez" {
		t.Fatalf("unexpected selection: %+v", got)
	}
	if _, err := c.Select([]string{"e4", "Dutch"}); !errors.Is(err, ErrUnknownScenario) {
		t.Fatalf("expected unknown scenario, got %v", err)
	}
}

func TestOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	body := []byte(`
scenarios:
  - name: broken
    opening: [z9z9]
  - name: lucena-ish
    fen: "1K1k4/1P6/8/8/8/8/r7/2R5 w - - 0 1"
    truncation: material
`)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	all := c.All()
	if len(all) != 2 {
		t.Fatalf("override should replace defaults, got %d", len(all))
	}
	if all[0].ECO != "" {
		t.Fatalf("illegal prefix should not be labelled")
	}
	if all[1].Truncation != domain.TruncateMaterial {
		t.Fatalf("truncation override lost: %+v", all[1])
	}
}

func TestParseRejectsBadScenarios(t *testing.T) {
	cases := map[string]string{
		"empty":       "scenarios: []",
		"no name":     "scenarios:\n  - opening: [e4]",
		"duplicate":   "scenarios:\n  - name: a\n    opening: [e4]\n  - name: A\n    opening: [d4]",
		"mixed":       "scenarios:\n  - name: a\n    opening: [e4]\n    pieces: {e1: K, e8: k}",
		"eco+opening": "scenarios:\n  - name: a\n    eco: B20\n    opening: [e4]",
		"unknown eco": "scenarios:\n  - name: a\n    eco: Z99",
		"bad policy":  "scenarios:\n  - name: a\n    opening: [e4]\n    truncation: coinflip",
		"stray turn":  "scenarios:\n  - name: a\n    opening: [e4]\n    turn: black",
	}
	for name, body := range cases {
		if _, err := Parse([]byte(body)); !errors.Is(err, ErrInvalidScenario) {
			t.Fatalf("%s: expected invalid scenario, got %v", name, err)
		}
	}
}

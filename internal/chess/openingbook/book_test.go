package openingbook

import (
	"errors"
	"testing"

	chesslib "github.com/corentings/chess/v2"

	"github.com/park285/cheese-montecarlo/internal/domain"
	"github.com/park285/cheese-montecarlo/internal/montecarlo"
)

func TestParsePGNMoves(t *testing.T) {
	cases := map[string][]string{
		"1.e4 c5 2.Nf3":       {"e4", "c5", "Nf3"},
		"1. d4 d5 2. c4 *":    {"d4", "d5", "c4"},
		"1.e4 e5 2.Nf3 1-0":   {"e4", "e5", "Nf3"},
		"1. e4 e5 2. O-O ...": {"e4", "e5", "O-O"},
		"1.e2e4 c7c5 2.g1f3":  {"e2e4", "c7c5", "g1f3"},
	}
	for in, want := range cases {
		got := ParsePGNMoves(in)
		if len(got) != len(want) {
			t.Fatalf("%q: got %v, want %v", in, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%q: got %v, want %v", in, got, want)
			}
		}
	}
}

func TestResolveByCode(t *testing.T) {
	entry, err := Resolve("b20")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if entry.Code != "B20" {
		t.Fatalf("code = %s", entry.Code)
	}
	if len(entry.Moves) < 2 || entry.Moves[0] != "e4" || entry.Moves[1] != "c5" {
		t.Fatalf("unexpected sicilian moves: %v", entry.Moves)
	}
}

func TestResolveByTitleReturnsSAN(t *testing.T) {
	entry, err := Resolve("Ruy Lopez")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []string{"e4", "e5", "Nf3", "Nc6", "Bb5"}
	if len(entry.Moves) != len(want) {
		t.Fatalf("ruy lopez moves = %v, want %v", entry.Moves, want)
	}
	for i := range want {
		if entry.Moves[i] != want[i] {
			t.Fatalf("ruy lopez moves = %v, want %v", entry.Moves, want)
		}
	}

	game, err := montecarlo.NewPosition(domain.Scenario{Name: entry.Title, Opening: entry.Moves})
	if err != nil {
		t.Fatalf("NewPosition: %v", err)
	}
	if len(game.Moves()) != len(want) {
		t.Fatalf("applied %d moves, want %d", len(game.Moves()), len(want))
	}
	if code, _ := Label(game); code == "" {
		t.Fatalf("replayed line has no opening label")
	}
}

func TestSANLineRejectsIllegalMove(t *testing.T) {
	if _, err := sanLine([]string{"e2e4", "e2e4"}); err == nil {
		t.Fatalf("expected illegal move error")
	}
}

func TestResolveUnknown(t *testing.T) {
	if _, err := Resolve("Not An Opening"); !errors.Is(err, ErrUnknownOpening) {
		t.Fatalf("expected unknown opening, got %v", err)
	}
	if _, err := Resolve("  "); !errors.Is(err, ErrUnknownOpening) {
		t.Fatalf("expected unknown opening for blank token, got %v", err)
	}
}

func TestLabel(t *testing.T) {
	game := chesslib.NewGame()
	for _, mv := range []string{"e2e4", "c7c5"} {
		if err := game.PushNotationMove(mv, chesslib.UCINotation{}, nil); err != nil {
			t.Fatalf("push %s: %v", mv, err)
		}
	}
	code, title := Label(game)
	if code != "B20" || title == "" {
		t.Fatalf("label = %q %q", code, title)
	}
	if code, _ := Label(nil); code != "" {
		t.Fatalf("nil game should have no label")
	}
}

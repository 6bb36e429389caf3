package montecarlo

import (
	"errors"
	"strings"
	"testing"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/cheese-montecarlo/internal/domain"
)

func krkScenario() domain.Scenario {
	return domain.Scenario{
		Name:   "King + Rook vs King",
		Pieces: map[string]string{"e1": "K", "a1": "R", "e8": "k"},
		Turn:   domain.ColorWhite,
	}
}

func TestNewPositionAcceptsUCIAndSAN(t *testing.T) {
	cases := []domain.Scenario{
		{Name: "san", Opening: []string{"e4", "c5", "Nf3"}},
		{Name: "uci", Opening: []string{"e2e4", "c7c5", "g1f3"}},
		{Name: "mixed", Opening: []string{"e2e4"}, Defense: []string{"c5", "g1f3"}},
	}
	for _, sc := range cases {
		game, err := NewPosition(sc)
		if err != nil {
			t.Fatalf("%s: NewPosition: %v", sc.Name, err)
		}
		if len(game.Moves()) != 3 {
			t.Fatalf("%s: applied %d moves, want 3", sc.Name, len(game.Moves()))
		}
		if game.Position().Turn() != nchess.Black {
			t.Fatalf("%s: expected black to move", sc.Name)
		}
	}
}

func TestNewPositionAppliesDefenseAfterOpening(t *testing.T) {
	game, err := NewPosition(domain.Scenario{Name: "french", Opening: []string{"e2e4"}, Defense: []string{"e7e6"}})
	if err != nil {
		t.Fatalf("NewPosition: %v", err)
	}
	board := game.Position().Board()
	if got := board.Piece(nchess.NewSquare(nchess.FileE, nchess.Rank6)); got != nchess.NewPiece(nchess.Pawn, nchess.Black) {
		t.Fatalf("expected black pawn on e6, got %v", got)
	}
	if got := board.Piece(nchess.NewSquare(nchess.FileE, nchess.Rank4)); got != nchess.NewPiece(nchess.Pawn, nchess.White) {
		t.Fatalf("expected white pawn on e4, got %v", got)
	}
}

func TestNewPositionIllegalPrefix(t *testing.T) {
	for _, prefix := range [][]string{{"z9z9"}, {"e4", "e4"}, {"Ke2"}} {
		_, err := NewPosition(domain.Scenario{Name: "bad", Opening: prefix})
		if err == nil {
			t.Fatalf("prefix %v: expected setup error", prefix)
		}
		if !errors.Is(err, ErrSetup) {
			t.Fatalf("prefix %v: error should match ErrSetup: %v", prefix, err)
		}
		var se *SetupError
		if !errors.As(err, &se) || se.Token == "" {
			t.Fatalf("prefix %v: expected SetupError with offending token, got %v", prefix, err)
		}
	}
}

func TestPlacementFEN(t *testing.T) {
	fen, err := PlacementFEN(krkScenario().Pieces, domain.ColorWhite)
	if err != nil {
		t.Fatalf("PlacementFEN: %v", err)
	}
	if !strings.HasPrefix(fen, "4k3/8/8/8/8/8/8/R3K3 w") {
		t.Fatalf("unexpected fen: %s", fen)
	}

	fen, err = PlacementFEN(krkScenario().Pieces, domain.ColorBlack)
	if err != nil {
		t.Fatalf("PlacementFEN black: %v", err)
	}
	if !strings.Contains(fen, " b - - ") {
		t.Fatalf("expected black to move: %s", fen)
	}
}

func TestPlacementPreconditions(t *testing.T) {
	cases := map[string]map[string]string{
		"missing black king": {"e1": "K", "a1": "R"},
		"two white kings":    {"e1": "K", "d1": "K", "e8": "k"},
		"pawn on back rank":  {"e1": "K", "e8": "k", "a8": "P"},
		"bad square":         {"e1": "K", "e8": "k", "i9": "R"},
		"bad symbol":         {"e1": "K", "e8": "k", "a1": "X"},
	}
	for name, pieces := range cases {
		_, err := NewPosition(domain.Scenario{Name: name, Pieces: pieces})
		if !errors.Is(err, ErrSetup) {
			t.Fatalf("%s: expected setup error, got %v", name, err)
		}
	}
}

func TestPlacementCannotMixWithMoves(t *testing.T) {
	sc := krkScenario()
	sc.Opening = []string{"a1a2"}
	if _, err := NewPosition(sc); !errors.Is(err, ErrSetup) {
		t.Fatalf("expected setup error, got %v", err)
	}
}

func TestStartGameIsIndependent(t *testing.T) {
	start := Prepare(domain.Scenario{Name: "e4", Opening: []string{"e4"}})
	if start.Err != nil {
		t.Fatalf("Prepare: %v", start.Err)
	}
	if start.PrefixPlies != 1 {
		t.Fatalf("prefix plies = %d, want 1", start.PrefixPlies)
	}
	a, err := start.Game()
	if err != nil {
		t.Fatalf("Game: %v", err)
	}
	b, err := start.Game()
	if err != nil {
		t.Fatalf("Game: %v", err)
	}
	if err := ApplyMove(a, "e7e5"); err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	if a.FEN() == b.FEN() {
		t.Fatalf("games share state")
	}
	if b.FEN() != start.FEN {
		t.Fatalf("untouched copy drifted: %s", b.FEN())
	}
}

func TestPrepareKeepsSetupError(t *testing.T) {
	start := Prepare(domain.Scenario{Name: "bad", Opening: []string{"z9z9"}})
	if !errors.Is(start.Err, ErrSetup) {
		t.Fatalf("expected setup error, got %v", start.Err)
	}
	if _, err := start.Game(); !errors.Is(err, ErrSetup) {
		t.Fatalf("Game should return setup error, got %v", err)
	}
}

func knightShuffle() domain.Scenario {
	return domain.Scenario{
		Name:    "shuffle",
		Opening: []string{"Nf3", "Nf6", "Ng1", "Ng8"},
		Defense: []string{"Nf3", "Nf6", "Ng1", "Ng8"},
	}
}

func TestStartReplaysPrefixHistory(t *testing.T) {
	start := Prepare(knightShuffle())
	if start.Err != nil {
		t.Fatalf("Prepare: %v", start.Err)
	}
	if start.PrefixPlies != 8 || len(start.Prefix) != 8 {
		t.Fatalf("prefix = %d plies, %d moves", start.PrefixPlies, len(start.Prefix))
	}
	game, err := start.Game()
	if err != nil {
		t.Fatalf("Game: %v", err)
	}
	if game.FEN() != start.FEN {
		t.Fatalf("replayed fen %s, want %s", game.FEN(), start.FEN)
	}
	if len(game.Moves()) != 8 {
		t.Fatalf("replayed %d moves, want 8", len(game.Moves()))
	}
	threefold := false
	for _, m := range game.EligibleDraws() {
		if m == nchess.ThreefoldRepetition {
			threefold = true
		}
	}
	if !threefold {
		t.Fatalf("start position seen three times should allow a threefold claim")
	}
}

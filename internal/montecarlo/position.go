package montecarlo

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/cheese-montecarlo/internal/domain"
)

// Start is a validated starting position. Each call to Game builds an
// independent copy so playouts never share board state.
type Start struct {
	Scenario domain.Scenario
	// FEN is the position after the prefix.
	FEN string
	// BaseFEN is the position the prefix is played from. Game replays Prefix
	// on it so repetition counts see the prefix positions.
	BaseFEN string
	Prefix  []nchess.Move
	// PrefixPlies is the number of prefix moves applied to reach FEN.
	PrefixPlies int
	Err         error
}

// Prepare builds the scenario once and records its prefix. A setup failure
// is kept in Err so every playout of the batch classifies as Invalid.
func Prepare(sc domain.Scenario) Start {
	game, base, err := buildPosition(sc)
	if err != nil {
		return Start{Scenario: sc, Err: err}
	}
	played := game.Moves()
	prefix := make([]nchess.Move, 0, len(played))
	for _, mv := range played {
		prefix = append(prefix, *mv)
	}
	return Start{
		Scenario:    sc,
		FEN:         game.FEN(),
		BaseFEN:     base,
		Prefix:      prefix,
		PrefixPlies: len(prefix),
	}
}

// Game returns a fresh position for one playout.
func (s Start) Game() (*nchess.Game, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	opt, err := nchess.FEN(s.BaseFEN)
	if err != nil {
		return nil, &SetupError{Scenario: s.Scenario.Name, Err: err}
	}
	game := nchess.NewGame(opt)
	for i := range s.Prefix {
		legal, ok := LegalMove(game, &s.Prefix[i])
		if !ok {
			return nil, &SetupError{Scenario: s.Scenario.Name, Err: fmt.Errorf("prefix replay diverged at ply %d", i+1)}
		}
		if err := game.Move(legal, nil); err != nil {
			return nil, &SetupError{Scenario: s.Scenario.Name, Err: err}
		}
	}
	return game, nil
}

// NewPosition constructs the scenario's start: a custom placement, a FEN or
// the standard initial position, followed by the opening and defense moves.
func NewPosition(sc domain.Scenario) (*nchess.Game, error) {
	game, _, err := buildPosition(sc)
	return game, err
}

// buildPosition returns the scenario's game and the FEN before its prefix.
func buildPosition(sc domain.Scenario) (*nchess.Game, string, error) {
	prefix := sc.Prefix()

	var game *nchess.Game
	switch {
	case sc.IsPlacement():
		if strings.TrimSpace(sc.FEN) != "" || len(prefix) > 0 {
			return nil, "", &SetupError{Scenario: sc.Name, Err: errors.New("piece placement cannot be combined with fen or moves")}
		}
		fen, err := PlacementFEN(sc.Pieces, sc.Turn)
		if err != nil {
			return nil, "", &SetupError{Scenario: sc.Name, Err: err}
		}
		opt, err := nchess.FEN(fen)
		if err != nil {
			return nil, "", &SetupError{Scenario: sc.Name, Err: fmt.Errorf("parse placement: %w", err)}
		}
		game = nchess.NewGame(opt)
	case strings.TrimSpace(sc.FEN) != "":
		opt, err := nchess.FEN(strings.TrimSpace(sc.FEN))
		if err != nil {
			return nil, "", &SetupError{Scenario: sc.Name, Err: fmt.Errorf("parse fen: %w", err)}
		}
		game = nchess.NewGame(opt)
	default:
		game = nchess.NewGame()
	}

	base := game.FEN()
	for _, token := range prefix {
		if err := ApplyMove(game, token); err != nil {
			return nil, "", &SetupError{Scenario: sc.Name, Token: token, Err: err}
		}
	}
	return game, base, nil
}

// ApplyMove plays a move given in UCI or SAN notation. UCI is tried first.
func ApplyMove(game *nchess.Game, token string) error {
	text := strings.TrimSpace(token)
	if text == "" {
		return errors.New("empty move")
	}
	pos := game.Position()
	mv, err := nchess.UCINotation{}.Decode(pos, strings.ToLower(text))
	if err != nil {
		mv, err = nchess.AlgebraicNotation{}.Decode(pos, text)
		if err != nil {
			return fmt.Errorf("not a legal UCI or SAN move: %w", err)
		}
	}
	legal, ok := LegalMove(game, mv)
	if !ok {
		return errors.New("illegal move")
	}
	return game.Move(legal, nil)
}

// LegalMove returns the legal move of game matching mv's squares and promotion.
func LegalMove(game *nchess.Game, mv *nchess.Move) (*nchess.Move, bool) {
	if mv == nil {
		return nil, false
	}
	moves := game.ValidMoves()
	for i := range moves {
		if moves[i].S1() == mv.S1() && moves[i].S2() == mv.S2() && moves[i].Promo() == mv.Promo() {
			m := moves[i]
			return &m, true
		}
	}
	return nil, false
}

// PlacementFEN places pieces on an empty board with the given side to move.
// Castling and en passant rights are cleared.
func PlacementFEN(pieces map[string]string, turn domain.Color) (string, error) {
	squares := make([]string, 0, len(pieces))
	for sq := range pieces {
		squares = append(squares, sq)
	}
	sort.Strings(squares)

	board := make(map[nchess.Square]nchess.Piece, len(pieces))
	kings := map[nchess.Color]int{}
	for _, name := range squares {
		sq, err := parseSquare(name)
		if err != nil {
			return "", err
		}
		if _, dup := board[sq]; dup {
			return "", fmt.Errorf("square %s assigned twice", name)
		}
		piece, err := parsePiece(pieces[name])
		if err != nil {
			return "", fmt.Errorf("square %s: %w", name, err)
		}
		if piece.Type() == nchess.Pawn && (sq.Rank() == nchess.Rank1 || sq.Rank() == nchess.Rank8) {
			return "", fmt.Errorf("pawn on back rank at %s", name)
		}
		if piece.Type() == nchess.King {
			kings[piece.Color()]++
		}
		board[sq] = piece
	}
	if kings[nchess.White] != 1 || kings[nchess.Black] != 1 {
		return "", fmt.Errorf("placement needs exactly one king per side (white=%d black=%d)", kings[nchess.White], kings[nchess.Black])
	}

	side := "w"
	switch domain.Color(strings.ToLower(strings.TrimSpace(string(turn)))) {
	case "", domain.ColorWhite:
	case domain.ColorBlack:
		side = "b"
	default:
		return "", fmt.Errorf("unknown side to move: %s", turn)
	}

	return fmt.Sprintf("%s %s - - 0 1", nchess.NewBoard(board).String(), side), nil
}

func parseSquare(s string) (nchess.Square, error) {
	t := strings.ToLower(strings.TrimSpace(s))
	if len(t) != 2 || t[0] < 'a' || t[0] > 'h' || t[1] < '1' || t[1] > '8' {
		return nchess.NoSquare, fmt.Errorf("invalid square: %q", s)
	}
	return nchess.NewSquare(nchess.File(t[0]-'a'), nchess.Rank(t[1]-'1')), nil
}

func parsePiece(symbol string) (nchess.Piece, error) {
	s := strings.TrimSpace(symbol)
	if len(s) != 1 {
		return nchess.NoPiece, fmt.Errorf("invalid piece symbol: %q", symbol)
	}
	color := nchess.White
	if s == strings.ToLower(s) {
		color = nchess.Black
	}
	var pt nchess.PieceType
	switch strings.ToUpper(s) {
	case "K":
		pt = nchess.King
	case "Q":
		pt = nchess.Queen
	case "R":
		pt = nchess.Rook
	case "B":
		pt = nchess.Bishop
	case "N":
		pt = nchess.Knight
	case "P":
		pt = nchess.Pawn
	default:
		return nchess.NoPiece, fmt.Errorf("invalid piece symbol: %q", symbol)
	}
	return nchess.NewPiece(pt, color), nil
}

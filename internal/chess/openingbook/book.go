package openingbook

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	chesslib "github.com/corentings/chess/v2"
	"github.com/corentings/chess/v2/opening"
)

var (
	ecoOnce sync.Once
	ecoBook *opening.BookECO

	indexOnce sync.Once
	byCode    map[string][]*opening.Opening
	byTitle   map[string][]*opening.Opening
)

var ErrUnknownOpening = errors.New("unknown opening")

// Entry is a named opening with its SAN move sequence.
type Entry struct {
	Code  string
	Title string
	Moves []string
}

func book() *opening.BookECO {
	ecoOnce.Do(func() {
		ecoBook = opening.NewBookECO()
	})
	return ecoBook
}

func buildIndex() {
	indexOnce.Do(func() {
		byCode = make(map[string][]*opening.Opening)
		byTitle = make(map[string][]*opening.Opening)
		b := book()
		if b == nil {
			return
		}
		for _, o := range b.Possible(nil) {
			if o == nil {
				continue
			}
			if token := normalizeToken(o.Code()); token != "" {
				byCode[token] = append(byCode[token], o)
			}
			if token := normalizeToken(o.Title()); token != "" {
				byTitle[token] = append(byTitle[token], o)
			}
		}
	})
}

// Resolve finds an opening by ECO code ("B20") or exact title
// ("Sicilian Defense"). When several lines share the token, the shortest
// line wins.
func Resolve(token string) (Entry, error) {
	key := normalizeToken(token)
	if key == "" {
		return Entry{}, fmt.Errorf("%w: empty name", ErrUnknownOpening)
	}
	buildIndex()

	candidates := byCode[key]
	if len(candidates) == 0 {
		candidates = byTitle[key]
	}
	if len(candidates) == 0 {
		return Entry{}, fmt.Errorf("%w: %s", ErrUnknownOpening, token)
	}

	entries := make([]Entry, 0, len(candidates))
	for _, o := range candidates {
		moves, err := sanLine(ParsePGNMoves(o.PGN()))
		if err != nil || len(moves) == 0 {
			continue
		}
		entries = append(entries, Entry{Code: o.Code(), Title: o.Title(), Moves: moves})
	}
	if len(entries) == 0 {
		return Entry{}, fmt.Errorf("%w: %s has no moves", ErrUnknownOpening, token)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if len(entries[i].Moves) != len(entries[j].Moves) {
			return len(entries[i].Moves) < len(entries[j].Moves)
		}
		return strings.Join(entries[i].Moves, " ") < strings.Join(entries[j].Moves, " ")
	})
	return entries[0], nil
}

// Label returns the ECO code and title of the deepest known opening the
// game has followed.
func Label(game *chesslib.Game) (string, string) {
	if game == nil {
		return "", ""
	}
	b := book()
	if b == nil {
		return "", ""
	}
	if eco := b.Find(game.Moves()); eco != nil {
		return eco.Code(), eco.Title()
	}
	return "", ""
}

// ParsePGNMoves extracts move tokens from movetext such as "1.e4 c5 2. Nf3"
// or "1.e2e4 c7c5". The book stores its lines in the coordinate form.
func ParsePGNMoves(pgn string) []string {
	fields := strings.Fields(pgn)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		switch f {
		case "*", "1-0", "0-1", "1/2-1/2":
			continue
		}
		token := strings.TrimLeft(strings.TrimLeft(f, "0123456789"), ".")
		if token == "" {
			continue
		}
		out = append(out, token)
	}
	return out
}

// sanLine replays moves from the initial position and returns them in SAN.
func sanLine(moves []string) ([]string, error) {
	game := chesslib.NewGame()
	out := make([]string, 0, len(moves))
	for _, token := range moves {
		pos := game.Position()
		mv, err := chesslib.UCINotation{}.Decode(pos, strings.ToLower(token))
		if err != nil {
			if mv, err = (chesslib.AlgebraicNotation{}).Decode(pos, token); err != nil {
				return nil, fmt.Errorf("decode %q: %w", token, err)
			}
		}
		legal := legalMove(game, mv)
		if legal == nil {
			return nil, fmt.Errorf("illegal move %q", token)
		}
		out = append(out, chesslib.AlgebraicNotation{}.Encode(pos, legal))
		if err := game.Move(legal, nil); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func legalMove(game *chesslib.Game, mv *chesslib.Move) *chesslib.Move {
	if mv == nil {
		return nil
	}
	for _, m := range game.ValidMoves() {
		if m.S1() == mv.S1() && m.S2() == mv.S2() && m.Promo() == mv.Promo() {
			return &m
		}
	}
	return nil
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

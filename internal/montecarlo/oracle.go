package montecarlo

import (
	"context"
	"math/rand"

	nchess "github.com/corentings/chess/v2"
)

// MoveOracle picks the next move for the side to move.
type MoveOracle interface {
	SelectMove(ctx context.Context, game *nchess.Game) (*nchess.Move, error)
}

// Seeder is implemented by oracles whose choices depend on a random source.
// The batch runner reseeds them before every playout.
type Seeder interface {
	Seed(seed int64)
}

// Resetter is implemented by oracles that keep per-game state. The batch
// runner calls Reset before every playout.
type Resetter interface {
	Reset(ctx context.Context) error
}

// OracleProvider hands out one oracle per worker. Release must be called with
// the last error the worker saw so broken oracles are not reused.
type OracleProvider interface {
	Name() string
	Acquire(ctx context.Context) (MoveOracle, error)
	Release(oracle MoveOracle, err error)
}

// RandomOracle chooses uniformly among the legal moves.
type RandomOracle struct {
	rng *rand.Rand
}

func NewRandomOracle(seed int64) *RandomOracle {
	return &RandomOracle{rng: rand.New(rand.NewSource(seed))}
}

func (o *RandomOracle) Seed(seed int64) { o.rng.Seed(seed) }

func (o *RandomOracle) SelectMove(_ context.Context, game *nchess.Game) (*nchess.Move, error) {
	moves := game.ValidMoves()
	if len(moves) == 0 {
		return nil, ErrNoLegalMove
	}
	mv := moves[o.rng.Intn(len(moves))]
	return &mv, nil
}

// RandomProvider creates an independent RandomOracle for each worker.
type RandomProvider struct{}

func (RandomProvider) Name() string { return "random" }

func (RandomProvider) Acquire(context.Context) (MoveOracle, error) {
	return NewRandomOracle(1), nil
}

func (RandomProvider) Release(MoveOracle, error) {}

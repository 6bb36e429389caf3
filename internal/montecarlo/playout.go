package montecarlo

import (
	"context"
	"errors"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/cheese-montecarlo/internal/domain"
	"go.uber.org/zap"
)

// State is where a playout stopped.
type State int

const (
	Running State = iota
	Terminal
	Truncated
	SetupFailed
	// Aborted playouts are not counted: the context ended or the oracle
	// became unavailable.
	Aborted
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Terminal:
		return "terminal"
	case Truncated:
		return "truncated"
	case SetupFailed:
		return "setup_failed"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Playout is the result of driving one game to its end.
type Playout struct {
	State   State
	Outcome domain.Outcome
	// Plies counts oracle moves, excluding the prefix.
	Plies  int
	Method nchess.Method
	Err    error
}

// Counted reports whether the playout belongs in a tally.
func (p Playout) Counted() bool { return p.State != Aborted && p.State != Running }

// Driver plays single games from a prepared start.
type Driver struct {
	PlyCap     int
	Truncation domain.TruncationPolicy
	// ClaimDraws ends the game as soon as a threefold repetition or
	// fifty-move draw can be claimed.
	ClaimDraws bool
	// MinPlies marks games shorter than this, prefix included, as Invalid.
	MinPlies int
	Logger   *zap.Logger
}

func (d Driver) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// Play runs one playout. Only an unavailable oracle or a cancelled context
// produces a non-counted result; every other failure classifies as Invalid.
func (d Driver) Play(ctx context.Context, start Start, oracle MoveOracle) Playout {
	game, err := start.Game()
	if err != nil {
		return Playout{State: SetupFailed, Outcome: domain.Invalid, Err: err}
	}

	plies := 0
	for {
		if d.ClaimDraws {
			claimDraw(game)
		}
		if game.Outcome() != nchess.NoOutcome {
			return d.finish(start, Playout{State: Terminal, Outcome: classifyTerminal(game.Outcome()), Plies: plies, Method: game.Method()})
		}
		if plies >= d.PlyCap {
			return d.finish(start, Playout{State: Truncated, Outcome: d.truncate(start, game), Plies: plies})
		}
		if err := ctx.Err(); err != nil {
			return Playout{State: Aborted, Outcome: domain.Invalid, Plies: plies, Err: err}
		}

		mv, err := oracle.SelectMove(ctx, game)
		if err != nil {
			return d.oracleFailure(ctx, start, plies, err)
		}
		if err := game.Move(mv, nil); err != nil {
			d.logger().Debug("playout_move_rejected",
				zap.String("scenario", start.Scenario.Name),
				zap.Int("ply", plies),
				zap.Error(err))
			return Playout{State: Terminal, Outcome: domain.Invalid, Plies: plies, Err: err}
		}
		plies++
	}
}

func (d Driver) oracleFailure(ctx context.Context, start Start, plies int, err error) Playout {
	if unavailable(err) {
		return Playout{State: Aborted, Outcome: domain.Invalid, Plies: plies, Err: err}
	}
	if ctx.Err() != nil {
		return Playout{State: Aborted, Outcome: domain.Invalid, Plies: plies, Err: ctx.Err()}
	}
	if errors.Is(err, ErrNoLegalMove) {
		d.logger().Warn("playout_no_legal_move",
			zap.String("scenario", start.Scenario.Name),
			zap.Int("ply", plies))
	} else {
		d.logger().Debug("playout_oracle_error",
			zap.String("scenario", start.Scenario.Name),
			zap.Int("ply", plies),
			zap.Error(err))
	}
	return Playout{State: Terminal, Outcome: domain.Invalid, Plies: plies, Err: err}
}

func (d Driver) truncate(start Start, game *nchess.Game) domain.Outcome {
	policy := d.Truncation
	if start.Scenario.Truncation != "" {
		policy = start.Scenario.Truncation
	}
	if policy == domain.TruncateMaterial {
		return MaterialOutcome(game.Position().Board())
	}
	return domain.Invalid
}

func (d Driver) finish(start Start, p Playout) Playout {
	if d.MinPlies > 0 && start.PrefixPlies+p.Plies < d.MinPlies {
		p.Outcome = domain.Invalid
	}
	return p
}

func classifyTerminal(o nchess.Outcome) domain.Outcome {
	switch o {
	case nchess.WhiteWon:
		return domain.WhiteWin
	case nchess.BlackWon:
		return domain.BlackWin
	case nchess.Draw:
		return domain.Draw
	default:
		return domain.Invalid
	}
}

func claimDraw(game *nchess.Game) {
	if game.Outcome() != nchess.NoOutcome {
		return
	}
	for _, method := range game.EligibleDraws() {
		if method == nchess.ThreefoldRepetition || method == nchess.FiftyMoveRule {
			_ = game.Draw(method)
			return
		}
	}
}

package montecarlo

import (
	nchess "github.com/corentings/chess/v2"
	"github.com/park285/cheese-montecarlo/internal/domain"
)

var pieceValues = map[nchess.PieceType]int{
	nchess.Pawn:   1,
	nchess.Knight: 3,
	nchess.Bishop: 3,
	nchess.Rook:   5,
	nchess.Queen:  9,
}

// MaterialScore is the summed piece value per side; kings count zero.
type MaterialScore struct {
	White int
	Black int
}

func (m MaterialScore) Diff() int { return m.White - m.Black }

func Material(board *nchess.Board) MaterialScore {
	var score MaterialScore
	if board == nil {
		return score
	}
	for _, piece := range board.SquareMap() {
		value := pieceValues[piece.Type()]
		if value == 0 {
			continue
		}
		if piece.Color() == nchess.White {
			score.White += value
		} else {
			score.Black += value
		}
	}
	return score
}

// MaterialOutcome awards the game to the side with strictly more material.
func MaterialOutcome(board *nchess.Board) domain.Outcome {
	switch diff := Material(board).Diff(); {
	case diff > 0:
		return domain.WhiteWin
	case diff < 0:
		return domain.BlackWin
	default:
		return domain.Draw
	}
}

package reinforce

import (
	"math"

	"github.com/qnkhuat/garrison/pkg/board"
)

// Centrality is 1 at the board centre and falls to near zero at the rim.
func Centrality(sq board.Square) float64 {
	f, r := float64(sq.File()), float64(sq.Rank())
	return (3.5 - math.Abs(f-3.5)) * (3.5 - math.Abs(r-3.5)) / 12.25
}

// promotionDistance counts ranks left before a pawn of side promotes.
func promotionDistance(sq board.Square, side board.Side) int {
	if side == board.White {
		return 7 - sq.Rank()
	}
	return sq.Rank()
}

func squareActivity(r board.Reader, sq board.Square, kind board.Kind, side board.Side) float64 {
	c := Centrality(sq)
	score := c * 0.3
	switch kind {
	case board.Queen:
		score += 0.7
	case board.Rook:
		if board.IsOpenFile(r, sq.File()) {
			score += 0.6
		} else {
			score += 0.3
		}
	case board.Knight:
		score += c * 0.5
	case board.Bishop:
		score += 0.4
	case board.Pawn:
		score += float64(7-promotionDistance(sq, side)) / 7 * 0.5
	}
	return score
}

// PieceActivity is the best activity the pending piece could reach on any of
// its drop squares.
func PieceActivity(r board.Reader, p *Pending) float64 {
	best := 0.0
	if p == nil {
		return best
	}
	for _, sq := range p.Squares {
		best = max(best, squareActivity(r, sq, p.Kind, p.Side))
	}
	return best
}

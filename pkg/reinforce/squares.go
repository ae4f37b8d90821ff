package reinforce

import "github.com/qnkhuat/garrison/pkg/board"

func squareScore(r board.Reader, sq board.Square, kind board.Kind) float64 {
	c := Centrality(sq)
	score := c * 0.3
	if sq.OnRim() {
		score -= 0.2
	}
	switch kind {
	case board.Rook:
		if board.IsOpenFile(r, sq.File()) {
			score += 0.5
		}
	case board.Knight:
		score += c * 0.5
	case board.Queen:
		score += c * 0.3
	}
	return score
}

// ChooseSquare picks the drop square with the highest score. Ties keep the
// earlier square. ok is false when there is nothing to choose from.
func ChooseSquare(r board.Reader, p *Pending) (sq board.Square, ok bool) {
	if p.Empty() {
		return board.NoSquare, false
	}
	best := p.Squares[0]
	bestScore := squareScore(r, best, p.Kind)
	for _, cand := range p.Squares[1:] {
		if s := squareScore(r, cand, p.Kind); s > bestScore {
			best, bestScore = cand, s
		}
	}
	return best, true
}

package reinforce

import "github.com/qnkhuat/garrison/pkg/board"

// KingDanger scores how exposed side's king is, from 0 (safe) to 1.
// A missing king counts as maximum danger.
func KingDanger(st board.State, side board.Side) float64 {
	danger := 0.0

	if st.Turn() == side && st.InCheck() {
		danger += 0.6
		if len(st.LegalMoves()) <= 2 {
			danger += 0.3
		}
	}

	if threats := CheckmateThreats(st, side); threats > 0 {
		danger += min(float64(threats)*0.4, 0.8)
	}

	king, ok := board.FindKing(st, side)
	if !ok {
		return 1
	}

	danger += (1 - pawnShield(st, side, king)) * 0.2
	danger += enemyProximity(st, side, king) * 0.3
	danger += centerExposure(king) * 0.2

	return clamp01(danger)
}

// pawnShield counts own pawns on the three squares in front of the king.
func pawnShield(r board.Reader, side board.Side, king board.Square) float64 {
	rank := king.Rank() + 1
	if side == board.Black {
		rank = king.Rank() - 1
	}
	shield := 0.0
	for f := king.File() - 1; f <= king.File()+1; f++ {
		sq := board.NewSquare(f, rank)
		if sq == board.NoSquare {
			continue
		}
		if p, ok := r.PieceAt(sq); ok && p.Kind == board.Pawn && p.Side == side {
			shield += 0.33
		}
	}
	return shield
}

// enemyProximity weighs enemy pieces within two squares of the king, the
// closer the heavier.
func enemyProximity(r board.Reader, side board.Side, king board.Square) float64 {
	score := 0.0
	for df := -2; df <= 2; df++ {
		for dr := -2; dr <= 2; dr++ {
			sq := board.NewSquare(king.File()+df, king.Rank()+dr)
			if sq == board.NoSquare {
				continue
			}
			if p, ok := r.PieceAt(sq); ok && p.Side != side {
				score += float64(3-board.Distance(sq, king)) / 6
			}
		}
	}
	return min(score, 1)
}

func centerExposure(king board.Square) float64 {
	fileDanger, rankDanger := 0.0, 0.0
	if min(king.File(), 7-king.File()) >= 2 {
		fileDanger = 0.5
	}
	if king.Rank() >= 2 && king.Rank() <= 5 {
		rankDanger = 0.3
	}
	return (fileDanger + rankDanger) / 2
}

func clamp01(v float64) float64 {
	return max(0, min(v, 1))
}

package board

var (
	knightJumps = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = [8][2]int{{-1, 1}, {0, 1}, {1, 1}, {-1, 0}, {1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	rookRays    = [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	bishopRays  = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

func pieceOn(r Reader, file, rank int) (Piece, bool) {
	sq := NewSquare(file, rank)
	if sq == NoSquare {
		return Piece{}, false
	}
	return r.PieceAt(sq)
}

// Attacked reports whether any piece of side by attacks sq.
func Attacked(r Reader, sq Square, by Side) bool {
	f, rk := sq.File(), sq.Rank()

	// a pawn attacks forward diagonally, so look one rank behind sq
	dir := -1
	if by == Black {
		dir = 1
	}
	for _, df := range [2]int{-1, 1} {
		if p, ok := pieceOn(r, f+df, rk+dir); ok && p.Side == by && p.Kind == Pawn {
			return true
		}
	}
	for _, j := range knightJumps {
		if p, ok := pieceOn(r, f+j[0], rk+j[1]); ok && p.Side == by && p.Kind == Knight {
			return true
		}
	}
	for _, s := range kingSteps {
		if p, ok := pieceOn(r, f+s[0], rk+s[1]); ok && p.Side == by && p.Kind == King {
			return true
		}
	}
	if slides(r, f, rk, by, rookRays[:], Rook) {
		return true
	}
	return slides(r, f, rk, by, bishopRays[:], Bishop)
}

func slides(r Reader, f, rk int, by Side, rays [][2]int, kind Kind) bool {
	for _, ray := range rays {
		for step := 1; step < 8; step++ {
			sq := NewSquare(f+ray[0]*step, rk+ray[1]*step)
			if sq == NoSquare {
				break
			}
			p, ok := r.PieceAt(sq)
			if !ok {
				continue
			}
			if p.Side == by && (p.Kind == kind || p.Kind == Queen) {
				return true
			}
			break
		}
	}
	return false
}

// Neighbours lists the on-board squares around sq in a fixed order: the rank
// above from the a-file side, the same rank, then the rank below.
func Neighbours(sq Square) []Square {
	out := make([]Square, 0, 8)
	for _, s := range kingSteps {
		if n := NewSquare(sq.File()+s[0], sq.Rank()+s[1]); n != NoSquare {
			out = append(out, n)
		}
	}
	return out
}

// withPiece shows r with p standing on sq.
type withPiece struct {
	Reader
	sq Square
	p  Piece
}

func (w withPiece) PieceAt(sq Square) (Piece, bool) {
	if sq == w.sq {
		return w.p, true
	}
	return w.Reader.PieceAt(sq)
}

// DropChecks reports whether the enemy king would be attacked once p stands
// on sq.
func DropChecks(r Reader, sq Square, p Piece) bool {
	king, ok := FindKing(r, p.Side.Other())
	if !ok {
		return false
	}
	return Attacked(withPiece{Reader: r, sq: sq, p: p}, king, p.Side)
}

package reinforce

import (
	"fmt"
	"strings"

	"github.com/qnkhuat/garrison/pkg/board"
)

// Pending is a reinforcement owed to Side that has not been placed yet.
type Pending struct {
	Side    board.Side
	Kind    board.Kind
	Squares []board.Square
}

// Empty reports whether there is no reinforcement or nowhere to drop it.
func (p *Pending) Empty() bool {
	return p == nil || len(p.Squares) == 0
}

func (p *Pending) Contains(sq board.Square) bool {
	if p == nil {
		return false
	}
	for _, s := range p.Squares {
		if s == sq {
			return true
		}
	}
	return false
}

// Piece is the piece that will be dropped.
func (p *Pending) Piece() board.Piece {
	return board.Piece{Kind: p.Kind, Side: p.Side}
}

// Refresh recomputes the drop squares, which move with the king. On its own
// turn the side may not drop a piece attacking the enemy king. It returns
// false once no square is left and the reinforcement should be dropped.
func (p *Pending) Refresh(st board.State) bool {
	if p == nil {
		return false
	}
	p.Squares = DropSquares(st, p.Side)
	if st.Turn() == p.Side {
		legal := p.Squares[:0]
		for _, sq := range p.Squares {
			if !board.DropChecks(st, sq, p.Piece()) {
				legal = append(legal, sq)
			}
		}
		p.Squares = legal
	}
	return len(p.Squares) > 0
}

func (p *Pending) String() string {
	if p == nil {
		return "none"
	}
	names := make([]string, len(p.Squares))
	for i, sq := range p.Squares {
		names[i] = sq.String()
	}
	return fmt.Sprintf("%s %s [%s]", p.Side, p.Kind, strings.Join(names, " "))
}

// KindForDeficit picks the largest piece that does not exceed the deficit.
func KindForDeficit(deficit int) (board.Kind, bool) {
	for _, k := range []board.Kind{board.Queen, board.Rook, board.Bishop, board.Pawn} {
		if deficit >= k.Value() {
			return k, true
		}
	}
	return board.NoKind, false
}

// WeakerSide returns the side with less material and by how much it trails.
func WeakerSide(r board.Reader) (board.Side, int, bool) {
	t := Material(r)
	switch {
	case t.White < t.Black:
		return board.White, t.Black - t.White, true
	case t.Black < t.White:
		return board.Black, t.White - t.Black, true
	}
	return board.White, 0, false
}

func enemyBackRank(side board.Side) int {
	if side == board.White {
		return 7
	}
	return 0
}

// DropSquares lists the empty squares next to side's king, never on the
// enemy back rank. A king missing or standing on that rank allows none.
func DropSquares(r board.Reader, side board.Side) []board.Square {
	king, ok := board.FindKing(r, side)
	if !ok || king.Rank() == enemyBackRank(side) {
		return nil
	}
	var squares []board.Square
	for _, sq := range board.Neighbours(king) {
		if sq.Rank() == enemyBackRank(side) {
			continue
		}
		if _, occupied := r.PieceAt(sq); occupied {
			continue
		}
		squares = append(squares, sq)
	}
	return squares
}

// Offer creates the reinforcement owed to the weaker side, or nil when
// material is level, the side to move is in check or mated, or there is no
// square to drop on.
func Offer(st board.State) *Pending {
	side, deficit, ok := WeakerSide(st)
	if !ok {
		return nil
	}
	if st.InCheck() || st.IsCheckmate() {
		return nil
	}
	kind, ok := KindForDeficit(deficit)
	if !ok {
		return nil
	}
	p := &Pending{Side: side, Kind: kind}
	if !p.Refresh(st) {
		return nil
	}
	return p
}

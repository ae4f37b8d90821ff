package board

import "errors"

var (
	ErrIllegalMove = errors.New("illegal move")
	ErrNoUndo      = errors.New("no speculative move to undo")
	ErrOccupied    = errors.New("square is occupied")
	ErrBadPiece    = errors.New("piece cannot be dropped")
	ErrNoKing      = errors.New("position is missing a king")
	ErrIllegalDrop = errors.New("drop attacks the king of the side not to move")
)

// Reader gives access to board contents.
type Reader interface {
	PieceAt(sq Square) (Piece, bool)
}

// State is the game state the reinforcement code reasons about. Apart from
// the speculative Apply/Undo pair every method is a pure query. Apply and
// Undo nest LIFO.
type State interface {
	Reader
	Turn() Side
	InCheck() bool
	IsCheckmate() bool
	LegalMoves() []Move
	Encoding() string
	MoveCount() int
	Apply(m Move) error
	Undo() error
	// Snapshot returns an independent copy whose speculative moves are
	// invisible to the receiver.
	Snapshot() State
}

// FindKing returns the square of side's king.
func FindKing(r Reader, side Side) (Square, bool) {
	for sq := Square(0); sq < 64; sq++ {
		if p, ok := r.PieceAt(sq); ok && p.Kind == King && p.Side == side {
			return sq, true
		}
	}
	return NoSquare, false
}

// IsOpenFile reports whether no pawn of either side stands on file.
func IsOpenFile(r Reader, file int) bool {
	for rank := 0; rank < 8; rank++ {
		if p, ok := r.PieceAt(NewSquare(file, rank)); ok && p.Kind == Pawn {
			return false
		}
	}
	return true
}

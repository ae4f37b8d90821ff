package reinforce

import (
	"context"
	"testing"

	"github.com/qnkhuat/garrison/pkg/board"
	"github.com/qnkhuat/garrison/pkg/evaluator"
)

// fakeState is a board.State whose check status and legal moves are set by
// hand, for positions a real move generator would refuse.
type fakeState struct {
	pieces map[board.Square]board.Piece
	turn   board.Side
	check  bool
	mate   bool
	moves  []board.Move
	plies  int
	depth  int
}

func (f *fakeState) PieceAt(sq board.Square) (board.Piece, bool) {
	p, ok := f.pieces[sq]
	return p, ok
}

func (f *fakeState) Turn() board.Side         { return f.turn }
func (f *fakeState) InCheck() bool            { return f.check }
func (f *fakeState) IsCheckmate() bool        { return f.mate }
func (f *fakeState) LegalMoves() []board.Move { return f.moves }
func (f *fakeState) Encoding() string         { return "fake" }
func (f *fakeState) MoveCount() int           { return f.plies }

func (f *fakeState) Apply(board.Move) error {
	f.depth++
	return nil
}

func (f *fakeState) Undo() error {
	if f.depth == 0 {
		return board.ErrNoUndo
	}
	f.depth--
	return nil
}

func (f *fakeState) Snapshot() board.State {
	c := *f
	c.depth = 0
	return &c
}

func place(t *testing.T, layout map[string]board.Piece) map[board.Square]board.Piece {
	t.Helper()
	out := make(map[board.Square]board.Piece, len(layout))
	for s, p := range layout {
		sq, err := board.ParseSquare(s)
		if err != nil {
			t.Fatal(err)
		}
		out[sq] = p
	}
	return out
}

func squares(t *testing.T, names ...string) []board.Square {
	t.Helper()
	out := make([]board.Square, len(names))
	for i, s := range names {
		sq, err := board.ParseSquare(s)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = sq
	}
	return out
}

func game(t *testing.T, fen string) *board.Game {
	t.Helper()
	g, err := board.FromFEN(fen)
	if err != nil {
		t.Fatalf("FromFEN(%q): %v", fen, err)
	}
	return g
}

type fixedEvaluator struct {
	eval  evaluator.Evaluation
	err   error
	calls int
}

func (f *fixedEvaluator) Evaluate(ctx context.Context, fen string, depth int) (evaluator.Evaluation, error) {
	f.calls++
	return f.eval, f.err
}

var (
	wK = board.Piece{Kind: board.King, Side: board.White}
	wP = board.Piece{Kind: board.Pawn, Side: board.White}
	wR = board.Piece{Kind: board.Rook, Side: board.White}
	bK = board.Piece{Kind: board.King, Side: board.Black}
	bQ = board.Piece{Kind: board.Queen, Side: board.Black}
	bR = board.Piece{Kind: board.Rook, Side: board.Black}
	bN = board.Piece{Kind: board.Knight, Side: board.Black}
	bB = board.Piece{Kind: board.Bishop, Side: board.Black}
	bP = board.Piece{Kind: board.Pawn, Side: board.Black}
)

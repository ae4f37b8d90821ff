package pkg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/qnkhuat/garrison/pkg/board"
	"github.com/qnkhuat/garrison/pkg/evaluator"
	"github.com/qnkhuat/garrison/pkg/reinforce"
)

const (
	// White has lost its queen; d1 is the only empty square by its king.
	downAQueen = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNB1KBNR w KQkq - 0 1"
	// White is a pawn down with b1 as its only drop square, which the
	// knight can take.
	knightTakesSquare = "k7/8/8/8/8/2n5/PP6/K7 b - - 0 1"
	// White to move in check from the rook with three king moves.
	rookCheck = "4k3/8/8/8/8/8/8/r3K3 w - - 0 1"
)

func newTestSession() *Session {
	return NewSession(reinforce.NewEngine(reinforce.DefaultConfig(), nil), nil, zerolog.Nop())
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestSession()
	ctx := context.Background()

	st, err := s.Load(downAQueen)
	if err != nil {
		t.Fatal(err)
	}
	if st.Pending == nil || st.Pending.Side != "White" || st.Pending.Piece != "queen" {
		t.Fatalf("pending = %+v, want a white queen", st.Pending)
	}
	if len(st.Pending.Squares) != 1 || st.Pending.Squares[0] != "d1" {
		t.Fatalf("pending squares = %v, want [d1]", st.Pending.Squares)
	}

	advice, err := s.Advise(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if advice.Use || advice.Verdict != reinforce.Wait.String() || advice.Square != "d1" {
		t.Errorf("advice = %+v, want wait with d1", advice)
	}

	if _, err := s.Place("e4"); !errors.Is(err, ErrSquareInvalid) {
		t.Errorf("Place(e4) = %v, want ErrSquareInvalid", err)
	}
	if _, err := s.Place("zz"); err == nil {
		t.Error("Place(zz) accepted a bad square")
	}

	st, err = s.Place("d1")
	if err != nil {
		t.Fatal(err)
	}
	if !st.Applied || st.Pending != nil || st.Turn != "White" {
		t.Errorf("after placing: %+v", st)
	}
	if _, err := s.Place("d1"); !errors.Is(err, ErrNoPending) {
		t.Errorf("second Place = %v, want ErrNoPending", err)
	}
	if _, err := s.Grant("white", "rook"); !errors.Is(err, ErrApplied) {
		t.Errorf("Grant after placing = %v, want ErrApplied", err)
	}

	// The game goes on and no second reinforcement is offered.
	if st, err = s.Move("e2e4"); err != nil || st.Pending != nil {
		t.Errorf("Move(e2e4) = %+v, %v", st, err)
	}
	if _, err := s.Move("e2e4"); !errors.Is(err, board.ErrIllegalMove) {
		t.Errorf("replaying e2e4 = %v, want ErrIllegalMove", err)
	}
}

func TestSessionNoPending(t *testing.T) {
	s := newTestSession()
	if _, err := s.Load(""); err != nil {
		t.Fatal(err)
	}
	advice, err := s.Advise(context.Background())
	if !errors.Is(err, ErrNoPending) || advice.Verdict != reinforce.NotApplicable.String() {
		t.Errorf("Advise = %+v, %v", advice, err)
	}
	if _, err := s.Load("not a fen"); err == nil {
		t.Error("Load accepted garbage")
	}
}

func TestSessionPendingCancelled(t *testing.T) {
	s := newTestSession()
	st, err := s.Load(knightTakesSquare)
	if err != nil {
		t.Fatal(err)
	}
	if st.Pending == nil || st.Pending.Piece != "pawn" {
		t.Fatalf("pending = %+v, want a white pawn", st.Pending)
	}
	st, err = s.Move("c3b1")
	if err != nil {
		t.Fatal(err)
	}
	if st.Pending != nil {
		t.Errorf("pending survived losing its only square: %+v", st.Pending)
	}
}

func TestSessionGrantAndAutoPlace(t *testing.T) {
	s := newTestSession()
	st, err := s.Load(rookCheck)
	if err != nil {
		t.Fatal(err)
	}
	if st.Pending != nil {
		t.Fatal("no reinforcement is offered while in check")
	}
	if _, err := s.Grant("white", "king"); !errors.Is(err, board.ErrBadPiece) {
		t.Errorf("granting a king = %v, want ErrBadPiece", err)
	}
	if _, err := s.Grant("green", "queen"); err == nil {
		t.Error("Grant accepted an unknown side")
	}
	if _, err := s.Grant("white", "queen"); err != nil {
		t.Fatal(err)
	}

	advice, err := s.AutoPlace(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !advice.Use || advice.Reason != reinforce.ReasonInCheckFewMoves.String() {
		t.Errorf("advice = %s (%s), want use now in check", advice.Verdict, advice.Reason)
	}
	if !advice.Placed || advice.Square != "d2" || !advice.State.Applied {
		t.Errorf("advice = %+v, want the queen placed on d2", advice)
	}
}

func TestSessionPlaceRefusesCheckingDrop(t *testing.T) {
	s := newTestSession()
	if _, err := s.Load("8/8/8/8/8/2k5/8/K7 w - - 0 1"); err != nil {
		t.Fatal(err)
	}
	st, err := s.Grant("white", "queen")
	if err != nil {
		t.Fatal(err)
	}
	for _, sq := range st.Pending.Squares {
		if sq == "b2" {
			t.Fatalf("pending squares %v offer b2, which attacks the black king", st.Pending.Squares)
		}
	}
	if _, err := s.Place("b2"); !errors.Is(err, ErrSquareInvalid) {
		t.Errorf("Place(b2) = %v, want ErrSquareInvalid", err)
	}
	if st, err = s.Place("a2"); err != nil || !st.Applied {
		t.Fatalf("Place(a2) = %+v, %v", st, err)
	}
	if st.Over {
		t.Errorf("game over after a legal drop: %s", st.Result)
	}
}

func TestSessionHandle(t *testing.T) {
	s := newTestSession()
	ctx := context.Background()
	tests := []struct {
		name string
		in   MessageInterface
		want MessageType
	}{
		{"load", MessageLoad{Fen: downAQueen}, TypeMessageState},
		{"advise", MessageAdvise{}, TypeMessageAdvice},
		{"bad place", MessagePlace{Square: "a8"}, TypeMessageError},
		{"state", MessageState{}, TypeMessageState},
		{"place", MessagePlace{Square: "d1"}, TypeMessageState},
		{"advise without pending", MessageAdvise{}, TypeMessageAdvice},
		{"move", MessageMove{Move: "e2e4"}, TypeMessageState},
		{"illegal move", MessageMove{Move: "e2e4"}, TypeMessageError},
		{"grant", MessageGrant{Side: "black", Piece: "pawn"}, TypeMessageError},
		{"engine without evaluator", MessageEngine{}, TypeMessageError},
		{"new", MessageNew{Seed: 3}, TypeMessageState},
		{"unsupported", MessageError{Msg: "hi"}, TypeMessageError},
	}
	for _, tt := range tests {
		got := s.Handle(ctx, Wrap(tt.in))
		if got.Type() != tt.want {
			t.Errorf("%s: reply %s %+v, want %s", tt.name, got.Type(), got, tt.want)
		}
	}
}

// uciResponder plays a UCI engine on the far side of a pipe: every "go" is
// answered with a small score and the move chosen for the last position.
func uciResponder(in io.Reader, out io.Writer, choose func(fen string) string) {
	scanner := bufio.NewScanner(in)
	var fen string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "position fen "):
			fen = strings.TrimPrefix(line, "position fen ")
		case strings.HasPrefix(line, "go"):
			reply := fmt.Sprintf("info depth 8 score cp 20\nbestmove %s\n", choose(fen))
			if _, err := io.WriteString(out, reply); err != nil {
				return
			}
		case line == "quit":
			return
		}
	}
}

func newEngineSession(t *testing.T, choose func(fen string) string) *Session {
	t.Helper()
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	go func() {
		uciResponder(inR, outW, choose)
		outW.Close()
	}()
	client := evaluator.NewClient(evaluator.NewStream(outR, inW), zerolog.Nop())
	t.Cleanup(func() {
		inR.Close()
		outR.Close()
		client.Close()
	})
	return NewSession(reinforce.NewEngine(reinforce.DefaultConfig(), client), nil, zerolog.Nop())
}

func TestSessionEngineTurn(t *testing.T) {
	tests := []struct {
		name    string
		fen     string
		grant   string
		move    string
		verdict reinforce.Verdict
		placed  bool
		turn    string
		pending bool
	}{
		{
			name:    "no reinforcement",
			fen:     "",
			move:    "e2e4",
			verdict: reinforce.NotApplicable,
			turn:    "Black",
		},
		{
			name:    "reinforcement kept for later",
			fen:     downAQueen,
			move:    "e2e4",
			verdict: reinforce.Wait,
			turn:    "Black",
			pending: true,
		},
		{
			name:    "reinforcement placed, then a move",
			fen:     rookCheck,
			grant:   "queen",
			move:    "e1f2",
			verdict: reinforce.UseNow,
			placed:  true,
			turn:    "Black",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newEngineSession(t, func(string) string { return tt.move })
			if _, err := s.Load(tt.fen); err != nil {
				t.Fatal(err)
			}
			if tt.grant != "" {
				if _, err := s.Grant("white", tt.grant); err != nil {
					t.Fatal(err)
				}
			}
			advice, err := s.EngineTurn(context.Background())
			if err != nil {
				t.Fatalf("EngineTurn: %v", err)
			}
			if advice.Move != tt.move || advice.Verdict != tt.verdict.String() || advice.Placed != tt.placed {
				t.Errorf("EngineTurn = move %q verdict %q placed %v, want %q %q %v",
					advice.Move, advice.Verdict, advice.Placed, tt.move, tt.verdict, tt.placed)
			}
			st := advice.State
			if st.Turn != tt.turn || (st.Pending != nil) != tt.pending || st.Applied != tt.placed {
				t.Errorf("state after the engine turn = %+v", st)
			}
		})
	}
}

func TestSessionEngineTurnBadMove(t *testing.T) {
	s := newEngineSession(t, func(string) string { return "e2e5" })
	advice, err := s.EngineTurn(context.Background())
	if !errors.Is(err, board.ErrIllegalMove) {
		t.Fatalf("EngineTurn = %v, want ErrIllegalMove", err)
	}
	if advice.Move != "" || advice.State.Turn != "White" {
		t.Errorf("a rejected engine move changed the game: %+v", advice)
	}

	if _, err := s.Load("7k/6Q1/6K1/8/8/8/8/8 b - - 0 1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.EngineTurn(context.Background()); !errors.Is(err, ErrGameOver) {
		t.Errorf("EngineTurn after mate = %v, want ErrGameOver", err)
	}
}

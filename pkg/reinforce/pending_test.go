package reinforce

import (
	"strings"
	"testing"

	"github.com/qnkhuat/garrison/pkg/board"
)

func TestKindForDeficit(t *testing.T) {
	tests := []struct {
		deficit int
		want    board.Kind
		ok      bool
	}{
		{-3, board.NoKind, false},
		{0, board.NoKind, false},
		{1, board.Pawn, true},
		{2, board.Pawn, true},
		{3, board.Bishop, true},
		{4, board.Bishop, true},
		{5, board.Rook, true},
		{8, board.Rook, true},
		{9, board.Queen, true},
		{25, board.Queen, true},
	}
	for _, tt := range tests {
		got, ok := KindForDeficit(tt.deficit)
		if got != tt.want || ok != tt.ok {
			t.Errorf("KindForDeficit(%d) = %s, %v; want %s, %v", tt.deficit, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDropSquares(t *testing.T) {
	tests := []struct {
		name   string
		layout map[string]board.Piece
		side   board.Side
		want   []string
	}{
		{
			name:   "open king",
			layout: map[string]board.Piece{"e4": wK},
			side:   board.White,
			want:   []string{"d5", "e5", "f5", "d4", "f4", "d3", "e3", "f3"},
		},
		{
			name:   "occupied squares skipped",
			layout: map[string]board.Piece{"g1": wK, "f2": wP, "g2": wP, "h2": wP, "f1": wR},
			side:   board.White,
			want:   []string{"h1"},
		},
		{
			name:   "never on the enemy back rank",
			layout: map[string]board.Piece{"e2": bK},
			side:   board.Black,
			want:   []string{"d3", "e3", "f3", "d2", "f2"},
		},
		{
			name:   "king on the enemy back rank",
			layout: map[string]board.Piece{"e8": wK},
			side:   board.White,
		},
		{
			name:   "missing king",
			layout: map[string]board.Piece{"e8": bK},
			side:   board.White,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DropSquares(&fakeState{pieces: place(t, tt.layout)}, tt.side)
			if len(got) != len(tt.want) {
				t.Fatalf("DropSquares = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i].String() != tt.want[i] {
					t.Errorf("DropSquares[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestOffer(t *testing.T) {
	tests := []struct {
		name    string
		fen     string
		side    board.Side
		kind    board.Kind
		squares []string
	}{
		{
			name: "level material",
			fen:  "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		},
		{
			name:    "white down a queen",
			fen:     "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNB1KBNR w KQkq - 0 1",
			side:    board.White,
			kind:    board.Queen,
			squares: []string{"d1"},
		},
		{
			name:    "black down a queen, white to move",
			fen:     "rnb1kbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			side:    board.Black,
			kind:    board.Queen,
			squares: []string{"d8"},
		},
		{
			name:    "black down two pawns",
			fen:     "4k3/8/8/8/8/8/PP6/4K3 b - - 0 1",
			side:    board.Black,
			kind:    board.Pawn,
			squares: []string{"d8", "f8", "d7", "e7", "f7"},
		},
		{
			name: "side to move in check",
			fen:  "4k3/8/8/8/8/8/8/q3K3 w - - 0 1",
		},
		{
			name: "no square next to the king",
			fen:  "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/1NBQKBNR w Kkq - 0 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := game(t, tt.fen)
			p := Offer(g)
			if tt.squares == nil {
				if p != nil {
					t.Fatalf("Offer = %s, want none", p)
				}
				return
			}
			if p == nil {
				t.Fatal("Offer = none")
			}
			if p.Side != tt.side || p.Kind != tt.kind {
				t.Errorf("Offer = %s, want %s %s", p, tt.side, tt.kind)
			}
			if len(p.Squares) != len(tt.squares) {
				t.Fatalf("Offer squares = %v, want %v", p.Squares, tt.squares)
			}
			for i, s := range tt.squares {
				if p.Squares[i].String() != s {
					t.Errorf("square %d = %s, want %s", i, p.Squares[i], s)
				}
			}
		})
	}
}

func TestPendingRefresh(t *testing.T) {
	st := &fakeState{pieces: place(t, map[string]board.Piece{"a1": wK, "a2": wP, "b2": wP})}
	p := &Pending{Side: board.White, Kind: board.Rook}
	if !p.Refresh(st) || len(p.Squares) != 1 || p.Squares[0].String() != "b1" {
		t.Fatalf("Refresh = %v", p.Squares)
	}
	if !p.Contains(p.Squares[0]) || p.Empty() {
		t.Error("pending should contain b1")
	}

	b1 := p.Squares[0]
	st.pieces[b1] = bN
	if p.Refresh(st) {
		t.Errorf("Refresh with every square taken = true, squares %v", p.Squares)
	}
	if !p.Empty() || p.Contains(b1) {
		t.Error("pending should be empty once its square is gone")
	}

	var none *Pending
	if !none.Empty() || none.Contains(b1) || none.Refresh(st) || none.String() != "none" {
		t.Error("nil pending should behave as no reinforcement")
	}
}

func TestPendingRefreshSkipsChecks(t *testing.T) {
	layout := map[string]board.Piece{"a1": wK, "c3": bK}
	tests := []struct {
		turn board.Side
		want []string
	}{
		{board.White, []string{"a2", "b1"}},
		{board.Black, []string{"a2", "b2", "b1"}},
	}
	for _, tt := range tests {
		st := &fakeState{pieces: place(t, layout), turn: tt.turn}
		p := &Pending{Side: board.White, Kind: board.Queen}
		if !p.Refresh(st) {
			t.Fatalf("%s to move: no square", tt.turn)
		}
		got := make([]string, len(p.Squares))
		for i, sq := range p.Squares {
			got[i] = sq.String()
		}
		if strings.Join(got, " ") != strings.Join(tt.want, " ") {
			t.Errorf("%s to move: squares %v, want %v", tt.turn, got, tt.want)
		}
	}
}

package board

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/notnil/chess"
)

var toChessPiece = map[Piece]chess.Piece{
	{Pawn, White}: chess.WhitePawn, {Knight, White}: chess.WhiteKnight,
	{Bishop, White}: chess.WhiteBishop, {Rook, White}: chess.WhiteRook,
	{Queen, White}: chess.WhiteQueen, {King, White}: chess.WhiteKing,
	{Pawn, Black}: chess.BlackPawn, {Knight, Black}: chess.BlackKnight,
	{Bishop, Black}: chess.BlackBishop, {Rook, Black}: chess.BlackRook,
	{Queen, Black}: chess.BlackQueen, {King, Black}: chess.BlackKing,
}

func fromPieceType(t chess.PieceType) Kind {
	switch t {
	case chess.Pawn:
		return Pawn
	case chess.Knight:
		return Knight
	case chess.Bishop:
		return Bishop
	case chess.Rook:
		return Rook
	case chess.Queen:
		return Queen
	case chess.King:
		return King
	}
	return NoKind
}

func fromColor(c chess.Color) Side {
	if c == chess.Black {
		return Black
	}
	return White
}

// Game adapts a notnil/chess position to State. Positions produced by
// chess.Position.Update are never mutated afterwards, so speculative moves
// only swap pointers and a snapshot can share the current position.
type Game struct {
	pos   *chess.Position
	stack []*chess.Position
}

// NewGame starts from the standard initial position.
func NewGame() *Game {
	return &Game{pos: chess.NewGame(chess.UseNotation(chess.UCINotation{})).Position()}
}

func FromFEN(fen string) (*Game, error) {
	opt, err := chess.FEN(strings.TrimSpace(fen))
	if err != nil {
		return nil, fmt.Errorf("parse fen: %w", err)
	}
	game := chess.NewGame(opt, chess.UseNotation(chess.UCINotation{}))
	return &Game{pos: game.Position()}, nil
}

func (g *Game) PieceAt(sq Square) (Piece, bool) {
	if !sq.Valid() {
		return Piece{}, false
	}
	p := g.pos.Board().Piece(chess.Square(sq))
	if p == chess.NoPiece {
		return Piece{}, false
	}
	return Piece{Kind: fromPieceType(p.Type()), Side: fromColor(p.Color())}, true
}

func (g *Game) Turn() Side { return fromColor(g.pos.Turn()) }

// hasKings guards the move generator, which assumes both kings exist.
func (g *Game) hasKings() bool {
	_, w := FindKing(g, White)
	_, b := FindKing(g, Black)
	return w && b
}

func (g *Game) InCheck() bool {
	turn := g.Turn()
	king, ok := FindKing(g, turn)
	if !ok {
		return false
	}
	return Attacked(g, king, turn.Other())
}

func (g *Game) IsCheckmate() bool {
	if !g.hasKings() {
		return false
	}
	return g.pos.Status() == chess.Checkmate
}

func (g *Game) LegalMoves() []Move {
	if !g.hasKings() {
		return nil
	}
	valid := g.pos.ValidMoves()
	moves := make([]Move, 0, len(valid))
	for _, m := range valid {
		mv := Move{
			From:      Square(m.S1()),
			To:        Square(m.S2()),
			Promotion: fromPieceType(m.Promo()),
			Check:     m.HasTag(chess.Check),
		}
		if mv.Check {
			mv.Checkmate = g.pos.Update(m).Status() == chess.Checkmate
		}
		moves = append(moves, mv)
	}
	return moves
}

// Encoding returns the FEN of the current position.
func (g *Game) Encoding() string { return g.pos.String() }

// MoveCount is the number of half moves played, derived from the FEN
// fullmove counter and the side to move.
func (g *Game) MoveCount() int {
	fields := strings.Fields(g.pos.String())
	if len(fields) < 6 {
		return 0
	}
	full, err := strconv.Atoi(fields[5])
	if err != nil || full < 1 {
		return 0
	}
	plies := (full - 1) * 2
	if g.Turn() == Black {
		plies++
	}
	return plies
}

func (g *Game) find(m Move) (*chess.Move, bool) {
	for _, cm := range g.pos.ValidMoves() {
		if Square(cm.S1()) == m.From && Square(cm.S2()) == m.To && fromPieceType(cm.Promo()) == m.Promotion {
			return cm, true
		}
	}
	return nil, false
}

// Apply plays m speculatively; Undo restores the previous position.
func (g *Game) Apply(m Move) error {
	if !g.hasKings() {
		return ErrNoKing
	}
	cm, ok := g.find(m)
	if !ok {
		return fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}
	g.stack = append(g.stack, g.pos)
	g.pos = g.pos.Update(cm)
	return nil
}

func (g *Game) Undo() error {
	if len(g.stack) == 0 {
		return ErrNoUndo
	}
	g.pos = g.stack[len(g.stack)-1]
	g.stack = g.stack[:len(g.stack)-1]
	return nil
}

func (g *Game) Snapshot() State {
	return &Game{pos: g.pos}
}

// Play commits a move given in UCI notation. Pending speculative moves are
// discarded.
func (g *Game) Play(uci string) (Move, error) {
	if !g.hasKings() {
		return Move{}, ErrNoKing
	}
	uci = strings.ToLower(strings.TrimSpace(uci))
	for _, cm := range g.pos.ValidMoves() {
		if strings.Compare(cm.String(), uci) != 0 {
			continue
		}
		mv := Move{From: Square(cm.S1()), To: Square(cm.S2()), Promotion: fromPieceType(cm.Promo()), Check: cm.HasTag(chess.Check)}
		g.pos = g.pos.Update(cm)
		g.stack = nil
		mv.Checkmate = mv.Check && g.pos.Status() == chess.Checkmate
		return mv, nil
	}
	return Move{}, fmt.Errorf("%w: %s", ErrIllegalMove, uci)
}

// Drop puts p on an empty square, keeping the side to move and the move
// counters. Kings are never dropped, and the side to move may not drop a
// piece that attacks the enemy king.
func (g *Game) Drop(sq Square, p Piece) error {
	if !sq.Valid() {
		return fmt.Errorf("%w: %s", ErrBadPiece, sq)
	}
	cp, ok := toChessPiece[p]
	if !ok || p.Kind == King {
		return fmt.Errorf("%w: %s", ErrBadPiece, p.Kind)
	}
	if _, occupied := g.PieceAt(sq); occupied {
		return fmt.Errorf("%w: %s", ErrOccupied, sq)
	}
	if p.Side == g.Turn() && DropChecks(g, sq, p) {
		return fmt.Errorf("%w: %s on %s", ErrIllegalDrop, p.Kind, sq)
	}
	squares := g.pos.Board().SquareMap()
	squares[chess.Square(sq)] = cp
	fields := strings.Fields(g.pos.String())
	fields[0] = chess.NewBoard(squares).String()
	next, err := FromFEN(strings.Join(fields, " "))
	if err != nil {
		return err
	}
	g.pos = next.pos
	g.stack = nil
	return nil
}

// Outcome reports whether the game is over and how.
func (g *Game) Outcome() (over bool, method string) {
	if !g.hasKings() {
		return true, ErrNoKing.Error()
	}
	switch g.pos.Status() {
	case chess.Checkmate:
		return true, "checkmate"
	case chess.Stalemate:
		return true, "stalemate"
	}
	return false, ""
}

// Draw renders the board as text, rank 8 first.
func (g *Game) Draw() string {
	return g.pos.Board().Draw()
}

package reinforce

import "github.com/qnkhuat/garrison/pkg/board"

const (
	FullMaterial    = 78
	EndgameMaterial = 30
)

// Totals is the material each side has on the board, in pawns.
type Totals struct {
	White int
	Black int
}

func (t Totals) Of(side board.Side) int {
	if side == board.Black {
		return t.Black
	}
	return t.White
}

// Deficit is how far side trails its opponent; negative when ahead.
func (t Totals) Deficit(side board.Side) int {
	return t.Of(side.Other()) - t.Of(side)
}

func Material(r board.Reader) Totals {
	var t Totals
	for sq := board.Square(0); sq < 64; sq++ {
		p, ok := r.PieceAt(sq)
		if !ok {
			continue
		}
		if p.Side == board.White {
			t.White += p.Kind.Value()
		} else {
			t.Black += p.Kind.Value()
		}
	}
	return t
}

// PhaseOf maps total material to a phase between 0 (opening) and 1
// (endgame). The middlegame band is linear from 0.3 to 0.7.
func PhaseOf(total int) float64 {
	opening := FullMaterial * 0.9
	switch {
	case float64(total) >= opening:
		return 0
	case total <= EndgameMaterial:
		return 1
	}
	span := opening - EndgameMaterial
	pos := float64(total - EndgameMaterial)
	return 0.3 + (1-pos/span)*0.4
}

func GamePhase(r board.Reader) float64 {
	t := Material(r)
	return PhaseOf(t.White + t.Black)
}

// deficitFactor normalises the material deficit against twenty pawns. A
// side that is level or ahead gets 0.
func deficitFactor(t Totals, side board.Side) float64 {
	return clamp01(float64(t.Deficit(side)) / 20)
}

package board

import (
	"math/rand"
	"strings"
)

type weighted struct {
	kind   Kind
	weight int
}

var (
	backRankPieces = []weighted{{Rook, 2}, {Knight, 2}, {Bishop, 2}, {Queen, 1}}
	// pawns only ever stand on the second rank
	secondRankPieces = []weighted{{Rook, 2}, {Knight, 2}, {Bishop, 2}, {Queen, 1}, {Pawn, 4}}
)

func pick(rng *rand.Rand, pieces []weighted) Kind {
	total := 0
	for _, p := range pieces {
		total += p.weight
	}
	n := rng.Intn(total)
	for _, p := range pieces {
		if n < p.weight {
			return p.kind
		}
		n -= p.weight
	}
	return pieces[0].kind
}

// garrisonRank fills one rank, file a first. A king replaces the piece on a
// random file when withKing is set.
func garrisonRank(rng *rand.Rand, side Side, withKing bool, pieces []weighted) string {
	king := -1
	if withKing {
		king = rng.Intn(8)
	}
	var b strings.Builder
	for file := 0; file < 8; file++ {
		kind := King
		if file != king {
			kind = pick(rng, pieces)
		}
		b.WriteString(Piece{Kind: kind, Side: side}.String())
	}
	return b.String()
}

// RandomGarrison returns the FEN of a Garrison start: both back ranks and
// second ranks filled with weighted random pieces, one king per side on its
// back rank, the middle of the board empty and no castling rights. Only the
// second ranks carry pawns.
func RandomGarrison(rng *rand.Rand) string {
	ranks := []string{
		garrisonRank(rng, Black, true, backRankPieces),
		garrisonRank(rng, Black, false, secondRankPieces),
		"8", "8", "8", "8",
		garrisonRank(rng, White, false, secondRankPieces),
		garrisonRank(rng, White, true, backRankPieces),
	}
	return strings.Join(ranks, "/") + " w - - 0 1"
}

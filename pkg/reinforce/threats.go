package reinforce

import "github.com/qnkhuat/garrison/pkg/board"

// CheckmateThreats scans the opponent's replies one ply deep on a private
// snapshot: +2 for every move that mates side, +1 for every check that leaves
// side at most one legal reply. It is zero unless the opponent is to move.
func CheckmateThreats(st board.State, side board.Side) int {
	if st.Turn() == side {
		return 0
	}
	scratch := st.Snapshot()
	threats := 0
	for _, m := range scratch.LegalMoves() {
		if err := scratch.Apply(m); err != nil {
			continue
		}
		switch {
		case scratch.IsCheckmate():
			threats += 2
		case scratch.InCheck() && len(scratch.LegalMoves()) <= 1:
			threats++
		}
		if err := scratch.Undo(); err != nil {
			// the snapshot is unusable; what was counted so far stands
			return threats
		}
	}
	return threats
}

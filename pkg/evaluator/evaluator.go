// Package evaluator consults an external chess engine for a position score.
// Every answer is normalised to White's point of view in pawns.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTimeout     = errors.New("evaluator: no answer in time")
	ErrUnavailable = errors.New("evaluator: engine unavailable")
	ErrMalformed   = errors.New("evaluator: malformed engine response")
	ErrClosed      = errors.New("evaluator: closed")
)

// MateScore is the saturating value, in pawns, used for a forced mate.
const MateScore = 100.0

type Evaluation struct {
	// Pawns from White's point of view.
	Pawns float64
	// Mate is the signed mate distance from White's point of view, 0 when
	// the score is not a mate.
	Mate  int
	Depth int
	// BestMove is the engine's move in UCI notation, empty when it has none.
	BestMove string
}

// For returns the evaluation from the given side's point of view.
func (e Evaluation) For(black bool) float64 {
	if black {
		return -e.Pawns
	}
	return e.Pawns
}

func (e Evaluation) String() string {
	if e.Mate != 0 {
		return fmt.Sprintf("mate %d", e.Mate)
	}
	return fmt.Sprintf("%+.2f", e.Pawns)
}

// Evaluator scores a FEN position at a search depth.
type Evaluator interface {
	Evaluate(ctx context.Context, fen string, depth int) (Evaluation, error)
}

// Backend is a single engine connection. Search blocks until the engine
// answers, fails, or ctx is done; it is never called concurrently.
type Backend interface {
	Search(ctx context.Context, fen string, depth int) (Evaluation, error)
	Close() error
}

// blackToMove reads the active colour field of a FEN.
func blackToMove(fen string) bool {
	fields := strings.Fields(fen)
	return len(fields) > 1 && fields[1] == "b"
}

// FromEngine converts a side-to-move relative engine score to an
// Evaluation. mate is only meaningful when isMate is set.
func FromEngine(fen string, cp, mate int, isMate bool, depth int) Evaluation {
	ev := Evaluation{Depth: depth}
	if isMate {
		ev.Mate = mate
		if mate > 0 {
			ev.Pawns = MateScore
		} else {
			ev.Pawns = -MateScore
		}
	} else {
		ev.Pawns = float64(cp) / 100
	}
	if blackToMove(fen) {
		ev.Pawns = -ev.Pawns
		ev.Mate = -ev.Mate
	}
	return ev
}

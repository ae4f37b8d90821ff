package evaluator

import (
	"context"
	"fmt"
	"sync"

	"github.com/freeeve/uci"
)

// UCIOptions are the engine options set before the first search. Zero
// leaves the engine default.
type UCIOptions struct {
	HashMB  int
	Threads int
}

// UCI is a Backend driving Stockfish (or any UCI engine) through
// freeeve/uci. The library's GoDepth cannot be interrupted, so a cancelled
// request only stops waiting once the search returns; Client still bounds
// the caller's wait.
type UCI struct {
	mu     sync.Mutex
	engine *uci.Engine
}

func NewUCI(path string, opts UCIOptions) (*UCI, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: engine path required", ErrUnavailable)
	}
	if opts.HashMB == 0 {
		opts.HashMB = 16
	}
	if opts.Threads == 0 {
		opts.Threads = 1
	}
	engine, err := uci.NewEngine(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	err = engine.SetOptions(uci.Options{
		Hash:    opts.HashMB,
		Threads: opts.Threads,
		MultiPV: 1,
		Ponder:  false,
		OwnBook: false,
	})
	if err != nil {
		engine.Close()
		return nil, fmt.Errorf("%w: set engine options: %v", ErrUnavailable, err)
	}
	return &UCI{engine: engine}, nil
}

func (u *UCI) Search(ctx context.Context, fen string, depth int) (Evaluation, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return Evaluation{}, abandoned(err)
	}
	if err := u.engine.SetFEN(fen); err != nil {
		return Evaluation{}, fmt.Errorf("%w: set fen: %v", ErrUnavailable, err)
	}
	results, err := u.engine.GoDepth(depth, uci.HighestDepthOnly)
	if err != nil {
		return Evaluation{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(results.Results) == 0 {
		return Evaluation{}, ErrMalformed
	}
	best := results.Results[0]
	for _, r := range results.Results {
		if r.Depth > best.Depth {
			best = r
		}
	}
	score := int(best.Score)
	ev := FromEngine(fen, score, score, best.Mate, int(best.Depth))
	ev.BestMove = ParseBestMove("bestmove " + results.BestMove)
	return ev, nil
}

// Close does not wait for a running search; closing the engine is what
// unblocks it.
func (u *UCI) Close() error {
	u.engine.Close()
	return nil
}

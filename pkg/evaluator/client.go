package evaluator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type request struct {
	token uuid.UUID
	ctx   context.Context
	fen   string
	depth int
	reply chan response
}

type response struct {
	token uuid.UUID
	eval  Evaluation
	err   error
}

// Client serialises requests to one Backend. Each request gets its own token
// and reply slot, so an answer that arrives after its caller gave up is
// dropped with the slot and never reaches a later caller. Only one search is
// in flight at a time.
type Client struct {
	backend  Backend
	log      zerolog.Logger
	requests chan request
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

func NewClient(b Backend, log zerolog.Logger) *Client {
	c := &Client{
		backend:  b,
		log:      log.With().Str("component", "evaluator").Logger(),
		requests: make(chan request),
		done:     make(chan struct{}),
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run()
	}()
	return c
}

func (c *Client) run() {
	for {
		select {
		case <-c.done:
			return
		case req := <-c.requests:
			if err := req.ctx.Err(); err != nil {
				req.reply <- response{token: req.token, err: abandoned(err)}
				continue
			}
			ev, err := c.backend.Search(req.ctx, req.fen, req.depth)
			if err != nil {
				c.log.Debug().Str("token", req.token.String()).Err(err).Msg("search failed")
			}
			// reply has room for exactly this answer
			req.reply <- response{token: req.token, eval: ev, err: err}
		}
	}
}

func abandoned(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

// Evaluate asks the backend for a score and waits until it answers or ctx
// is done, whichever comes first.
func (c *Client) Evaluate(ctx context.Context, fen string, depth int) (Evaluation, error) {
	req := request{
		token: uuid.New(),
		ctx:   ctx,
		fen:   fen,
		depth: depth,
		reply: make(chan response, 1),
	}
	log := c.log.With().Str("token", req.token.String()).Logger()

	select {
	case c.requests <- req:
	case <-ctx.Done():
		log.Debug().Msg("gave up waiting for the engine")
		return Evaluation{}, abandoned(ctx.Err())
	case <-c.done:
		return Evaluation{}, ErrClosed
	}

	select {
	case resp := <-req.reply:
		if resp.token != req.token {
			return Evaluation{}, ErrMalformed
		}
		if resp.err != nil {
			return Evaluation{}, resp.err
		}
		log.Debug().Str("fen", fen).Int("depth", depth).Stringer("eval", resp.eval).Msg("evaluated")
		return resp.eval, nil
	case <-ctx.Done():
		log.Debug().Msg("abandoned in-flight request")
		return Evaluation{}, abandoned(ctx.Err())
	case <-c.done:
		return Evaluation{}, ErrClosed
	}
}

// Close stops the worker and closes the backend.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		err = c.backend.Close()
		c.wg.Wait()
	})
	return err
}

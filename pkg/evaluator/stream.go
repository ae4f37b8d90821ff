package evaluator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// DefaultDrain bounds how long a stopped search may take to report its
// bestmove before the engine is considered hung.
const DefaultDrain = time.Second

// Stream talks the UCI line protocol over a reader/writer pair, typically a
// child process. It is a Backend.
type Stream struct {
	w     io.Writer
	lines chan string
	drain time.Duration

	mu     sync.Mutex
	broken bool
}

func NewStream(r io.Reader, w io.Writer) *Stream {
	s := &Stream{
		w:     w,
		lines: make(chan string, 64),
		drain: DefaultDrain,
	}
	go s.read(r)
	return s
}

// SetDrain changes how long a cancelled search is given to finish.
func (s *Stream) SetDrain(d time.Duration) {
	s.mu.Lock()
	s.drain = d
	s.mu.Unlock()
}

func (s *Stream) read(r io.Reader) {
	defer close(s.lines)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		s.lines <- line
	}
}

func (s *Stream) send(cmds ...string) error {
	for _, cmd := range cmds {
		if _, err := io.WriteString(s.w, cmd+"\n"); err != nil {
			return fmt.Errorf("%w: write %q: %v", ErrUnavailable, cmd, err)
		}
	}
	return nil
}

// await reads lines until one starts with want.
func (s *Stream) await(ctx context.Context, want string) error {
	for {
		select {
		case line, ok := <-s.lines:
			if !ok {
				return fmt.Errorf("%w: engine closed its output", ErrUnavailable)
			}
			if strings.HasPrefix(line, want) {
				return nil
			}
		case <-ctx.Done():
			return abandoned(ctx.Err())
		}
	}
}

// Handshake runs the uci/isready exchange.
func (s *Stream) Handshake(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.send("uci"); err != nil {
		return err
	}
	if err := s.await(ctx, "uciok"); err != nil {
		return err
	}
	if err := s.send("isready"); err != nil {
		return err
	}
	return s.await(ctx, "readyok")
}

// Configure sends the non-zero options and waits until the engine is ready.
func (s *Stream) Configure(ctx context.Context, opts UCIOptions) error {
	var cmds []string
	if opts.Threads > 0 {
		cmds = append(cmds, fmt.Sprintf("setoption name Threads value %d", opts.Threads))
	}
	if opts.HashMB > 0 {
		cmds = append(cmds, fmt.Sprintf("setoption name Hash value %d", opts.HashMB))
	}
	if len(cmds) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.send(append(cmds, "isready")...); err != nil {
		return err
	}
	return s.await(ctx, "readyok")
}

// Search keeps the last score the engine reports and returns it with the
// move of the bestmove line. When ctx ends first the engine is told to stop and its
// remaining output is drained, so the next search starts on a clean line.
func (s *Stream) Search(ctx context.Context, fen string, depth int) (Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.broken {
		return Evaluation{}, ErrUnavailable
	}
	if err := s.send("position fen "+fen, fmt.Sprintf("go depth %d", depth)); err != nil {
		s.broken = true
		return Evaluation{}, err
	}

	var (
		last    Score
		scored  bool
		stopped error
		drain   <-chan time.Time
		cancel  = ctx.Done()
	)
	for {
		select {
		case line, ok := <-s.lines:
			if !ok {
				s.broken = true
				return Evaluation{}, fmt.Errorf("%w: engine closed its output", ErrUnavailable)
			}
			if sc, ok := ParseInfo(line); ok {
				last, scored = sc, true
				continue
			}
			if !IsBestMove(line) {
				continue
			}
			if stopped != nil {
				return Evaluation{}, stopped
			}
			if !scored {
				return Evaluation{}, ErrMalformed
			}
			ev := FromEngine(fen, last.CP, last.Mate, last.IsMate, last.Depth)
			ev.BestMove = ParseBestMove(line)
			return ev, nil
		case <-cancel:
			stopped = abandoned(ctx.Err())
			cancel = nil
			if err := s.send("stop"); err != nil {
				s.broken = true
				return Evaluation{}, stopped
			}
			timer := time.NewTimer(s.drain)
			defer timer.Stop()
			drain = timer.C
		case <-drain:
			s.broken = true
			return Evaluation{}, stopped
		}
	}
}

// Close asks the engine to quit and closes the writer when it can be
// closed.
func (s *Stream) Close() error {
	_ = s.send("quit")
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

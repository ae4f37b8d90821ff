package pkg

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/qnkhuat/garrison/pkg/board"
	"github.com/qnkhuat/garrison/pkg/journal"
	"github.com/qnkhuat/garrison/pkg/reinforce"
)

var (
	ErrNoPending     = errors.New("no pending reinforcement")
	ErrSquareInvalid = errors.New("square is not a legal drop square")
	ErrGameOver      = errors.New("game is over")
	ErrNoDropSquare  = errors.New("no drop square next to the king")
	ErrApplied       = errors.New("reinforcement already used")
)

// Session owns one game and the reinforcement pending in it. Its mutex
// serialises moves, placements and decisions, so a pending reinforcement is
// never evaluated twice at once. A game grants a single reinforcement.
type Session struct {
	ID   string
	Name string

	engine  *reinforce.Engine
	journal *journal.Journal
	log     zerolog.Logger

	mu      sync.Mutex
	game    *board.Game
	pending *reinforce.Pending
	applied bool
	rng     *rand.Rand
}

func NewSession(engine *reinforce.Engine, j *journal.Journal, log zerolog.Logger) *Session {
	s := &Session{
		ID:      uuid.New().String(),
		Name:    petname.Generate(2, "-"),
		engine:  engine,
		journal: j,
		game:    board.NewGame(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	s.log = log.With().Str("session", s.Name).Logger()
	return s
}

// Load replaces the game and offers a reinforcement if one is owed.
func (s *Session) Load(fen string) (MessageState, error) {
	game, err := GameFromFEN(fen)
	if err != nil {
		return MessageState{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.game = game
	s.pending = nil
	s.applied = false
	s.track()
	s.log.Info().Str("fen", game.Encoding()).Stringer("pending", s.pending).Msg("game loaded")
	return s.state(), nil
}

// New starts a game from a random Garrison setup. A non-zero seed makes the
// setup reproducible.
func (s *Session) New(seed int64) (MessageState, error) {
	s.mu.Lock()
	rng := s.rng
	if seed != 0 {
		rng = rand.New(rand.NewSource(seed))
	}
	fen := board.RandomGarrison(rng)
	s.mu.Unlock()
	return s.Load(fen)
}

// Move plays a move and brings the pending reinforcement up to date.
func (s *Session) Move(uci string) (MessageState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if over, _ := s.game.Outcome(); over {
		return s.state(), ErrGameOver
	}
	if _, err := s.game.Play(uci); err != nil {
		return s.state(), err
	}
	s.track()
	return s.state(), nil
}

// track refreshes the pending reinforcement after the position changed, or
// offers one when none is pending.
func (s *Session) track() {
	if s.applied {
		return
	}
	if s.pending != nil {
		if !s.pending.Refresh(s.game) {
			s.log.Info().Msg("reinforcement cancelled, no square left next to the king")
			s.pending = nil
		}
		return
	}
	s.pending = reinforce.Offer(s.game)
	if s.pending != nil {
		s.log.Info().Stringer("pending", s.pending).Msg("reinforcement offered")
	}
}

// Grant makes side owed a piece of the given kind regardless of material.
func (s *Session) Grant(side, kind string) (MessageState, error) {
	sd, err := board.ParseSide(side)
	if err != nil {
		return s.State(), err
	}
	k, err := board.ParseKind(kind)
	if err != nil {
		return s.State(), err
	}
	if k == board.King {
		return s.State(), fmt.Errorf("%w: %s", board.ErrBadPiece, k)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.applied {
		return s.state(), ErrApplied
	}
	p := &reinforce.Pending{Side: sd, Kind: k}
	if !p.Refresh(s.game) {
		return s.state(), ErrNoDropSquare
	}
	s.pending = p
	s.log.Info().Stringer("pending", p).Msg("reinforcement granted")
	return s.state(), nil
}

// Advise decides whether the pending reinforcement should be used now and
// where it would go.
func (s *Session) Advise(ctx context.Context) (MessageAdvice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advise(ctx)
}

func (s *Session) advise(ctx context.Context) (MessageAdvice, error) {
	if s.pending.Empty() {
		return MessageAdvice{Verdict: reinforce.NotApplicable.String(), State: s.state()}, ErrNoPending
	}
	d := s.engine.Decide(ctx, s.game, s.pending)
	advice := adviceView(d)
	if sq, ok := s.engine.ChooseSquare(s.game, s.pending); ok {
		advice.Square = sq.String()
	}
	advice.State = s.state()
	s.record(ctx, d, advice.Square)
	return advice, nil
}

// Place drops the pending piece on square, which must still be legal.
func (s *Session) Place(square string) (MessageState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.place(square)
}

func (s *Session) place(square string) (MessageState, error) {
	if s.pending.Empty() {
		return s.state(), ErrNoPending
	}
	sq, err := board.ParseSquare(square)
	if err != nil {
		return s.state(), err
	}
	current := &reinforce.Pending{Side: s.pending.Side, Kind: s.pending.Kind}
	if !current.Refresh(s.game) || !current.Contains(sq) {
		return s.state(), fmt.Errorf("%w: %s", ErrSquareInvalid, sq)
	}
	if err := s.game.Drop(sq, s.pending.Piece()); err != nil {
		return s.state(), err
	}
	s.log.Info().Stringer("piece", s.pending.Kind).Stringer("square", sq).Msg("reinforcement placed")
	s.pending = nil
	s.applied = true
	return s.state(), nil
}

// AutoPlace asks for advice and places the piece when told to.
func (s *Session) AutoPlace(ctx context.Context) (MessageAdvice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	advice, err := s.advise(ctx)
	if err != nil || !advice.Use || advice.Square == "" {
		return advice, err
	}
	state, err := s.place(advice.Square)
	if err != nil {
		return advice, err
	}
	advice.Placed = true
	advice.State = state
	return advice, nil
}

// EngineTurn plays a full turn for the side to move. A reinforcement pending
// for that side is placed first when the engine decides to use it. The drop
// keeps the move, so the evaluator's best move is played either way.
func (s *Session) EngineTurn(ctx context.Context) (MessageAdvice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	advice := MessageAdvice{Verdict: reinforce.NotApplicable.String()}
	if over, _ := s.game.Outcome(); over {
		advice.State = s.state()
		return advice, ErrGameOver
	}
	if !s.pending.Empty() && s.pending.Side == s.game.Turn() {
		a, err := s.advise(ctx)
		if err != nil {
			return a, err
		}
		advice = a
		if advice.Use && advice.Square != "" {
			if _, err := s.place(advice.Square); err != nil {
				return advice, err
			}
			advice.Placed = true
		}
	}
	if over, result := s.game.Outcome(); over {
		advice.State = s.state()
		return advice, fmt.Errorf("%w: %s", ErrGameOver, result)
	}

	move, err := s.engine.BestMove(ctx, s.game)
	if err != nil {
		advice.State = s.state()
		return advice, err
	}
	if _, err := s.game.Play(move); err != nil {
		advice.State = s.state()
		return advice, fmt.Errorf("engine move: %w", err)
	}
	s.track()
	advice.Move = move
	advice.State = s.state()
	s.log.Info().Str("move", move).Bool("placed", advice.Placed).Msg("engine played")
	return advice, nil
}

func (s *Session) State() MessageState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

// Board draws the current position.
func (s *Session) Board() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Draw()
}

func (s *Session) state() MessageState {
	over, result := s.game.Outcome()
	st := MessageState{
		Fen:     s.game.Encoding(),
		Turn:    s.game.Turn().String(),
		Applied: s.applied,
		Over:    over,
		Result:  result,
	}
	if s.pending != nil {
		st.Pending = pendingView(s.pending)
	}
	return st
}

func (s *Session) record(ctx context.Context, d reinforce.Decision, square string) {
	e := journal.Entry{
		Session:   s.ID,
		FEN:       s.game.Encoding(),
		Side:      s.pending.Side.String(),
		Piece:     s.pending.Kind.String(),
		Verdict:   d.Verdict.String(),
		Reason:    d.Reason.String(),
		Score:     d.Score,
		Threshold: d.Threshold,
		Square:    square,
	}
	if d.Evaluation != nil {
		e.Evaluation, e.HasEvaluation = d.Evaluation.Pawns, true
	}
	if err := s.journal.Record(ctx, e); err != nil {
		s.log.Warn().Err(err).Msg("journal write failed")
	}
}

// Handle runs one request envelope and returns the reply.
func (s *Session) Handle(ctx context.Context, in MessageTransport) MessageInterface {
	reply := func(m MessageInterface, err error) MessageInterface {
		if err != nil {
			return MessageError{Msg: err.Error()}
		}
		return m
	}
	switch in.MsgType {
	case TypeMessageLoad:
		var m MessageLoad
		if err := Decode(in.Data, &m); err != nil {
			return MessageError{Msg: err.Error()}
		}
		return reply(s.Load(m.Fen))
	case TypeMessageMove:
		var m MessageMove
		if err := Decode(in.Data, &m); err != nil {
			return MessageError{Msg: err.Error()}
		}
		return reply(s.Move(m.Move))
	case TypeMessageAdvise:
		advice, err := s.Advise(ctx)
		if errors.Is(err, ErrNoPending) {
			return advice
		}
		return reply(advice, err)
	case TypeMessagePlace:
		var m MessagePlace
		if err := Decode(in.Data, &m); err != nil {
			return MessageError{Msg: err.Error()}
		}
		return reply(s.Place(m.Square))
	case TypeMessageGrant:
		var m MessageGrant
		if err := Decode(in.Data, &m); err != nil {
			return MessageError{Msg: err.Error()}
		}
		return reply(s.Grant(m.Side, m.Piece))
	case TypeMessageAuto:
		advice, err := s.AutoPlace(ctx)
		if errors.Is(err, ErrNoPending) {
			return advice
		}
		return reply(advice, err)
	case TypeMessageNew:
		var m MessageNew
		if err := Decode(in.Data, &m); err != nil {
			return MessageError{Msg: err.Error()}
		}
		return reply(s.New(m.Seed))
	case TypeMessageEngine:
		return reply(s.EngineTurn(ctx))
	case TypeMessageState:
		return s.State()
	}
	return MessageError{Msg: fmt.Sprintf("unsupported message %s", in.MsgType)}
}

func pendingView(p *reinforce.Pending) *PendingView {
	v := &PendingView{Side: p.Side.String(), Piece: p.Kind.String()}
	for _, sq := range p.Squares {
		v.Squares = append(v.Squares, sq.String())
	}
	return v
}

func adviceView(d reinforce.Decision) MessageAdvice {
	a := MessageAdvice{
		Verdict:   d.Verdict.String(),
		Reason:    d.Reason.String(),
		Use:       d.Use(),
		Score:     d.Score,
		Threshold: d.Threshold,
		Factors: FactorsView{
			KingDanger:      d.Factors.KingDanger,
			MaterialDeficit: d.Factors.MaterialDeficit,
			GamePhase:       d.Factors.GamePhase,
			PieceActivity:   d.Factors.PieceActivity,
			Timing:          d.Factors.Timing,
		},
	}
	if d.Evaluation != nil {
		pawns := d.Evaluation.Pawns
		a.Evaluation = &pawns
	}
	return a
}

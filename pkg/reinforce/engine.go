// Package reinforce decides when the side trailing in material should drop
// its reinforcement piece next to its king, and where.
package reinforce

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/qnkhuat/garrison/pkg/board"
	"github.com/qnkhuat/garrison/pkg/evaluator"
)

var ErrNoEvaluator = errors.New("no evaluator configured")

type Verdict int

const (
	NotApplicable Verdict = iota
	Wait
	UseNow
)

func (v Verdict) String() string {
	switch v {
	case NotApplicable:
		return "not applicable"
	case Wait:
		return "wait"
	case UseNow:
		return "use now"
	default:
		return "unknown"
	}
}

type Reason int

const (
	ReasonNone Reason = iota
	ReasonInCheckFewMoves
	ReasonDeficitInCheck
	ReasonEvaluatorLosing
	ReasonEvaluatorPoor
	ReasonScore
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonInCheckFewMoves:
		return "in check with few moves"
	case ReasonDeficitInCheck:
		return "large deficit in check"
	case ReasonEvaluatorLosing:
		return "evaluator: losing"
	case ReasonEvaluatorPoor:
		return "evaluator: poor and close to threshold"
	case ReasonScore:
		return "score"
	default:
		return "unknown"
	}
}

// Factors are the five inputs of the weighted score, each recomputed from
// the current state on every decision.
type Factors struct {
	KingDanger      float64
	MaterialDeficit float64
	GamePhase       float64
	PieceActivity   float64
	Timing          float64
}

// Score weighs the factors.
func (f Factors) Score(w Weights) float64 {
	return f.KingDanger*w.KingDanger +
		f.MaterialDeficit*w.MaterialDeficit +
		f.GamePhase*w.GamePhase +
		f.PieceActivity*w.PieceActivity +
		f.Timing*w.Timing
}

func (f Factors) MarshalZerologObject(e *zerolog.Event) {
	e.Float64("king_danger", f.KingDanger).
		Float64("material_deficit", f.MaterialDeficit).
		Float64("game_phase", f.GamePhase).
		Float64("piece_activity", f.PieceActivity).
		Float64("timing", f.Timing)
}

type Decision struct {
	Verdict   Verdict
	Reason    Reason
	Factors   Factors
	Score     float64
	Threshold float64
	// Evaluation is set when the evaluator answered.
	Evaluation *evaluator.Evaluation
}

// Use reports whether the reinforcement should be placed now.
func (d Decision) Use() bool { return d.Verdict == UseNow }

// Engine is safe for concurrent use on different pending reinforcements;
// callers serialise decisions about the same one.
type Engine struct {
	cfg  Config
	eval evaluator.Evaluator
	log  zerolog.Logger
}

// NewEngine builds an engine. ev may be nil, in which case decisions rest on
// the heuristic score alone.
func NewEngine(cfg Config, ev evaluator.Evaluator) *Engine {
	return &Engine{
		cfg:  cfg,
		eval: ev,
		log:  cfg.Logger.With().Str("component", "reinforce").Logger(),
	}
}

// Factors computes the weighted score inputs for p.
func (e *Engine) Factors(st board.State, p *Pending) Factors {
	return Factors{
		KingDanger:      KingDanger(st, p.Side),
		MaterialDeficit: deficitFactor(Material(st), p.Side),
		GamePhase:       GamePhase(st),
		PieceActivity:   PieceActivity(st, p),
		Timing:          Timing(st.MoveCount()),
	}
}

// Decide returns whether p should be spent now. An absent reinforcement, or
// one with no drop square, is NotApplicable.
func (e *Engine) Decide(ctx context.Context, st board.State, p *Pending) Decision {
	if p.Empty() {
		return Decision{Verdict: NotApplicable}
	}
	log := e.log.With().Stringer("side", p.Side).Stringer("piece", p.Kind).Logger()

	ownTurnInCheck := st.Turn() == p.Side && st.InCheck()
	if ownTurnInCheck && len(st.LegalMoves()) <= e.cfg.EmergencyMoves {
		log.Info().Msg("emergency: in check with very few moves")
		return Decision{Verdict: UseNow, Reason: ReasonInCheckFewMoves}
	}
	if ownTurnInCheck && Material(st).Deficit(p.Side) >= e.cfg.EmergencyDeficit {
		log.Info().Msg("emergency: large material deficit and in check")
		return Decision{Verdict: UseNow, Reason: ReasonDeficitInCheck}
	}

	f := e.Factors(st, p)
	d := Decision{
		Verdict:   Wait,
		Factors:   f,
		Score:     f.Score(e.cfg.Weights),
		Threshold: e.cfg.Threshold(f.GamePhase),
	}

	if e.eval != nil && d.Score >= d.Threshold*e.cfg.ConsultGate {
		if ev, ok := e.consult(ctx, st, log); ok {
			d.Evaluation = &ev
			adjusted := ev.For(p.Side == board.Black)
			switch {
			case adjusted < e.cfg.LosingCutoff:
				d.Verdict, d.Reason = UseNow, ReasonEvaluatorLosing
			case adjusted < e.cfg.PoorCutoff && d.Score >= d.Threshold*e.cfg.PoorGate:
				d.Verdict, d.Reason = UseNow, ReasonEvaluatorPoor
			}
			if d.Use() {
				log.Info().Float64("eval", adjusted).Stringer("reason", d.Reason).Msg("evaluator says use reinforcement")
				return d
			}
		}
	}

	if d.Score >= d.Threshold {
		d.Verdict, d.Reason = UseNow, ReasonScore
	}
	log.Info().
		Object("factors", f).
		Float64("score", d.Score).
		Float64("threshold", d.Threshold).
		Stringer("verdict", d.Verdict).
		Msg("reinforcement evaluation")
	return d
}

// consult asks the evaluator once, bounded by the configured timeout. Any
// failure means no answer.
func (e *Engine) consult(ctx context.Context, st board.State, log zerolog.Logger) (evaluator.Evaluation, bool) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.EvalTimeout)
	defer cancel()
	ev, err := e.eval.Evaluate(ctx, st.Encoding(), e.cfg.EvalDepth)
	if err != nil {
		log.Debug().Err(err).Msg("no evaluator answer")
		return evaluator.Evaluation{}, false
	}
	return ev, true
}

// BestMove asks the evaluator which move it would play in st, bounded by the
// configured timeout.
func (e *Engine) BestMove(ctx context.Context, st board.State) (string, error) {
	if e.eval == nil {
		return "", ErrNoEvaluator
	}
	ctx, cancel := context.WithTimeout(ctx, e.cfg.EvalTimeout)
	defer cancel()
	ev, err := e.eval.Evaluate(ctx, st.Encoding(), e.cfg.EvalDepth)
	if err != nil {
		return "", err
	}
	if ev.BestMove == "" {
		return "", evaluator.ErrMalformed
	}
	return ev.BestMove, nil
}

// ShouldUse is Decide reduced to a yes/no answer.
func (e *Engine) ShouldUse(ctx context.Context, st board.State, p *Pending) bool {
	return e.Decide(ctx, st, p).Use()
}

// ChooseSquare picks the drop square for p.
func (e *Engine) ChooseSquare(st board.State, p *Pending) (board.Square, bool) {
	return ChooseSquare(st, p)
}

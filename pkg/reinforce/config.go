package reinforce

import (
	"time"

	"github.com/rs/zerolog"
)

// Weights of the five decision factors. They sum to one so the weighted
// score stays in [0,1].
type Weights struct {
	KingDanger      float64
	MaterialDeficit float64
	GamePhase       float64
	PieceActivity   float64
	Timing          float64
}

var DefaultWeights = Weights{
	KingDanger:      0.50,
	MaterialDeficit: 0.25,
	GamePhase:       0.10,
	PieceActivity:   0.10,
	Timing:          0.05,
}

// Config holds the empirically chosen constants of the engine.
type Config struct {
	Weights Weights

	// Decision thresholds per game phase.
	OpeningThreshold    float64
	MiddlegameThreshold float64
	EndgameThreshold    float64

	// Emergency overrides.
	EmergencyMoves   int
	EmergencyDeficit int

	// Evaluator consultation: ask once the score reaches ConsultGate*threshold;
	// use now below LosingCutoff pawns, or below PoorCutoff when the score
	// reaches PoorGate*threshold.
	ConsultGate  float64
	PoorGate     float64
	LosingCutoff float64
	PoorCutoff   float64
	EvalDepth    int
	EvalTimeout  time.Duration

	Logger zerolog.Logger
}

func DefaultConfig() Config {
	return Config{
		Weights:             DefaultWeights,
		OpeningThreshold:    0.5,
		MiddlegameThreshold: 0.4,
		EndgameThreshold:    0.3,
		EmergencyMoves:      3,
		EmergencyDeficit:    15,
		ConsultGate:         0.8,
		PoorGate:            0.9,
		LosingCutoff:        -5,
		PoorCutoff:          -2,
		EvalDepth:           8,
		EvalTimeout:         2 * time.Second,
		Logger:              zerolog.Nop(),
	}
}

// Threshold returns the score needed to use the reinforcement at phase.
func (c Config) Threshold(phase float64) float64 {
	switch {
	case phase < 0.3:
		return c.OpeningThreshold
	case phase < 0.7:
		return c.MiddlegameThreshold
	default:
		return c.EndgameThreshold
	}
}

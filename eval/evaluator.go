// Package eval scores non-terminal positions with a weighted sum of board
// metrics.
package eval

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/domino14/checkers/board"
)

const (
	// MaxHeuristic bounds every heuristic score so it can never be confused
	// with a terminal score.
	MaxHeuristic = 900.0
	// faultMagnitude is the largest raw score accepted before the weights
	// are considered broken.
	faultMagnitude = 1e11
)

// ErrWeightFault means the weights produced a non-finite or absurd score.
// It is a configuration error and is never clamped away.
var ErrWeightFault = errors.New("weight fault")

// Evaluator scores a position from the perspective of the side to move.
// Positive scores favor red.
type Evaluator interface {
	Evaluate(b *board.Board, mover board.Player) (float64, error)
}

// WeightedEvaluator combines the metrics of both colors with mover-specific
// weight vectors.
type WeightedEvaluator struct {
	weights Weights
}

// NewWeightedEvaluator returns an evaluator using w.
func NewWeightedEvaluator(w Weights) (*WeightedEvaluator, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &WeightedEvaluator{weights: w}, nil
}

func (e *WeightedEvaluator) Weights() Weights {
	return e.weights
}

func (e *WeightedEvaluator) Evaluate(b *board.Board, mover board.Player) (float64, error) {
	wRed, wBlack := e.weights.For(mover)
	score := floats.Dot(wRed, b.Metrics(board.Red).Vector()) +
		floats.Dot(wBlack, b.Metrics(board.Black).Vector())

	if math.IsNaN(score) || math.IsInf(score, 0) || math.Abs(score) > faultMagnitude {
		return 0, fmt.Errorf("%w: score %v for %v to move", ErrWeightFault, score, mover)
	}
	return max(-MaxHeuristic, min(MaxHeuristic, score)), nil
}

package eval

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domino14/checkers/board"
)

func TestDefaultWeightsStayInBounds(t *testing.T) {
	e, err := NewWeightedEvaluator(DefaultWeights())
	require.NoError(t, err)
	for _, pos := range []board.SamplePosition{board.Opening, board.TwoOnOne,
		board.KingVsMan, board.DoubleJump, board.RedOnly} {

		for _, mover := range []board.Player{board.Red, board.Black} {
			v, err := e.Evaluate(pos.Board(), mover)
			require.NoError(t, err)
			assert.LessOrEqual(t, math.Abs(v), MaxHeuristic)
		}
	}
}

func TestEvaluateUsesMoverWeights(t *testing.T) {
	w := Weights{
		RedTurnRed:     []float64{1, 0, 0, 0, 0},
		RedTurnBlack:   []float64{0, 0, 0, 0, 0},
		BlackTurnRed:   []float64{0, 0, 0, 0, 0},
		BlackTurnBlack: []float64{2, 0, 0, 0, 0},
	}
	e, err := NewWeightedEvaluator(w)
	require.NoError(t, err)
	b := board.RedOnly.Board()

	v, err := e.Evaluate(b, board.Red)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	v, err = e.Evaluate(b, board.Black)
	require.NoError(t, err)
	assert.Equal(t, -2.0, v)
}

func TestEvaluateClamps(t *testing.T) {
	w := Weights{
		RedTurnRed:     []float64{500, 0, 0, 0, 0},
		RedTurnBlack:   []float64{-500, 0, 0, 0, 0},
		BlackTurnRed:   []float64{0, 0, 0, 0, 0},
		BlackTurnBlack: []float64{0, 0, 0, 0, 0},
	}
	e, err := NewWeightedEvaluator(w)
	require.NoError(t, err)
	v, err := e.Evaluate(board.RedOnly.Board(), board.Red)
	require.NoError(t, err)
	assert.Equal(t, MaxHeuristic, v)

	v, err = e.Evaluate(board.RedOnly.Board().Invert(), board.Red)
	require.NoError(t, err)
	assert.Equal(t, -MaxHeuristic, v)
}

func TestEvaluateWeightFault(t *testing.T) {
	for _, bad := range []float64{math.Inf(1), math.NaN(), 1e12} {
		w := DefaultWeights()
		w.RedTurnRed = []float64{bad, 0, 0, 0, 0}
		e, err := NewWeightedEvaluator(w)
		require.NoError(t, err)
		_, err = e.Evaluate(board.RedOnly.Board(), board.Red)
		assert.ErrorIs(t, err, ErrWeightFault)
	}
}

func TestValidate(t *testing.T) {
	w := DefaultWeights()
	w.BlackTurnRed = []float64{1, 2}
	_, err := NewWeightedEvaluator(w)
	assert.ErrorIs(t, err, errWeightLength)
}

func TestLoadWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	contents := "red_turn_red: [1, 2, 3, 4, 5]\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	w, err := LoadWeights(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, w.RedTurnRed)
	assert.Equal(t, DefaultWeights().BlackTurnBlack, w.BlackTurnBlack)

	require.NoError(t, os.WriteFile(path, []byte("red_turn_red: [1, 2]\n"), 0644))
	_, err = LoadWeights(path)
	assert.ErrorIs(t, err, errWeightLength)

	_, err = LoadWeights(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

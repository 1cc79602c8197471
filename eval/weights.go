package eval

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/domino14/checkers/board"
)

var errWeightLength = errors.New("weight vector must have five entries")

// Weights holds the four weight vectors, indexed by the side to move and the
// color whose metrics they multiply.
type Weights struct {
	RedTurnRed     []float64 `yaml:"red_turn_red"`
	RedTurnBlack   []float64 `yaml:"red_turn_black"`
	BlackTurnRed   []float64 `yaml:"black_turn_red"`
	BlackTurnBlack []float64 `yaml:"black_turn_black"`
}

// DefaultWeights are tuned weights for 8x8 endgames.
func DefaultWeights() Weights {
	return Weights{
		RedTurnRed:     []float64{30, -30, 30, -30, -30},
		RedTurnBlack:   []float64{30, 30, -21.953517783634453, 30, 30},
		BlackTurnRed:   []float64{30, 11.227915419751112, 30, -30, 30},
		BlackTurnBlack: []float64{16.42124258905689, -30, -30, -30, 30},
	}
}

// For returns the vectors applied to red's and black's metrics when mover is
// to move.
func (w Weights) For(mover board.Player) (red, black []float64) {
	if mover == board.Red {
		return w.RedTurnRed, w.RedTurnBlack
	}
	return w.BlackTurnRed, w.BlackTurnBlack
}

// Validate checks every vector has one weight per metric.
func (w Weights) Validate() error {
	vecs := map[string][]float64{
		"red_turn_red":     w.RedTurnRed,
		"red_turn_black":   w.RedTurnBlack,
		"black_turn_red":   w.BlackTurnRed,
		"black_turn_black": w.BlackTurnBlack,
	}
	for name, v := range vecs {
		if len(v) != board.NumMetrics {
			return fmt.Errorf("%s: %w (got %d)", name, errWeightLength, len(v))
		}
	}
	return nil
}

// LoadWeights reads weights from a YAML file. Vectors missing from the file
// keep their default values.
func LoadWeights(path string) (Weights, error) {
	w := DefaultWeights()
	bts, err := os.ReadFile(path)
	if err != nil {
		return w, err
	}
	if err := yaml.Unmarshal(bts, &w); err != nil {
		return w, fmt.Errorf("parsing weights %s: %w", path, err)
	}
	if err := w.Validate(); err != nil {
		return w, err
	}
	log.Debug().Str("path", path).Msg("loaded-weights")
	return w, nil
}

// Package analyzer exposes the solver as simple entry points: best
// continuation, forced-win length and whether a position is won, for boards,
// text boards and board files.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/domino14/checkers/board"
	"github.com/domino14/checkers/cache"
	"github.com/domino14/checkers/config"
	"github.com/domino14/checkers/endgame/alphabeta"
	"github.com/domino14/checkers/eval"
)

// NoForcedWin is the win length reported when no forced win was found.
const NoForcedWin = -1

// Analysis is the result of solving one position.
type Analysis struct {
	Board      string          `yaml:"board"`
	SideToMove string          `yaml:"side_to_move"`
	Value      float64         `yaml:"value"`
	Depth      int             `yaml:"depth"`
	ForcedWin  bool            `yaml:"forced_win"`
	WinLength  int             `yaml:"win_length"`
	BestMove   string          `yaml:"best_move,omitempty"`
	Line       []string        `yaml:"line"`
	Stats      alphabeta.Stats `yaml:"stats"`

	boards []*board.Board
}

// Boards returns the best line, starting with the analyzed position.
func (a *Analysis) Boards() []*board.Board {
	return a.boards
}

// YAML renders the analysis for reports and the shell.
func (a *Analysis) YAML() (string, error) {
	bts, err := yaml.Marshal(a)
	if err != nil {
		return "", err
	}
	return string(bts), nil
}

type Analyzer struct {
	config     *config.Config
	weights    eval.Weights
	sideToMove board.Player
}

// NewAnalyzer creates an analyzer. Weights are read from the configured
// weights path, or the defaults are used.
func NewAnalyzer(cfg *config.Config) (*Analyzer, error) {
	an := &Analyzer{config: cfg, sideToMove: board.Red}
	an.weights = eval.DefaultWeights()
	if p := cfg.GetString(config.ConfigWeightsPath); p != "" {
		w, err := cache.Load(p, eval.LoadWeights)
		if err != nil {
			return nil, err
		}
		an.weights = w
	}
	return an, nil
}

// SetSideToMove chooses who moves first in analyzed positions. Black to
// move is solved on the inverted board.
func (an *Analyzer) SetSideToMove(p board.Player) {
	an.sideToMove = p
}

func (an *Analyzer) SideToMove() board.Player {
	return an.sideToMove
}

func (an *Analyzer) Config() *config.Config {
	return an.config
}

func (an *Analyzer) newSolver() (*alphabeta.Solver, error) {
	ev, err := eval.NewWeightedEvaluator(an.weights)
	if err != nil {
		return nil, err
	}
	s := &alphabeta.Solver{}
	if err := s.Init(ev, an.config); err != nil {
		return nil, err
	}
	return s, nil
}

// Analyze solves b with a fresh solver. Values are from the point of view
// of the side to move: positive is good for it. A position that is already
// decided, or where the side to move has no legal move, gives a line holding
// only b. If no line can be recovered from the search the line is empty.
func (an *Analyzer) Analyze(ctx context.Context, b *board.Board) (*Analysis, error) {
	root := b
	if an.sideToMove == board.Black {
		root = b.Invert()
	}
	a := &Analysis{
		Board:      b.String(),
		SideToMove: an.sideToMove.String(),
		WinLength:  NoForcedWin,
	}

	if t := root.TerminalValue(); t != board.Ongoing {
		a.Value = float64(int(t) * alphabeta.TerminalScale)
		a.ForcedWin = t == board.RedWins
		if a.ForcedWin {
			a.WinLength = 0
		}
		a.setLine([]*board.Board{root}, an.sideToMove)
		return a, nil
	}

	s, err := an.newSolver()
	if err != nil {
		return nil, err
	}
	res, depth, line, err := s.Solve(ctx, root, an.config.GetInt(config.ConfigMaxDepth),
		an.config.MaxTime())
	if errors.Is(err, alphabeta.ErrNoLegalMoves) {
		a.Value = -alphabeta.TerminalScale
		a.setLine([]*board.Board{root}, an.sideToMove)
		return a, nil
	}
	if err != nil {
		return nil, err
	}
	a.Value = res.Value
	a.Depth = depth
	a.ForcedWin = res.IsWin()
	a.Stats = s.Observer().Stats()
	best := res.Best
	if an.sideToMove == board.Black {
		best = best.Mirror(root.Height())
	}
	a.BestMove = best.String()
	// An empty line means no strategy could be recovered.
	a.setLine(line, an.sideToMove)
	if a.ForcedWin {
		if len(line) > 0 {
			a.WinLength = len(line) - 1
		} else {
			a.WinLength = pliesToWin(a.Value, depth)
		}
	}
	return a, nil
}

// pliesToWin reads the length of a forced win off its value in a search of
// the given depth.
func pliesToWin(value float64, depth int) int {
	return depth + 1 - int(math.Round(value/alphabeta.TerminalScale))
}

// setLine stores line, turned back to the caller's orientation.
func (a *Analysis) setLine(line []*board.Board, side board.Player) {
	a.boards = make([]*board.Board, len(line))
	a.Line = make([]string, len(line))
	for i, lb := range line {
		if side == board.Black {
			lb = lb.Invert()
		}
		a.boards[i] = lb
		a.Line[i] = lb.String()
	}
}

// OptimalContinuation returns the best line from b, b first.
func (an *Analyzer) OptimalContinuation(ctx context.Context, b *board.Board) ([]*board.Board, error) {
	a, err := an.Analyze(ctx, b)
	if err != nil {
		return nil, err
	}
	return a.Boards(), nil
}

// OptimalWinLength returns the plies to a forced win for the side to move,
// or NoForcedWin.
func (an *Analyzer) OptimalWinLength(ctx context.Context, b *board.Board) (int, error) {
	a, err := an.Analyze(ctx, b)
	if err != nil {
		return 0, err
	}
	return a.WinLength, nil
}

// IsWinning reports whether the side to move has a forced win within the
// search limits.
func (an *Analyzer) IsWinning(ctx context.Context, b *board.Board) (bool, error) {
	a, err := an.Analyze(ctx, b)
	if err != nil {
		return false, err
	}
	return a.ForcedWin, nil
}

// AnalyzeBatch analyzes boards with up to threads searches at once. Each
// search has its own solver. Results are in the order of boards.
func (an *Analyzer) AnalyzeBatch(ctx context.Context, boards []*board.Board,
	threads int) ([]*Analysis, error) {

	tstart := time.Now()
	results := make([]*Analysis, len(boards))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(threads, 1))
	for i, b := range boards {
		g.Go(func() error {
			a, err := an.Analyze(gctx, b)
			if err != nil {
				return fmt.Errorf("board %d: %w", i, err)
			}
			results[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	nodes := make([]float64, len(results))
	wins := 0
	for i, a := range results {
		nodes[i] = float64(a.Stats.NodesExpanded)
		if a.ForcedWin {
			wins++
		}
	}
	meanNodes, stdevNodes := stat.MeanStdDev(nodes, nil)
	log.Info().Int("boards", len(boards)).Int("threads", threads).Int("forced-wins", wins).
		Float64("mean-nodes", meanNodes).Float64("stdev-nodes", stdevNodes).
		Float64("time-elapsed-sec", time.Since(tstart).Seconds()).
		Msg("batch-analyzed")
	return results, nil
}

// WriteDot solves b and writes the strategy table of that search to w as a
// dot graph. Black to move is drawn on the inverted board.
func (an *Analyzer) WriteDot(ctx context.Context, b *board.Board, w io.Writer) error {
	root := b
	if an.sideToMove == board.Black {
		root = b.Invert()
	}
	s, err := an.newSolver()
	if err != nil {
		return err
	}
	_, _, _, err = s.Solve(ctx, root, an.config.GetInt(config.ConfigMaxDepth), an.config.MaxTime())
	if err != nil {
		return err
	}
	return s.Observer().WriteDot(w)
}

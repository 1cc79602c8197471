// Package alphabeta implements a checkers solver using depth-limited
// minimax with alpha-beta pruning, memoized evaluations, a transposition
// table and a strategy table from which the best line is recovered.
package alphabeta

import (
	"context"
	"errors"
	"math"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/checkers/board"
	"github.com/domino14/checkers/config"
	"github.com/domino14/checkers/eval"
)

// thanks Wikipedia:
/**function alphabeta(node, depth, α, β, maximizingPlayer) is
    if depth = 0 or node is a terminal node then
        return the heuristic value of node
    if maximizingPlayer then
        value := −∞
        for each child of node do
            value := max(value, alphabeta(child, depth − 1, α, β, FALSE))
            α := max(α, value)
            if α ≥ β then
                break (* β cut-off *)
        return value
    else
        value := +∞
        for each child of node do
            value := min(value, alphabeta(child, depth − 1, α, β, TRUE))
            β := min(β, value)
            if α ≥ β then
                break (* α cut-off *)
        return value
**/

const (
	// TerminalScale is multiplied by the plies left (plus one) to score a
	// won or lost position, so quicker wins score higher.
	TerminalScale = 10000
	// WinThreshold is the smallest value that means red has a forced win.
	WinThreshold = TerminalScale
)

// ErrNoLegalMoves is returned when the root position has no legal move for
// red.
var ErrNoLegalMoves = errors.New("no legal moves at root")

// Solver searches a position for red.
type Solver struct {
	observer *Observer

	disablePruning          bool
	transpositionTableOptim bool
	firstWinOptim           bool
	uniqueSuccessors        bool
}

// Init sets up the solver with an evaluator and the search options from cfg.
func (s *Solver) Init(ev eval.Evaluator, cfg *config.Config) error {
	if ev == nil {
		return errors.New("solver needs an evaluator")
	}
	s.observer = NewObserver(ev, cfg.GetFloat64(config.ConfigCacheMemoryFraction))
	s.disablePruning = cfg.GetBool(config.ConfigDisablePruning)
	s.transpositionTableOptim = !cfg.GetBool(config.ConfigDisableTT)
	s.firstWinOptim = !cfg.GetBool(config.ConfigDisableFirstWin)
	s.uniqueSuccessors = cfg.GetBool(config.ConfigUniqueSuccessors)
	return nil
}

func (s *Solver) Observer() *Observer {
	return s.observer
}

// SetPruningDisabled turns the search into plain exhaustive minimax. The
// transposition table and first-win exit are skipped as well.
func (s *Solver) SetPruningDisabled(d bool) {
	s.disablePruning = d
}

func (s *Solver) SetTranspositionTableOptim(tt bool) {
	s.transpositionTableOptim = tt
}

func (s *Solver) SetFirstWinOptim(w bool) {
	s.firstWinOptim = w
}

func (s *Solver) SetUniqueSuccessors(u bool) {
	s.uniqueSuccessors = u
}

func (s *Solver) useTT() bool {
	return s.transpositionTableOptim && !s.disablePruning
}

func (s *Solver) useFirstWin() bool {
	return s.firstWinOptim && !s.disablePruning
}

// Result is the outcome of a root search.
type Result struct {
	Value float64
	Best  board.Successor
}

// IsWin reports whether the value is a forced win for red.
func (r Result) IsWin() bool {
	return r.Value >= WinThreshold
}

func (s *Solver) successors(b *board.Board, mover board.Player) ([]board.Successor, error) {
	if s.uniqueSuccessors {
		return b.UniqueSuccessors(mover)
	}
	return b.Successors(mover)
}

// order sorts succs so the most promising child for mover comes first.
func (s *Solver) order(succs []board.Successor, mover board.Player) error {
	vals := make(map[uint64]float64, len(succs))
	for _, c := range succs {
		v, err := s.observer.Evaluate(c.Board, mover)
		if err != nil {
			return err
		}
		vals[c.Board.Hash()] = v
	}
	slices.SortStableFunc(succs, func(a, b board.Successor) int {
		va, vb := vals[a.Board.Hash()], vals[b.Board.Hash()]
		switch {
		case better(mover, va, vb):
			return -1
		case better(mover, vb, va):
			return 1
		}
		return 0
	})
	return nil
}

// expand scores the children of b and records the best in the strategy
// table. It returns the node value, the index of the best child, and
// whether it stopped before scanning every child.
func (s *Solver) expand(ctx context.Context, b *board.Board, succs []board.Successor,
	remaining int, mover board.Player, α, β float64) (float64, int, bool, error) {

	if err := s.order(succs, mover); err != nil {
		return 0, -1, false, err
	}
	best := math.Inf(-int(mover))
	bestIdx := -1
	for i, child := range succs {
		value, ok := 0.0, false
		if s.useTT() {
			value, ok = s.observer.TranspositionValue(child.Board, remaining, mover, α, β)
		}
		if !ok {
			var cut bool
			var err error
			value, cut, err = s.minimaxStep(ctx, child.Board, remaining-1, mover.Opponent(), α, β)
			if err != nil {
				return 0, -1, false, err
			}
			if s.useTT() && !s.observer.ShouldExit() {
				s.observer.StoreTransposition(child.Board, remaining, mover, value,
					boundFor(value, α, β, mover.Opponent(), cut))
			}
		}
		s.observer.UpdateStrategy(b, child, mover, remaining, value)
		if bestIdx == -1 || better(mover, value, best) {
			best = value
			bestIdx = i
		}

		if mover == board.Red {
			α = max(α, best)
			if s.useFirstWin() && best >= WinThreshold {
				return best, bestIdx, i < len(succs)-1, nil
			}
		} else {
			β = min(β, best)
		}
		if !s.disablePruning && β <= α {
			s.observer.stats.Prunes++
			return best, bestIdx, i < len(succs)-1, nil
		}
	}
	return best, bestIdx, false, nil
}

// minimaxStep returns the value of b with remaining plies left and mover to
// move, and whether the value is only a bound because children were
// skipped.
func (s *Solver) minimaxStep(ctx context.Context, b *board.Board, remaining int,
	mover board.Player, α, β float64) (float64, bool, error) {

	s.observer.stats.NodesExpanded++

	if t := s.observer.TerminalValue(b); t != board.Ongoing {
		return terminalScore(t, remaining), false, nil
	}
	succs, err := s.successors(b, mover)
	if err != nil {
		return 0, false, err
	}
	if len(succs) == 0 {
		// No moves is a loss for the side to move.
		return terminalScore(board.Outcome(-mover), remaining), false, nil
	}
	if remaining <= 0 || s.observer.ShouldExit() {
		v, err := s.observer.Utility(b, mover)
		return v, false, err
	}
	value, _, cut, err := s.expand(ctx, b, succs, remaining, mover, α, β)
	clear(succs)
	return value, cut, err
}

// Minimax searches b to depth plies with red to move.
func (s *Solver) Minimax(ctx context.Context, b *board.Board, depth int) (Result, error) {
	s.observer.setContext(ctx)
	s.observer.stats.NodesExpanded++

	succs, err := s.successors(b, board.Red)
	if err != nil {
		return Result{}, err
	}
	if len(succs) == 0 {
		return Result{}, ErrNoLegalMoves
	}
	value, idx, _, err := s.expand(ctx, b, succs, depth, board.Red,
		math.Inf(-1), math.Inf(1))
	if err != nil {
		return Result{}, err
	}
	log.Debug().Int("depth", depth).Float64("value", value).
		Stringer("best", succs[idx]).Msg("minimax-returning")
	return Result{Value: value, Best: succs[idx]}, nil
}

// Solve runs iterative deepening and returns the result, the depth of the
// last completed pass and the best line. The line is empty when no strategy
// could be recovered.
func (s *Solver) Solve(ctx context.Context, b *board.Board, maxDepth int,
	budget time.Duration) (Result, int, []*board.Board, error) {

	res, depth, err := s.IterativeMinimax(ctx, b, maxDepth, budget)
	if err != nil {
		return Result{}, 0, nil, err
	}
	line := s.bestLine(b)
	log.Debug().Int("depth", depth).Int("line-length", len(line)).Msg("solve-line")
	return res, depth, line, nil
}

// bestLine recovers the line from b after a search. A line that revisits a
// position gives an empty line; the search result still stands.
func (s *Solver) bestLine(b *board.Board) []*board.Board {
	line, err := s.observer.RecoverStrategy(b)
	if err != nil {
		log.Warn().Err(err).Str("board", b.Canonical()).Msg("no-strategy-line")
		return nil
	}
	return line
}

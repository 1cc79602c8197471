package alphabeta

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/checkers/board"
)

// IterativeMinimax searches b at increasing depths until a forced win is
// found, maxDepth is reached, or budget has elapsed. The deadline is set
// once; a pass that runs past it still completes, cutting its search short,
// and no further pass starts. It returns the last result and its depth.
//
// The strategy and transposition tables are cleared before each pass so the
// line recovered afterwards comes from the last pass alone.
func (s *Solver) IterativeMinimax(ctx context.Context, b *board.Board, maxDepth int,
	budget time.Duration) (Result, int, error) {

	tstart := time.Now()
	s.observer.SetEndTime(tstart.Add(budget))
	s.observer.ResetStats()

	var res Result
	reached := 0
	for _, d := range passDepths(maxDepth) {
		log.Debug().Int("depth", d).Msg("deepening-iteratively")
		s.observer.ClearStrategy()
		s.observer.ClearTranspositionTable()
		r, err := s.Minimax(ctx, b, d)
		if err != nil {
			return Result{}, 0, err
		}
		res, reached = r, d
		log.Debug().Int("depth", d).Float64("value", r.Value).
			Stringer("best", r.Best).Msg("best-val")

		if r.IsWin() {
			break
		}
		if time.Since(tstart) > budget || ctx.Err() != nil {
			break
		}
	}
	log.Info().
		Int("depth", reached).
		Float64("value", res.Value).
		Object("stats", s.observer.Stats()).
		Float64("time-elapsed-sec", time.Since(tstart).Seconds()).
		Msg("solve-returning")
	return res, reached, nil
}

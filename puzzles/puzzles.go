// Package puzzles builds endgame puzzles by walking backwards from won
// positions and keeping the ones the solver can still prove are won.
package puzzles

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"github.com/domino14/checkers/analyzer"
	"github.com/domino14/checkers/board"
	"github.com/domino14/checkers/config"
)

var ErrNoSeed = errors.New("could not build a seed position")

const (
	maxSeedAttempts = 100
	// Only this many shuffled first-step positions are walked back again.
	firstStepLimit = 30
)

// A Generator creates red-to-move positions that red wins by force.
type Generator struct {
	analyzer       *analyzer.Analyzer
	maxPieces      int
	threads        int
	successorLimit int
	forceTake      bool
	smallFirst     bool
}

func NewGenerator(cfg *config.Config) (*Generator, error) {
	an, err := analyzer.NewAnalyzer(cfg)
	if err != nil {
		return nil, err
	}
	return &Generator{
		analyzer:  an,
		maxPieces: max(cfg.GetInt(config.ConfigPuzzleMaxPieces), 1),
		threads:   max(cfg.GetInt(config.ConfigThreads), 1),
		forceTake: true,
	}, nil
}

// SetForceTake keeps only positions with more pieces than the one they were
// walked back from, so every puzzle starts with material still to win.
func (g *Generator) SetForceTake(f bool) {
	g.forceTake = f
}

// SetSmallFirst rates positions with fewer pieces first.
func (g *Generator) SetSmallFirst(s bool) {
	g.smallFirst = s
}

func (g *Generator) SetSuccessorLimit(l int) {
	g.successorLimit = l
}

// Seed places between one and the configured number of red pieces at random
// and undoes a red capture, giving a position where red wins with its next
// move.
func (g *Generator) Seed() (*board.Board, error) {
	for range maxSeedAttempts {
		b := board.New(board.DefaultWidth, board.DefaultHeight)
		n := 1 + frand.Intn(g.maxPieces)
		for range n {
			loc := board.Location{X: frand.Intn(b.Width()), Y: frand.Intn(b.Height())}
			p := board.RedMan
			if frand.Intn(2) == 1 || loc.Y == b.PromotionRow(board.Red) {
				p = board.RedKing
			}
			b = b.WithPiece(loc, p)
		}
		pres, err := InverseSuccessors(b, board.Red, g.successorLimit)
		if err != nil {
			return nil, err
		}
		if len(pres) > 0 {
			return pres[frand.Intn(len(pres))], nil
		}
	}
	return nil, ErrNoSeed
}

// WinnableBoards walks b, a red-to-move position, back by one black move and
// one red move and returns up to n of the resulting positions that red
// still wins by force.
func (g *Generator) WinnableBoards(ctx context.Context, b *board.Board, n int) ([]*board.Board, error) {
	first, err := InverseSuccessors(b, board.Black, g.successorLimit)
	if err != nil {
		return nil, err
	}
	frand.Shuffle(len(first), func(i, j int) { first[i], first[j] = first[j], first[i] })

	var second []*board.Board
	for _, f := range first[:min(len(first), firstStepLimit)] {
		pres, err := InverseSuccessors(f, board.Red, g.successorLimit)
		if err != nil {
			return nil, err
		}
		second = append(second, pres...)
	}
	second = lo.UniqBy(second, func(c *board.Board) string {
		return c.Canonical()
	})
	if g.forceTake {
		second = lo.Filter(second, func(c *board.Board, _ int) bool {
			return c.Len() > b.Len()
		})
	}
	frand.Shuffle(len(second), func(i, j int) { second[i], second[j] = second[j], second[i] })
	if g.smallFirst {
		slices.SortStableFunc(second, func(a, c *board.Board) int {
			return a.Len() - c.Len()
		})
	}
	log.Debug().Int("first-step", len(first)).Int("candidates", len(second)).
		Msg("walked-back")
	return g.rate(ctx, second, n)
}

// rate keeps the first n candidates, in order, that the analyzer proves
// are won.
func (g *Generator) rate(ctx context.Context, candidates []*board.Board, n int) ([]*board.Board, error) {
	winnable := make([]bool, len(candidates))
	var found atomic.Int64

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(g.threads)
	for i, c := range candidates {
		eg.Go(func() error {
			if found.Load() >= int64(n) {
				return nil
			}
			won, err := g.analyzer.IsWinning(ectx, c)
			if err != nil {
				return err
			}
			if won {
				winnable[i] = true
				found.Add(1)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	var boards []*board.Board
	for i, w := range winnable {
		if w && len(boards) < n {
			boards = append(boards, candidates[i])
		}
	}
	return boards, nil
}

// Generate builds a seed and returns up to n puzzles walked back from it.
func (g *Generator) Generate(ctx context.Context, n int) ([]*board.Board, error) {
	tstart := time.Now()
	seed, err := g.Seed()
	if err != nil {
		return nil, err
	}
	log.Debug().Str("seed", seed.Canonical()).Msg("puzzle-seed")
	boards, err := g.WinnableBoards(ctx, seed, n)
	if err != nil {
		return nil, err
	}
	log.Info().Int("requested", n).Int("generated", len(boards)).
		Float64("time-elapsed-sec", time.Since(tstart).Seconds()).
		Msg("puzzles-generated")
	return boards, nil
}

package alphabeta

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/checkers/board"
	"github.com/domino14/checkers/config"
	"github.com/domino14/checkers/eval"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

var DefaultConfig = config.DefaultConfig()

func setUpSolver(w eval.Weights) *Solver {
	ev, err := eval.NewWeightedEvaluator(w)
	if err != nil {
		panic(err)
	}
	s := &Solver{}
	err = s.Init(ev, DefaultConfig)
	if err != nil {
		panic(err)
	}
	return s
}

func pieceAt(b *board.Board, x, y int) board.Piece {
	p, _ := b.PieceAt(board.Location{X: x, Y: y})
	return p
}

func TestSingleJumpMirrored(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(eval.DefaultWeights())
	b := board.SingleJumpMirrored.Board()

	res, depth, line, err := s.Solve(context.Background(), b, 5, time.Minute)
	is.NoErr(err)
	is.Equal(depth, 3)
	is.True(res.IsWin())
	is.Equal(res.Value, 3.0*TerminalScale)
	is.Equal(res.Best.Origin, board.Location{X: 0, Y: 7})
	is.Equal(res.Best.Move, board.Move{DX: 1, DY: -1})

	is.Equal(len(line), 2)
	is.True(line[0].Equals(b))
	is.Equal(pieceAt(line[1], 2, 5), board.RedMan)
	is.Equal(line[1].NumPieces(board.Black), 0)
}

func TestKingSingleJump(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(eval.DefaultWeights())
	b := board.KingSingleJump.Board()

	res, _, line, err := s.Solve(context.Background(), b, 3, time.Minute)
	is.NoErr(err)
	is.True(res.IsWin())
	is.Equal(len(line), 2)
	is.Equal(pieceAt(line[1], 2, 2), board.RedKing)
	is.Equal(pieceAt(line[1], 1, 1), board.Empty)
}

func TestRedOnlyIsTerminal(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(eval.DefaultWeights())
	b := board.RedOnly.Board()
	is.Equal(s.Observer().TerminalValue(b), board.RedWins)

	v, cut, err := s.minimaxStep(context.Background(), b, 3, board.Red,
		math.Inf(-1), math.Inf(1))
	is.NoErr(err)
	is.True(!cut)
	is.Equal(v, 4.0*TerminalScale)
	// The search stops at the terminal node.
	is.Equal(s.Observer().Stats().NodesExpanded, 1)
	line, err := s.Observer().RecoverStrategy(b)
	is.NoErr(err)
	is.Equal(len(line), 0)
}

func TestNoMovesIsLoss(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(eval.DefaultWeights())
	b := board.Blocked.Board()

	_, err := s.Minimax(context.Background(), b, 3)
	is.True(errors.Is(err, ErrNoLegalMoves))

	v, _, err := s.minimaxStep(context.Background(), b, 2, board.Red,
		math.Inf(-1), math.Inf(1))
	is.NoErr(err)
	is.Equal(v, -3.0*TerminalScale)
}

func TestRecoverUnvisited(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(eval.DefaultWeights())
	line, err := s.Observer().RecoverStrategy(board.Opening.Board())
	is.NoErr(err)
	is.Equal(len(line), 0)

	_, _, err = s.IterativeMinimax(context.Background(), board.TwoOnOne.Board(), 3, time.Minute)
	is.NoErr(err)
	line, err = s.Observer().RecoverStrategy(board.Opening.Board())
	is.NoErr(err)
	is.Equal(len(line), 0)
	line, err = s.Observer().RecoverStrategy(board.TwoOnOne.Board())
	is.NoErr(err)
	is.True(len(line) > 1)
}

func TestAlphaBetaEquivalence(t *testing.T) {
	is := is.New(t)
	positions := []board.SamplePosition{
		board.TwoOnOne, board.KingVsMan, board.WinInThree, board.ForcedCapture,
		board.BranchingJump, board.DoubleJump, board.Opening,
	}
	for _, pos := range positions {
		for depth := 1; depth <= 4; depth++ {
			exhaustive := setUpSolver(eval.DefaultWeights())
			exhaustive.SetPruningDisabled(true)
			pruned := setUpSolver(eval.DefaultWeights())
			pruned.SetTranspositionTableOptim(false)
			pruned.SetFirstWinOptim(false)

			b := pos.Board()
			want, err := exhaustive.Minimax(context.Background(), b, depth)
			is.NoErr(err)
			got, err := pruned.Minimax(context.Background(), b, depth)
			is.NoErr(err)
			is.Equal(got.Value, want.Value) // pruning changed the value
			is.Equal(exhaustive.Observer().Stats().Prunes, 0)
			is.True(pruned.Observer().Stats().NodesExpanded <= exhaustive.Observer().Stats().NodesExpanded)
		}
	}
}

func TestTranspositionTableEquivalence(t *testing.T) {
	is := is.New(t)
	kings := func(rx, ry, bx, by int) *board.Board {
		return board.New(8, 8).
			WithPiece(board.Location{X: rx, Y: ry}, board.RedKing).
			WithPiece(board.Location{X: bx, Y: by}, board.BlackKing)
	}
	boards := []*board.Board{kings(3, 2, 6, 7), kings(0, 3, 4, 1)}
	for _, pos := range []board.SamplePosition{
		board.TwoOnOne, board.KingVsMan, board.WinInThree, board.ForcedCapture,
		board.BranchingJump, board.DoubleJump, board.Opening,
	} {
		boards = append(boards, pos.Board())
	}
	for _, b := range boards {
		for depth := 1; depth <= 6; depth++ {
			exhaustive := setUpSolver(eval.DefaultWeights())
			exhaustive.SetPruningDisabled(true)
			exhaustive.SetTranspositionTableOptim(false)
			withTT := setUpSolver(eval.DefaultWeights())
			withTT.SetFirstWinOptim(false)

			want, err := exhaustive.Minimax(context.Background(), b, depth)
			is.NoErr(err)
			got, err := withTT.Minimax(context.Background(), b, depth)
			is.NoErr(err)
			is.Equal(got.Value, want.Value) // table bounds changed the value
		}
	}
}

func TestUniqueSuccessorsOption(t *testing.T) {
	is := is.New(t)
	b, err := board.FromString("........\n.b.b....\n........\n.b.b....\n..R.....\n")
	is.NoErr(err)
	s1 := setUpSolver(eval.DefaultWeights())
	s2 := setUpSolver(eval.DefaultWeights())
	s2.SetUniqueSuccessors(true)
	r1, err := s1.Minimax(context.Background(), b, 3)
	is.NoErr(err)
	r2, err := s2.Minimax(context.Background(), b, 3)
	is.NoErr(err)
	is.Equal(r1.Value, r2.Value)
	is.True(r2.IsWin())
}

func TestIterativeDeepeningWinLength(t *testing.T) {
	is := is.New(t)
	b := board.WinInThree.Board()
	prev := 0
	for _, maxDepth := range []int{3, 5, 7, 9} {
		s := setUpSolver(eval.DefaultWeights())
		res, depth, line, err := s.Solve(context.Background(), b, maxDepth, time.Minute)
		is.NoErr(err)
		is.True(res.IsWin())
		is.Equal(depth, 3)
		plies := len(line) - 1
		is.Equal(plies, 3)
		is.True(plies >= prev)
		prev = plies
		is.Equal(line[len(line)-1].TerminalValue(), board.RedWins)
		is.Equal(pieceAt(line[1], 2, 5), board.RedKing)
	}
}

func TestIterativeDeepeningDeadline(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(eval.DefaultWeights())
	// With no time at all, the first pass still completes and no other
	// pass starts.
	res, depth, err := s.IterativeMinimax(context.Background(), board.Opening.Board(), 15, 0)
	is.NoErr(err)
	is.Equal(depth, 3)
	is.True(res.Best.Board != nil)
}

func TestIterativeDeepeningCancelled(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(eval.DefaultWeights())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, depth, err := s.IterativeMinimax(ctx, board.Opening.Board(), 15, time.Minute)
	is.NoErr(err)
	is.Equal(depth, 3)
}

func TestWeightFaultPropagates(t *testing.T) {
	is := is.New(t)
	w := eval.DefaultWeights()
	w.RedTurnRed = []float64{math.NaN(), 0, 0, 0, 0}
	s := setUpSolver(w)
	_, _, _, err := s.Solve(context.Background(), board.Opening.Board(), 5, time.Minute)
	is.True(errors.Is(err, eval.ErrWeightFault))
}

func TestPassDepths(t *testing.T) {
	is := is.New(t)
	is.Equal(passDepths(1), []int{1})
	is.Equal(passDepths(2), []int{2})
	is.Equal(passDepths(0), []int{1})
	is.Equal(passDepths(3), []int{3})
	is.Equal(passDepths(8), []int{3, 5, 7})
	is.Equal(passDepths(15), []int{3, 5, 7, 9, 11, 13, 15})
}

func TestTranspositionTable(t *testing.T) {
	is := is.New(t)
	o := setUpSolver(eval.DefaultWeights()).Observer()
	b := board.TwoOnOne.Board()
	inf := math.Inf(1)

	o.StoreTransposition(b, 3, board.Red, 12.5, TTExact)
	v, ok := o.TranspositionValue(b, 3, board.Red, -inf, inf)
	is.True(ok)
	is.Equal(v, 12.5)
	_, ok = o.TranspositionValue(b, 4, board.Red, -inf, inf)
	is.True(!ok) // too shallow
	_, ok = o.TranspositionValue(b, 3, board.Black, -inf, inf)
	is.True(!ok) // other mover

	// A shallower result does not replace a deeper one.
	o.StoreTransposition(b, 2, board.Red, -1, TTExact)
	v, _ = o.TranspositionValue(b, 1, board.Red, -inf, inf)
	is.Equal(v, 12.5)

	c := board.Opening.Board()
	o.StoreTransposition(c, 3, board.Red, 50, TTLower)
	_, ok = o.TranspositionValue(c, 3, board.Red, 0, 40)
	is.True(ok)
	_, ok = o.TranspositionValue(c, 3, board.Red, 0, 60)
	is.True(!ok)

	o.StoreTransposition(c, 4, board.Black, 50, TTUpper)
	_, ok = o.TranspositionValue(c, 3, board.Black, 60, inf)
	is.True(ok)
	_, ok = o.TranspositionValue(c, 3, board.Black, 40, inf)
	is.True(!ok)
	is.Equal(o.Stats().TranspositionHits, 4)

	o.ClearTranspositionTable()
	_, ok = o.TranspositionValue(b, 3, board.Red, -inf, inf)
	is.True(!ok)
}

func TestCacheCap(t *testing.T) {
	is := is.New(t)
	o := setUpSolver(eval.DefaultWeights()).Observer()
	o.maxEntries = 2
	for _, pos := range []board.SamplePosition{board.Opening, board.TwoOnOne, board.KingVsMan} {
		o.StoreTransposition(pos.Board(), 1, board.Red, 0, TTExact)
		_, err := o.Evaluate(pos.Board(), board.Red)
		is.NoErr(err)
	}
	is.Equal(len(o.ttable), 1)
	is.Equal(len(o.evalCache), 1)
}

func TestBoundFor(t *testing.T) {
	is := is.New(t)
	is.Equal(boundFor(5, 0, 10, board.Red, false), TTExact)
	is.Equal(boundFor(0, 0, 10, board.Red, false), TTUpper)
	is.Equal(boundFor(10, 0, 10, board.Black, false), TTLower)
	is.Equal(boundFor(5, 0, 10, board.Red, true), TTLower)
	is.Equal(boundFor(5, 0, 10, board.Black, true), TTUpper)
}

func TestObserverCaches(t *testing.T) {
	is := is.New(t)
	o := setUpSolver(eval.DefaultWeights()).Observer()
	b := board.TwoOnOne.Board()

	v1, err := o.Evaluate(b, board.Red)
	is.NoErr(err)
	v2, err := o.Evaluate(b, board.Red)
	is.NoErr(err)
	is.Equal(v1, v2)
	_, err = o.Evaluate(b, board.Black)
	is.NoErr(err)
	is.Equal(o.Stats().EvaluationHits, 1)

	_, err = o.Utility(b, board.Red)
	is.NoErr(err)
	_, err = o.Utility(b, board.Red)
	is.NoErr(err)
	is.Equal(o.Stats().UtilityHits, 1)

	o.TerminalValue(b)
	o.TerminalValue(b)
	is.Equal(o.Stats().TerminalHits, 1)

	o.ClearCaches()
	_, err = o.Evaluate(b, board.Red)
	is.NoErr(err)
	is.Equal(o.Stats().EvaluationHits, 1)
}

func TestShouldExit(t *testing.T) {
	is := is.New(t)
	o := setUpSolver(eval.DefaultWeights()).Observer()
	is.True(!o.ShouldExit())
	o.SetEndTime(time.Now().Add(-time.Second))
	is.True(o.ShouldExit())
	o.SetEndTime(time.Now().Add(time.Hour))
	is.True(!o.ShouldExit())

	ctx, cancel := context.WithCancel(context.Background())
	o.setContext(ctx)
	cancel()
	is.True(o.ShouldExit())
}

func TestUpdateStrategy(t *testing.T) {
	is := is.New(t)
	o := setUpSolver(eval.DefaultWeights()).Observer()
	parent := board.TwoOnOne.Board()
	succs, err := parent.Successors(board.Red)
	is.NoErr(err)
	is.True(len(succs) >= 2)

	o.UpdateStrategy(parent, succs[0], board.Red, 3, 10)
	o.UpdateStrategy(parent, succs[1], board.Red, 3, 10) // not strictly better
	e, ok := o.StrategyFor(parent, board.Red, 3)
	is.True(ok)
	is.True(e.Board == succs[0].Board)
	o.UpdateStrategy(parent, succs[1], board.Red, 3, 11)
	e, _ = o.StrategyFor(parent, board.Red, 3)
	is.True(e.Board == succs[1].Board)

	o.UpdateStrategy(parent, succs[0], board.Black, 3, 10)
	o.UpdateStrategy(parent, succs[1], board.Black, 3, 11)
	e, _ = o.StrategyFor(parent, board.Black, 3)
	is.True(e.Board == succs[0].Board)

	o.ClearStrategy()
	_, ok = o.StrategyFor(parent, board.Red, 3)
	is.True(!ok)
}

func TestRecoverStrategyCycle(t *testing.T) {
	is := is.New(t)
	o := setUpSolver(eval.DefaultWeights()).Observer()
	a := board.New(8, 8).
		WithPiece(board.Location{X: 1, Y: 1}, board.RedKing).
		WithPiece(board.Location{X: 6, Y: 6}, board.BlackKing)
	succs, err := a.Successors(board.Red)
	is.NoErr(err)
	moved := succs[0]
	o.UpdateStrategy(a, moved, board.Red, 3, 0)
	// Pretend black's best reply leads straight back to a.
	o.UpdateStrategy(moved.Board, board.Successor{Board: a}, board.Black, 2, 0)

	line, err := o.RecoverStrategy(a)
	is.True(errors.Is(err, ErrStrategyCycle))
	is.Equal(len(line), 0)
}

func TestBestLineSkipsCycle(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(eval.DefaultWeights())
	o := s.Observer()
	a := board.New(8, 8).
		WithPiece(board.Location{X: 3, Y: 2}, board.RedKing).
		WithPiece(board.Location{X: 6, Y: 7}, board.BlackKing)
	succs, err := a.Successors(board.Red)
	is.NoErr(err)
	o.UpdateStrategy(a, succs[0], board.Red, 3, 0)
	o.UpdateStrategy(succs[0].Board, board.Successor{Board: a}, board.Black, 2, 0)

	is.Equal(len(s.bestLine(a)), 0)
}

func TestSolveKingsEndgame(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(eval.DefaultWeights())
	b := board.New(8, 8).
		WithPiece(board.Location{X: 0, Y: 3}, board.RedKing).
		WithPiece(board.Location{X: 4, Y: 1}, board.BlackKing)
	res, depth, line, err := s.Solve(context.Background(), b, 11, time.Minute)
	is.NoErr(err)
	is.True(depth > 0)
	is.True(res.Best.Board != nil)
	if len(line) > 0 {
		is.True(line[0].Equals(b))
	}
}

func TestWriteDot(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(eval.DefaultWeights())
	_, _, err := s.IterativeMinimax(context.Background(), board.WinInThree.Board(), 3, time.Minute)
	is.NoErr(err)
	var buf bytes.Buffer
	is.NoErr(s.Observer().WriteDot(&buf))
	out := buf.String()
	is.True(strings.HasPrefix(out, "digraph {"))
	is.True(strings.Contains(out, "->"))
}

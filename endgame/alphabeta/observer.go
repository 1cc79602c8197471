package alphabeta

import (
	"context"
	"time"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/checkers/board"
	"github.com/domino14/checkers/eval"
)

// approxEntrySize is a rough per-entry cost of the cache maps, in bytes.
const approxEntrySize = 64

// Stats are the search counters.
type Stats struct {
	NodesExpanded     int `yaml:"nodes_expanded"`
	EvaluationHits    int `yaml:"evaluation_hits"`
	UtilityHits       int `yaml:"utility_hits"`
	TerminalHits      int `yaml:"terminal_hits"`
	TranspositionHits int `yaml:"transposition_hits"`
	Prunes            int `yaml:"prunes"`
}

// MarshalZerologObject lets the stats be logged with log.Info().Object.
func (s Stats) MarshalZerologObject(e *zerolog.Event) {
	e.Int("nodes", s.NodesExpanded).
		Int("evaluation-hits", s.EvaluationHits).
		Int("utility-hits", s.UtilityHits).
		Int("terminal-hits", s.TerminalHits).
		Int("transposition-hits", s.TranspositionHits).
		Int("prunes", s.Prunes)
}

type scoreKey struct {
	hash  uint64
	mover board.Player
}

// An Observer holds everything a search remembers: memoized evaluations,
// the transposition table, the strategy table, the deadline and the
// counters. It belongs to one search and is not safe for concurrent use.
type Observer struct {
	evaluator eval.Evaluator

	evalCache     map[scoreKey]float64
	utilityCache  map[scoreKey]float64
	terminalCache map[uint64]board.Outcome
	ttable        map[TranspositionKey]TranspositionValue
	strategy      map[StrategyKey]StrategyValue
	// largest depth present in the strategy table
	maxStrategyDepth int

	ctx     context.Context
	endTime time.Time
	// 0 means the caches grow without bound
	maxEntries int

	stats Stats
}

// NewObserver creates an observer scoring positions with ev. If
// memoryFraction is positive, each cache is reset whenever it would grow
// past that fraction of system memory.
func NewObserver(ev eval.Evaluator, memoryFraction float64) *Observer {
	o := &Observer{
		evaluator:     ev,
		evalCache:     make(map[scoreKey]float64),
		utilityCache:  make(map[scoreKey]float64),
		terminalCache: make(map[uint64]board.Outcome),
		ttable:        make(map[TranspositionKey]TranspositionValue),
		strategy:      make(map[StrategyKey]StrategyValue),
		ctx:           context.Background(),
	}
	if memoryFraction > 0 {
		totalMem := memory.TotalMemory()
		// Five tables share the budget.
		o.maxEntries = int(memoryFraction * float64(totalMem) / approxEntrySize / 5)
		log.Debug().Uint64("total-system-memory-bytes", totalMem).
			Int("max-entries", o.maxEntries).
			Msg("observer-cache-size")
	}
	return o
}

// Evaluate scores b for move ordering.
func (o *Observer) Evaluate(b *board.Board, mover board.Player) (float64, error) {
	return o.score(o.evalCache, &o.stats.EvaluationHits, b, mover)
}

// Utility scores b at a leaf of the search.
func (o *Observer) Utility(b *board.Board, mover board.Player) (float64, error) {
	return o.score(o.utilityCache, &o.stats.UtilityHits, b, mover)
}

func (o *Observer) score(cache map[scoreKey]float64, hits *int, b *board.Board,
	mover board.Player) (float64, error) {

	key := scoreKey{b.Hash(), mover}
	if v, ok := cache[key]; ok {
		*hits++
		return v, nil
	}
	v, err := o.evaluator.Evaluate(b, mover)
	if err != nil {
		return 0, err
	}
	if o.maxEntries > 0 && len(cache) >= o.maxEntries {
		clear(cache)
	}
	cache[key] = v
	return v, nil
}

// TerminalValue is the memoized board.TerminalValue.
func (o *Observer) TerminalValue(b *board.Board) board.Outcome {
	h := b.Hash()
	if v, ok := o.terminalCache[h]; ok {
		o.stats.TerminalHits++
		return v
	}
	v := b.TerminalValue()
	if o.maxEntries > 0 && len(o.terminalCache) >= o.maxEntries {
		clear(o.terminalCache)
	}
	o.terminalCache[h] = v
	return v
}

// ClearCaches drops the evaluation, utility and terminal caches.
func (o *Observer) ClearCaches() {
	clear(o.evalCache)
	clear(o.utilityCache)
	clear(o.terminalCache)
}

// SetEndTime sets the search deadline. A zero time means no deadline.
func (o *Observer) SetEndTime(t time.Time) {
	o.endTime = t
}

func (o *Observer) EndTime() time.Time {
	return o.endTime
}

// setContext ties ShouldExit to ctx.
func (o *Observer) setContext(ctx context.Context) {
	o.ctx = ctx
}

// ShouldExit reports whether the deadline has passed or the search context
// is done.
func (o *Observer) ShouldExit() bool {
	if o.ctx.Err() != nil {
		return true
	}
	return !o.endTime.IsZero() && time.Now().After(o.endTime)
}

func (o *Observer) Stats() Stats {
	return o.stats
}

func (o *Observer) ResetStats() {
	o.stats = Stats{}
}

package alphabeta

import (
	"github.com/rs/zerolog/log"

	"github.com/domino14/checkers/board"
)

// Bound says how a stored value relates to the true minimax value.
type Bound uint8

const (
	TTExact Bound = iota + 1
	TTLower
	TTUpper
)

// A TranspositionKey identifies a child position and the side that moved
// into it.
type TranspositionKey struct {
	Hash  uint64
	Mover board.Player
}

// A TranspositionValue is reusable only when Depth is at least the depth
// being asked for.
type TranspositionValue struct {
	Depth int
	Value float64
	Flag  Bound
}

// TranspositionValue returns the stored value of child as reached by mover
// with depth plies left, if an entry is deep enough and its bound decides
// the current window.
func (o *Observer) TranspositionValue(child *board.Board, depth int, mover board.Player,
	α, β float64) (float64, bool) {

	e, ok := o.ttable[TranspositionKey{child.Hash(), mover}]
	if !ok || e.Depth < depth {
		return 0, false
	}
	switch e.Flag {
	case TTExact:
	case TTLower:
		if e.Value < β {
			return 0, false
		}
	case TTUpper:
		if e.Value > α {
			return 0, false
		}
	default:
		return 0, false
	}
	o.stats.TranspositionHits++
	return e.Value, true
}

// StoreTransposition records the value of child. Deeper entries are never
// overwritten by shallower ones.
func (o *Observer) StoreTransposition(child *board.Board, depth int, mover board.Player,
	value float64, flag Bound) {

	key := TranspositionKey{child.Hash(), mover}
	if e, ok := o.ttable[key]; ok && e.Depth > depth {
		return
	}
	if o.maxEntries > 0 && len(o.ttable) >= o.maxEntries {
		log.Debug().Int("entries", len(o.ttable)).Msg("transposition-table-full")
		clear(o.ttable)
	}
	o.ttable[key] = TranspositionValue{Depth: depth, Value: value, Flag: flag}
}

func (o *Observer) ClearTranspositionTable() {
	clear(o.ttable)
}

// boundFor classifies a value returned for the window (α, β). A node that
// stopped scanning its children early only bounds its value from the side
// of the player who stopped.
func boundFor(value, α, β float64, mover board.Player, cut bool) Bound {
	switch {
	case value <= α:
		return TTUpper
	case value >= β:
		return TTLower
	case cut && mover == board.Red:
		return TTLower
	case cut:
		return TTUpper
	}
	return TTExact
}

package alphabeta

import (
	"errors"

	"github.com/domino14/checkers/board"
)

// ErrStrategyCycle is returned when following the strategy table revisits a
// position.
var ErrStrategyCycle = errors.New("strategy line revisits a position")

// A StrategyKey identifies a node: position, side to move and plies left.
type StrategyKey struct {
	Hash  uint64
	Mover board.Player
	Depth int
}

// A StrategyValue is the best child found so far for a node.
type StrategyValue struct {
	Board  *board.Board
	Origin board.Location
	Move   board.Move
	Value  float64
}

// UpdateStrategy records child as the best reply at parent if the node has
// no entry yet or value is strictly better for mover.
func (o *Observer) UpdateStrategy(parent *board.Board, child board.Successor,
	mover board.Player, depth int, value float64) {

	key := StrategyKey{parent.Hash(), mover, depth}
	if cur, ok := o.strategy[key]; ok && !better(mover, value, cur.Value) {
		return
	}
	o.strategy[key] = StrategyValue{
		Board:  child.Board,
		Origin: child.Origin,
		Move:   child.Move,
		Value:  value,
	}
	o.maxStrategyDepth = max(o.maxStrategyDepth, depth)
}

// StrategyFor returns the entry for a node.
func (o *Observer) StrategyFor(b *board.Board, mover board.Player, depth int) (StrategyValue, bool) {
	v, ok := o.strategy[StrategyKey{b.Hash(), mover, depth}]
	return v, ok
}

// ClearStrategy empties the strategy table.
func (o *Observer) ClearStrategy() {
	clear(o.strategy)
	o.maxStrategyDepth = 0
}

// nearestEntry finds the entry for (b, mover) at the smallest depth >= from.
func (o *Observer) nearestEntry(b *board.Board, mover board.Player, from int) (StrategyValue, int, bool) {
	for d := max(from, 0); d <= o.maxStrategyDepth; d++ {
		if v, ok := o.strategy[StrategyKey{b.Hash(), mover, d}]; ok {
			return v, d, true
		}
	}
	return StrategyValue{}, 0, false
}

// RecoverStrategy follows the strategy table from root, red to move, and
// returns the line of boards starting with root. A root the last search
// never expanded gives an empty line.
//
// A node reached through the transposition table may only have entries at a
// greater depth than the line demands; the nearest deeper entry is used.
// The line can therefore run past the depth of the pass.
func (o *Observer) RecoverStrategy(root *board.Board) ([]*board.Board, error) {
	entry, depth, ok := o.nearestEntry(root, board.Red, 0)
	if !ok {
		return nil, nil
	}
	line := []*board.Board{root}
	seen := map[uint64]bool{root.Hash(): true}
	mover := board.Red
	for {
		next := entry.Board
		if seen[next.Hash()] {
			return nil, ErrStrategyCycle
		}
		seen[next.Hash()] = true
		line = append(line, next)

		mover = mover.Opponent()
		depth--
		if depth < 1 {
			break
		}
		entry, ok = o.StrategyFor(next, mover, depth)
		if !ok {
			entry, depth, ok = o.nearestEntry(next, mover, depth+1)
		}
		if !ok {
			break
		}
	}
	return line, nil
}

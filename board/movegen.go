package board

import (
	"cmp"
	"fmt"
	"slices"
)

// MoveSet names one of the fixed displacement tables.
type MoveSet uint8

const (
	RedManMoves MoveSet = iota
	BlackManMoves
	KingMoves
)

var moveTables = [...][]Move{
	RedManMoves:   {{-1, -1}, {1, -1}},
	BlackManMoves: {{-1, 1}, {1, 1}},
	KingMoves:     {{-1, -1}, {1, -1}, {-1, 1}, {1, 1}},
}

// Displacements returns a copy of the moves in the set.
func (ms MoveSet) Displacements() []Move {
	return slices.Clone(moveTables[ms])
}

func (ms MoveSet) String() string {
	switch ms {
	case RedManMoves:
		return "red-man"
	case BlackManMoves:
		return "black-man"
	}
	return "king"
}

// MoveSetFor returns the move set for a piece.
func MoveSetFor(p Piece) MoveSet {
	switch {
	case p.IsKing():
		return KingMoves
	case p > 0:
		return RedManMoves
	}
	return BlackManMoves
}

// A Successor is one edge of the game tree: the resulting board and the
// origin and direction of the move that produced it. For a jump chain the
// origin and move are those of the first hop.
type Successor struct {
	Board  *Board
	Origin Location
	Move   Move
}

func (s Successor) String() string {
	return fmt.Sprintf("%v%v", s.Origin, s.Move)
}

// Mirror returns the successor as seen on the inverted board.
func (s Successor) Mirror(height int) Successor {
	m := Successor{
		Origin: Location{s.Origin.X, height - 1 - s.Origin.Y},
		Move:   Move{s.Move.DX, -s.Move.DY},
	}
	if s.Board != nil {
		m.Board = s.Board.Invert()
	}
	return m
}

func (b *Board) isMoveValid(player Player, loc Location, m Move) bool {
	p, ok := b.squares[loc]
	if !ok || !p.OwnedBy(player) {
		return false
	}
	dest := loc.Add(m)
	if !b.InBounds(dest) {
		return false
	}
	_, occupied := b.squares[dest]
	return !occupied
}

func (b *Board) isJumpValid(player Player, loc Location, m Move) bool {
	p, ok := b.squares[loc]
	if !ok || !p.OwnedBy(player) {
		return false
	}
	over, ok := b.squares[loc.Add(m)]
	if !ok || !over.OwnedBy(player.Opponent()) {
		return false
	}
	dest := loc.Jump(m)
	if !b.InBounds(dest) {
		return false
	}
	_, occupied := b.squares[dest]
	return !occupied
}

// PerformMove moves player's piece at loc one step along m. It does not
// check legality beyond the origin holding player's piece.
func (b *Board) PerformMove(player Player, loc Location, m Move) (*Board, error) {
	p, ok := b.squares[loc]
	if !ok || !p.OwnedBy(player) {
		return nil, fmt.Errorf("%w: %v cannot move from %v", ErrInvalidOperation, player, loc)
	}
	dest := loc.Add(m)
	nb := b.copy()
	delete(nb.squares, loc)
	nb.squares[dest] = b.landed(p, dest)
	return nb, nil
}

// PerformJump jumps player's piece at loc over loc+m, removing the jumped
// piece.
func (b *Board) PerformJump(player Player, loc Location, m Move) (*Board, error) {
	p, ok := b.squares[loc]
	if !ok || !p.OwnedBy(player) {
		return nil, fmt.Errorf("%w: %v cannot jump from %v", ErrInvalidOperation, player, loc)
	}
	dest := loc.Jump(m)
	nb := b.copy()
	delete(nb.squares, loc)
	delete(nb.squares, loc.Add(m))
	nb.squares[dest] = b.landed(p, dest)
	return nb, nil
}

// followMultiJump performs the hop from loc along m and keeps jumping from
// the landing square while any jump is available. Only boards where the
// chain ends are appended. The move set of the continuation is that of the
// piece before this hop, so a man crowned mid-chain keeps moving as a man.
func (b *Board) followMultiJump(succs []Successor, player Player, origin Location,
	first Move, loc Location, m Move) ([]Successor, error) {

	p := b.squares[loc]
	nb, err := b.PerformJump(player, loc, m)
	if err != nil {
		return nil, err
	}
	landing := loc.Jump(m)
	continued := false
	for _, next := range moveTables[MoveSetFor(p)] {
		if !nb.isJumpValid(player, landing, next) {
			continue
		}
		continued = true
		succs, err = nb.followMultiJump(succs, player, origin, first, landing, next)
		if err != nil {
			return nil, err
		}
	}
	if !continued {
		succs = append(succs, Successor{Board: nb, Origin: origin, Move: first})
	}
	return succs, nil
}

// HasJump returns whether player has any capture available.
func (b *Board) HasJump(player Player) bool {
	for _, loc := range b.Occupied() {
		p := b.squares[loc]
		if !p.OwnedBy(player) {
			continue
		}
		for _, m := range moveTables[MoveSetFor(p)] {
			if b.isJumpValid(player, loc, m) {
				return true
			}
		}
	}
	return false
}

// Successors returns every legal successor for player. If any capture is
// available only complete jump chains are returned; otherwise every single
// step move is. Pieces are visited in canonical order.
func (b *Board) Successors(player Player) ([]Successor, error) {
	var succs []Successor
	var err error
	locs := b.Occupied()
	for _, loc := range locs {
		p := b.squares[loc]
		if !p.OwnedBy(player) {
			continue
		}
		for _, m := range moveTables[MoveSetFor(p)] {
			if !b.isJumpValid(player, loc, m) {
				continue
			}
			succs, err = b.followMultiJump(succs, player, loc, m, loc, m)
			if err != nil {
				return nil, err
			}
		}
	}
	if len(succs) > 0 {
		return succs, nil
	}
	for _, loc := range locs {
		p := b.squares[loc]
		if !p.OwnedBy(player) {
			continue
		}
		for _, m := range moveTables[MoveSetFor(p)] {
			if !b.isMoveValid(player, loc, m) {
				continue
			}
			nb, err := b.PerformMove(player, loc, m)
			if err != nil {
				return nil, err
			}
			succs = append(succs, Successor{Board: nb, Origin: loc, Move: m})
		}
	}
	return succs, nil
}

// UniqueSuccessors is Successors with positions reached by more than one
// path collapsed to one entry.
func (b *Board) UniqueSuccessors(player Player) ([]Successor, error) {
	succs, err := b.Successors(player)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(succs, func(a, c Successor) int {
		return cmp.Compare(a.Board.Hash(), c.Board.Hash())
	})
	return slices.CompactFunc(succs, func(a, c Successor) bool {
		return a.Board.Hash() == c.Board.Hash()
	}), nil
}

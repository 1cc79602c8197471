package puzzles

import (
	"github.com/samber/lo"

	"github.com/domino14/checkers/board"
)

// maxInverseChain bounds how many extra hops an undone capture may grow
// into.
const maxInverseChain = 3

func vacant(b *board.Board, loc board.Location) bool {
	if !b.InBounds(loc) {
		return false
	}
	_, occupied := b.PieceAt(loc)
	return !occupied
}

// prePieces returns what p could have been before it arrived at loc. A king
// on its promotion row may have been crowned by that move.
func prePieces(b *board.Board, p board.Piece, loc board.Location) []board.Piece {
	if p.IsKing() && loc.Y == b.PromotionRow(p.Owner()) {
		return []board.Piece{p, p.Demote()}
	}
	return []board.Piece{p}
}

func inverseMoves(b *board.Board, loc board.Location, p board.Piece) []*board.Board {
	var pres []*board.Board
	for _, pre := range prePieces(b, p, loc) {
		for _, m := range board.MoveSetFor(pre).Displacements() {
			from := board.Location{X: loc.X - m.DX, Y: loc.Y - m.DY}
			if !vacant(b, from) {
				continue
			}
			pres = append(pres, b.WithPiece(loc, board.Empty).WithPiece(from, pre))
		}
	}
	return pres
}

// inverseJumps undoes a capture that ended at loc: the piece goes back two
// squares and an opponent man or king reappears between. Every result is
// also walked further back as an earlier hop of the same chain.
func inverseJumps(b *board.Board, loc board.Location, p board.Piece, hops int) []*board.Board {
	var pres []*board.Board
	opp := p.Owner().Opponent()
	captured := []board.Piece{opp.Man(), opp.Man().Promote()}
	for _, pre := range prePieces(b, p, loc) {
		for _, m := range board.MoveSetFor(pre).Displacements() {
			over := board.Location{X: loc.X - m.DX, Y: loc.Y - m.DY}
			from := board.Location{X: loc.X - 2*m.DX, Y: loc.Y - 2*m.DY}
			if !vacant(b, over) || !vacant(b, from) {
				continue
			}
			for _, c := range captured {
				nb := b.WithPiece(loc, board.Empty).WithPiece(over, c).WithPiece(from, pre)
				pres = append(pres, nb)
				if hops < maxInverseChain {
					pres = append(pres, inverseJumps(nb, from, pre, hops+1)...)
				}
			}
		}
	}
	return pres
}

// isPredecessor reports whether player, moving on pre, can reach b. A
// decided position has no moves after it.
func isPredecessor(pre, b *board.Board, player board.Player) (bool, error) {
	if pre.TerminalValue() != board.Ongoing {
		return false, nil
	}
	succs, err := pre.Successors(player)
	if err != nil {
		return false, err
	}
	return lo.ContainsBy(succs, func(s board.Successor) bool {
		return s.Board.Equals(b)
	}), nil
}

// InverseSuccessors returns the distinct positions from which player has a
// legal move reaching b. Candidates are built by undoing a step or a capture
// of each of player's pieces and kept only when forward move generation
// confirms them. If limit is positive, candidate generation stops once
// that many have been built.
func InverseSuccessors(b *board.Board, player board.Player, limit int) ([]*board.Board, error) {
	var candidates []*board.Board
	for _, loc := range b.Occupied() {
		p, _ := b.PieceAt(loc)
		if !p.OwnedBy(player) {
			continue
		}
		candidates = append(candidates, inverseMoves(b, loc, p)...)
		candidates = append(candidates, inverseJumps(b, loc, p, 1)...)
		if limit > 0 && len(candidates) >= limit {
			break
		}
	}
	candidates = lo.UniqBy(candidates, func(c *board.Board) string {
		return c.Canonical()
	})

	pres := make([]*board.Board, 0, len(candidates))
	for _, c := range candidates {
		ok, err := isPredecessor(c, b, player)
		if err != nil {
			return nil, err
		}
		if ok {
			pres = append(pres, c)
		}
	}
	return pres, nil
}

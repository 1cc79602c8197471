// Package board implements a sparse checkers board along with move and
// multi-jump generation, canonical hashing, terminal detection and the
// positional metrics used by the evaluator.
package board

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash"
	"github.com/samber/lo"
)

const (
	// DefaultWidth and DefaultHeight are the dimensions used by the text loaders.
	DefaultWidth  = 8
	DefaultHeight = 8
)

var (
	// ErrInvalidOperation is returned when a move or jump is attempted from an
	// empty square. It signals a bug in the caller, not a game condition.
	ErrInvalidOperation = errors.New("invalid board operation")
)

// A Location is a square on the board. X is the column, Y is the row; row 0
// is at the top of the text representation.
type Location struct {
	X int
	Y int
}

func (l Location) String() string {
	return fmt.Sprintf("(%d,%d)", l.X, l.Y)
}

// Add returns the location one step along m.
func (l Location) Add(m Move) Location {
	return Location{l.X + m.DX, l.Y + m.DY}
}

// Jump returns the landing square of a jump along m.
func (l Location) Jump(m Move) Location {
	return Location{l.X + 2*m.DX, l.Y + 2*m.DY}
}

// A Move is a diagonal displacement.
type Move struct {
	DX int
	DY int
}

func (m Move) String() string {
	return fmt.Sprintf("[%+d,%+d]", m.DX, m.DY)
}

// Outcome is the terminal status of a position.
type Outcome int8

const (
	Ongoing   Outcome = 0
	RedWins   Outcome = 1
	BlackWins Outcome = -1
)

func (o Outcome) String() string {
	switch o {
	case RedWins:
		return "red-wins"
	case BlackWins:
		return "black-wins"
	}
	return "ongoing"
}

// Board is a sparse checkers board. Only occupied squares are stored.
// A Board is never modified after construction; every move or jump creates
// a new Board. The canonical representation and hash are computed lazily.
type Board struct {
	width   int
	height  int
	squares map[Location]Piece

	repOnce  sync.Once
	strRep   string
	hashVal  uint64
	occupied []Location
}

// New creates an empty board.
func New(width, height int) *Board {
	return &Board{
		width:   width,
		height:  height,
		squares: make(map[Location]Piece),
	}
}

// FromPieces creates a board holding a copy of the given pieces. Empty
// pieces are ignored.
func FromPieces(width, height int, pieces map[Location]Piece) *Board {
	b := New(width, height)
	for loc, p := range pieces {
		if p != Empty {
			b.squares[loc] = p
		}
	}
	return b
}

func (b *Board) copy() *Board {
	return &Board{
		width:   b.width,
		height:  b.height,
		squares: maps.Clone(b.squares),
	}
}

func (b *Board) Width() int {
	return b.width
}

func (b *Board) Height() int {
	return b.height
}

// PieceAt returns the piece at loc, and whether the square is occupied.
func (b *Board) PieceAt(loc Location) (Piece, bool) {
	p, ok := b.squares[loc]
	return p, ok
}

// InBounds returns whether loc lies on the board.
func (b *Board) InBounds(loc Location) bool {
	return loc.X >= 0 && loc.X < b.width && loc.Y >= 0 && loc.Y < b.height
}

// NumPieces returns the number of pieces owned by player.
func (b *Board) NumPieces(player Player) int {
	return lo.CountBy(lo.Values(b.squares), func(p Piece) bool {
		return p.OwnedBy(player)
	})
}

// Len returns the number of occupied squares.
func (b *Board) Len() int {
	return len(b.squares)
}

// WithPiece returns a new board with p placed at loc (or the square cleared
// if p is Empty).
func (b *Board) WithPiece(loc Location, p Piece) *Board {
	nb := b.copy()
	if p == Empty {
		delete(nb.squares, loc)
	} else {
		nb.squares[loc] = p
	}
	return nb
}

// Pieces returns a copy of the occupied squares.
func (b *Board) Pieces() map[Location]Piece {
	return maps.Clone(b.squares)
}

func (b *Board) setRep() {
	b.occupied = slices.SortedFunc(maps.Keys(b.squares), func(a, c Location) int {
		if a.X != c.X {
			return a.X - c.X
		}
		return a.Y - c.Y
	})
	var sb strings.Builder
	for _, loc := range b.occupied {
		sb.WriteString(strconv.Itoa(int(b.squares[loc])))
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(loc.X))
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(loc.Y))
		sb.WriteByte(';')
	}
	b.strRep = sb.String()
	b.hashVal = xxhash.Sum64String(b.strRep)
}

// Canonical returns the canonical string of the board: occupied squares
// sorted by (x, y), each written as "value,x,y;". It depends only on the
// occupied contents, never on the order pieces were placed.
func (b *Board) Canonical() string {
	b.repOnce.Do(b.setRep)
	return b.strRep
}

// Hash returns the hash of the canonical string.
func (b *Board) Hash() uint64 {
	b.repOnce.Do(b.setRep)
	return b.hashVal
}

// Occupied returns the occupied locations in canonical order. The returned
// slice must not be modified.
func (b *Board) Occupied() []Location {
	b.repOnce.Do(b.setRep)
	return b.occupied
}

// Equals compares two boards by their occupied contents.
func (b *Board) Equals(o *Board) bool {
	return b.width == o.width && b.height == o.height && b.Canonical() == o.Canonical()
}

// TerminalValue returns RedWins if black has no pieces left, BlackWins if
// red has none, and Ongoing otherwise.
func (b *Board) TerminalValue() Outcome {
	red, black := 0, 0
	for _, p := range b.squares {
		if p > 0 {
			red++
		} else if p < 0 {
			black++
		}
	}
	switch {
	case red == 0:
		return BlackWins
	case black == 0:
		return RedWins
	}
	return Ongoing
}

// PromotionRow is the farthest row from player's side.
func (b *Board) PromotionRow(player Player) int {
	if player == Red {
		return 0
	}
	return b.height - 1
}

// landed returns the value of piece p after it arrives at dest.
func (b *Board) landed(p Piece, dest Location) Piece {
	if !p.IsKing() && dest.Y == b.PromotionRow(p.Owner()) {
		return p.Promote()
	}
	return p
}

// Invert returns the board seen from the other side: every piece changes
// color and the board is mirrored across the horizontal axis.
func (b *Board) Invert() *Board {
	nb := New(b.width, b.height)
	for loc, p := range b.squares {
		nb.squares[Location{loc.X, b.height - 1 - loc.Y}] = -p
	}
	return nb
}

package board

import (
	"fmt"
	"os"
)

var (
	ColorSupport = os.Getenv("CHECKERS_DISABLE_COLOR") != "on"
)

// Player is a side. Red is the maximizer and moves toward row 0; Black is
// the minimizer and moves toward the last row.
type Player int8

const (
	Red   Player = 1
	Black Player = -1
)

func (p Player) Opponent() Player {
	return -p
}

func (p Player) String() string {
	switch p {
	case Red:
		return "red"
	case Black:
		return "black"
	}
	return fmt.Sprintf("player(%d)", int8(p))
}

// Man returns the player's uncrowned piece.
func (p Player) Man() Piece {
	return Piece(p)
}

// A Piece is the content of an occupied square. The sign is the owner and
// the magnitude is 1 for a man and 2 for a king.
type Piece int8

const (
	Empty     Piece = 0
	RedMan    Piece = 1
	RedKing   Piece = 2
	BlackMan  Piece = -1
	BlackKing Piece = -2
)

// Owner returns the side owning the piece. Empty returns 0.
func (p Piece) Owner() Player {
	switch {
	case p > 0:
		return Red
	case p < 0:
		return Black
	}
	return 0
}

func (p Piece) OwnedBy(player Player) bool {
	return p != Empty && p.Owner() == player
}

func (p Piece) IsKing() bool {
	return p == RedKing || p == BlackKing
}

// Promote returns the king of the same color. Kings are returned unchanged.
func (p Piece) Promote() Piece {
	if p == RedMan || p == BlackMan {
		return p * 2
	}
	return p
}

// Demote returns the man of the same color. Men are returned unchanged.
func (p Piece) Demote() Piece {
	if p.IsKing() {
		return p / 2
	}
	return p
}

// Material is the piece weight used for material balance: 1 for men, 2 for
// kings.
func (p Piece) Material() int {
	if p < 0 {
		return int(-p)
	}
	return int(p)
}

// Rune returns the text character for the piece.
func (p Piece) Rune() rune {
	switch p {
	case RedMan:
		return 'r'
	case RedKing:
		return 'R'
	case BlackMan:
		return 'b'
	case BlackKing:
		return 'B'
	}
	return '.'
}

// PieceFromRune parses a text character. '.' is Empty.
func PieceFromRune(r rune) (Piece, bool) {
	switch r {
	case 'r':
		return RedMan, true
	case 'R':
		return RedKing, true
	case 'b':
		return BlackMan, true
	case 'B':
		return BlackKing, true
	case '.':
		return Empty, true
	}
	return Empty, false
}

func (p Piece) String() string {
	return string(p.Rune())
}

// displayString is the character used by ToDisplayText, colored if the
// terminal supports it.
func (p Piece) displayString() string {
	if !ColorSupport || p == Empty {
		return string(p.Rune())
	}
	if p > 0 {
		return fmt.Sprintf("\033[31m%c\033[0m", p.Rune())
	}
	return fmt.Sprintf("\033[34m%c\033[0m", p.Rune())
}

package board

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrBadCharacter is returned for any character other than r R b B . or
	// a newline in a text board.
	ErrBadCharacter = errors.New("bad character in board text")
	// ErrOffBoard is returned when a text board places a piece outside the
	// fixed 8x8 area.
	ErrOffBoard = errors.New("piece outside board")
)

// FromString parses a text board. Each line is a row starting at row 0 and
// each character a column; r and b are men, R and B kings, and . is empty.
// The board is always DefaultWidth x DefaultHeight regardless of the text.
func FromString(s string) (*Board, error) {
	b := New(DefaultWidth, DefaultHeight)
	x, y := 0, 0
	for _, ch := range s {
		if ch == '\n' {
			x = 0
			y++
			continue
		}
		p, ok := PieceFromRune(ch)
		if !ok {
			return nil, fmt.Errorf("%w: %q at row %d, column %d", ErrBadCharacter, ch, y, x)
		}
		if p != Empty {
			loc := Location{x, y}
			if !b.InBounds(loc) {
				return nil, fmt.Errorf("%w: %v", ErrOffBoard, loc)
			}
			b.squares[loc] = p
		}
		x++
	}
	return b, nil
}

// ReadFromFile loads a text board from the given path. Windows line endings
// are accepted.
func ReadFromFile(path string) (*Board, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	b, err := FromString(strings.ReplaceAll(string(contents), "\r\n", "\n"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// String returns the text grid, one line per row, each line terminated by a
// newline. FromString(b.String()) reproduces b.
func (b *Board) String() string {
	var sb strings.Builder
	sb.Grow((b.width + 1) * b.height)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			sb.WriteRune(b.squares[Location{x, y}].Rune())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ToDisplayText renders the board with column letters and row numbers for
// the shell.
func (b *Board) ToDisplayText() string {
	var str string
	row := "   "
	for i := 0; i < b.width; i++ {
		row = row + fmt.Sprintf("%d", i) + " "
	}
	str = str + row + "\n"
	str = str + "   " + strings.Repeat("-", b.width*2) + "\n"
	for y := 0; y < b.height; y++ {
		row := fmt.Sprintf("%2d|", y)
		for x := 0; x < b.width; x++ {
			row = row + b.squares[Location{x, y}].displayString() + " "
		}
		row = row + "|"
		str = str + row + "\n"
	}
	str = str + "   " + strings.Repeat("-", b.width*2) + "\n"
	return "\n" + str
}

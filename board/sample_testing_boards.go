package board

// This file contains some sample positions, used solely for testing.

import "strings"

// SamplePosition is a text representation of a board.
type SamplePosition string

const (
	// SingleJumpMirrored has one red man at (0,7) and one black man at (1,6).
	// Red's only legal move is the capture landing on (2,5).
	SingleJumpMirrored SamplePosition = `
........
........
........
........
........
........
.b......
r.......
`
	// KingSingleJump has a red king at (0,0) and a black man at (1,1).
	KingSingleJump SamplePosition = `
R.......
.b......
........
........
........
........
........
........
`
	// RedOnly has no black pieces; red has already won.
	RedOnly SamplePosition = `
........
........
..r.....
........
....R...
........
........
........
`
	// DoubleJump lets the red man at (1,7) take two black men in one chain,
	// ending on (5,3).
	DoubleJump SamplePosition = `
........
........
........
........
....b...
........
..b.....
.r......
`
	// ForcedCapture offers red a quiet move with one man and a capture with
	// the other; only the capture is legal.
	ForcedCapture SamplePosition = `
........
........
........
........
......r.
..b.....
.r......
........
`
	// BranchingJump gives the red king at (3,3) a choice of two capture
	// directions.
	BranchingJump SamplePosition = `
........
........
..b.b...
...R....
........
........
........
........
`
	// KingVsMan is a king hunting a lone man; red wins in a few plies.
	KingVsMan SamplePosition = `
........
........
........
........
...R....
........
.....b..
........
`
	// WinInThree: the red king steps to (2,5), the black man's only move is
	// to (1,4), and the king takes it.
	WinInThree SamplePosition = `
........
........
........
b.......
........
........
...R....
........
`
	// TwoOnOne is a small middle-game with red up a piece.
	TwoOnOne SamplePosition = `
........
..b.....
........
........
.....r..
........
...r....
........
`
	// Blocked leaves red's only man on row 0 with nowhere to go; red has no
	// legal moves.
	Blocked SamplePosition = `
r.......
........
........
........
........
........
.......b
........
`
	// Opening is a crowded position with several pieces each.
	Opening SamplePosition = `
.b.b.b.b
b.b.b.b.
........
........
........
........
.r.r.r.r
r.r.r.r.
`
)

// Text returns the position without the leading newline of the literal.
func (s SamplePosition) Text() string {
	return strings.TrimPrefix(string(s), "\n")
}

// Board parses the position. It panics on malformed samples.
func (s SamplePosition) Board() *Board {
	b, err := FromString(s.Text())
	if err != nil {
		panic(err)
	}
	return b
}

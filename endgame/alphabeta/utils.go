package alphabeta

import "github.com/domino14/checkers/board"

// better reports whether a is strictly preferable to b for mover.
func better(mover board.Player, a, b float64) bool {
	if mover == board.Red {
		return a > b
	}
	return a < b
}

// terminalScore scores a decided game with remaining plies left. Wins found
// sooner are worth more.
func terminalScore(o board.Outcome, remaining int) float64 {
	return float64(int(o) * (remaining + 1) * TerminalScale)
}

// passDepths lists the depths searched by iterative deepening: odd depths
// from 3 up to maxDepth, or maxDepth alone when it is below 3.
func passDepths(maxDepth int) []int {
	if maxDepth < 3 {
		return []int{max(maxDepth, 1)}
	}
	var depths []int
	for d := 3; d <= maxDepth; d += 2 {
		depths = append(depths, d)
	}
	return depths
}

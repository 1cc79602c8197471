package analyzer

import (
	"context"
	"os"
	"strings"

	"github.com/samber/lo"

	"github.com/domino14/checkers/board"
)

// BoardSeparator follows every board of a continuation in text form.
const BoardSeparator = "---\n"

// FormatContinuation writes each board's text followed by BoardSeparator.
func FormatContinuation(line []*board.Board) string {
	return strings.Join(lo.Map(line, func(b *board.Board, _ int) string {
		return b.String() + BoardSeparator
	}), "")
}

// ParseContinuation reads text written by FormatContinuation.
func ParseContinuation(s string) ([]*board.Board, error) {
	var line []*board.Board
	for _, chunk := range strings.Split(s, BoardSeparator) {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		b, err := board.FromString(chunk)
		if err != nil {
			return nil, err
		}
		line = append(line, b)
	}
	return line, nil
}

// OptimalContinuationFromString parses a text board and returns the best
// line in the continuation text format.
func (an *Analyzer) OptimalContinuationFromString(ctx context.Context, s string) (string, error) {
	b, err := board.FromString(s)
	if err != nil {
		return "", err
	}
	line, err := an.OptimalContinuation(ctx, b)
	if err != nil {
		return "", err
	}
	return FormatContinuation(line), nil
}

// OptimalContinuationFromFile solves the board in inPath and writes the best
// line to outPath, boards separated by blank lines.
func (an *Analyzer) OptimalContinuationFromFile(ctx context.Context, inPath, outPath string) error {
	b, err := board.ReadFromFile(inPath)
	if err != nil {
		return err
	}
	line, err := an.OptimalContinuation(ctx, b)
	if err != nil {
		return err
	}
	var sb strings.Builder
	for _, lb := range line {
		sb.WriteString(lb.String())
		sb.WriteString("\n")
	}
	return os.WriteFile(outPath, []byte(sb.String()), 0644)
}

func (an *Analyzer) OptimalWinLengthFromString(ctx context.Context, s string) (int, error) {
	b, err := board.FromString(s)
	if err != nil {
		return 0, err
	}
	return an.OptimalWinLength(ctx, b)
}

func (an *Analyzer) OptimalWinLengthFromFile(ctx context.Context, path string) (int, error) {
	b, err := board.ReadFromFile(path)
	if err != nil {
		return 0, err
	}
	return an.OptimalWinLength(ctx, b)
}

func (an *Analyzer) IsWinningFromString(ctx context.Context, s string) (bool, error) {
	b, err := board.FromString(s)
	if err != nil {
		return false, err
	}
	return an.IsWinning(ctx, b)
}

func (an *Analyzer) IsWinningFromFile(ctx context.Context, path string) (bool, error) {
	b, err := board.ReadFromFile(path)
	if err != nil {
		return false, err
	}
	return an.IsWinning(ctx, b)
}

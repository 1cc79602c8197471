package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/checkers/analyzer"
	"github.com/domino14/checkers/board"
	"github.com/domino14/checkers/cache"
	"github.com/domino14/checkers/config"
	"github.com/domino14/checkers/puzzles"
)

type CmdOptions map[string]string

func (c CmdOptions) String(key string) string {
	return c[key]
}

func (c CmdOptions) Int(key string) (int, error) {
	v, ok := c[key]
	if !ok {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v)
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	if _, ok := c[key]; !ok {
		return defaultI, nil
	}
	return c.Int(key)
}

func (c CmdOptions) Bool(key string) bool {
	return strings.ToLower(c[key]) == "true"
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(usage("usage")), nil
	}
	return msg(usageTopic(cmd.args[0])), nil
}

func (sc *ShellController) load(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: load <board file>")
	}
	b, err := board.ReadFromFile(cmd.args[0])
	if err != nil {
		return nil, err
	}
	sc.setBoard(b, cmd.args[0])
	return msg(sc.boardDisplay()), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if sc.curBoard == nil {
		return nil, errNoBoard
	}
	return msg(sc.boardDisplay()), nil
}

func (sc *ShellController) side(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(sc.analyzer.SideToMove().String() + " to move"), nil
	}
	switch cmd.args[0] {
	case "red":
		sc.analyzer.SetSideToMove(board.Red)
	case "black":
		sc.analyzer.SetSideToMove(board.Black)
	default:
		return nil, fmt.Errorf("side must be red or black, not %q", cmd.args[0])
	}
	sc.lastAnalysis = nil
	return msg(sc.analyzer.SideToMove().String() + " to move"), nil
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	settings := sc.config.AllSettings()
	if len(cmd.args) == 0 {
		keys := lo.Keys(settings)
		slices.Sort(keys)
		lines := lo.Map(keys, func(k string, _ int) string {
			return fmt.Sprintf("%-24s%v", k, settings[k])
		})
		return msg(strings.Join(lines, "\n")), nil
	}
	key := cmd.args[0]
	if len(cmd.args) == 1 {
		if !sc.config.IsSet(key) {
			return nil, fmt.Errorf("unknown setting %q", key)
		}
		return msg(fmt.Sprintf("%v", sc.config.Get(key))), nil
	}
	old := sc.config.Get(key)
	if key == config.ConfigWeightsPath {
		cache.Forget(cmd.args[1])
	}
	sc.config.Set(key, cmd.args[1])
	side := sc.analyzer.SideToMove()
	an, err := analyzer.NewAnalyzer(sc.config)
	if err != nil {
		// Keep the previous, working settings.
		sc.config.Set(key, old)
		return nil, err
	}
	an.SetSideToMove(side)
	sc.analyzer = an
	sc.lastAnalysis = nil
	log.Debug().Str("key", key).Str("value", cmd.args[1]).Msg("setting-changed")
	return msg("set " + key + " to " + cmd.args[1]), nil
}

// analysis returns the analysis of the current board, solving it if needed.
func (sc *ShellController) analysis(fresh bool) (*analyzer.Analysis, error) {
	if sc.curBoard == nil {
		return nil, errNoBoard
	}
	if sc.lastAnalysis != nil && !fresh {
		return sc.lastAnalysis, nil
	}
	a, err := sc.analyzer.Analyze(context.Background(), sc.curBoard)
	if err != nil {
		return nil, err
	}
	sc.lastAnalysis = a
	return a, nil
}

func (sc *ShellController) solve(cmd *shellcmd) (*Response, error) {
	a, err := sc.analysis(true)
	if err != nil {
		return nil, err
	}
	out, err := a.YAML()
	if err != nil {
		return nil, err
	}
	return msg(out), nil
}

func (sc *ShellController) line(cmd *shellcmd) (*Response, error) {
	a, err := sc.analysis(false)
	if err != nil {
		return nil, err
	}
	if len(a.Boards()) == 0 {
		return msg("no strategy line could be recovered for this position"), nil
	}
	return msg(analyzer.FormatContinuation(a.Boards())), nil
}

func (sc *ShellController) winLength(cmd *shellcmd) (*Response, error) {
	a, err := sc.analysis(false)
	if err != nil {
		return nil, err
	}
	if a.WinLength == analyzer.NoForcedWin {
		return msg(fmt.Sprintf("no forced win found (searched %d plies)", a.Depth)), nil
	}
	return msg(fmt.Sprintf("%v wins in %d plies", a.SideToMove, a.WinLength)), nil
}

func (sc *ShellController) isWinning(cmd *shellcmd) (*Response, error) {
	a, err := sc.analysis(false)
	if err != nil {
		return nil, err
	}
	return msg(strconv.FormatBool(a.ForcedWin)), nil
}

func (sc *ShellController) dot(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: dot <output file>")
	}
	if sc.curBoard == nil {
		return nil, errNoBoard
	}
	f, err := os.Create(cmd.args[0])
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := sc.analyzer.WriteDot(context.Background(), sc.curBoard, f); err != nil {
		return nil, err
	}
	return msg("wrote strategy graph to " + cmd.args[0]), nil
}

func (sc *ShellController) puzzle(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 1 {
		idx, err := strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, err
		}
		if idx < 1 || idx > len(sc.puzzles) {
			return nil, fmt.Errorf("there are %d generated puzzles", len(sc.puzzles))
		}
		sc.analyzer.SetSideToMove(board.Red)
		sc.setBoard(sc.puzzles[idx-1], fmt.Sprintf("puzzle %d of %d", idx, len(sc.puzzles)))
		return msg(sc.boardDisplay()), nil
	}
	n, err := cmd.options.IntDefault("n", 1)
	if err != nil {
		return nil, err
	}
	g, err := puzzles.NewGenerator(sc.config)
	if err != nil {
		return nil, err
	}
	g.SetSmallFirst(cmd.options.Bool("small-first"))
	if cmd.options.String("force-take") == "false" {
		g.SetForceTake(false)
	}
	boards, err := g.Generate(context.Background(), n)
	if err != nil {
		return nil, err
	}
	if len(boards) == 0 {
		return msg("no winnable puzzles found from this seed; try again"), nil
	}
	sc.puzzles = boards
	return sc.puzzle(&shellcmd{cmd: "puzzle", args: []string{"1"}})
}

func (sc *ShellController) batch(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: batch <board file> [<board file> ...]")
	}
	boards := make([]*board.Board, len(cmd.args))
	for i, path := range cmd.args {
		b, err := board.ReadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		boards[i] = b
	}
	results, err := sc.analyzer.AnalyzeBatch(context.Background(), boards,
		sc.config.GetInt(config.ConfigThreads))
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-32s%-8s%-8s%-8s%s\n", "File", "Won", "Plies", "Depth", "Value")
	for i, a := range results {
		plies := "-"
		if a.WinLength != analyzer.NoForcedWin {
			plies = strconv.Itoa(a.WinLength)
		}
		fmt.Fprintf(&sb, "%-32s%-8v%-8s%-8d%.2f\n", cmd.args[i], a.ForcedWin, plies, a.Depth, a.Value)
	}
	return msg(sb.String()), nil
}

package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/checkers/analyzer"
	"github.com/domino14/checkers/board"
	"github.com/domino14/checkers/config"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errNoBoard           = errors.New("please load a board first with the `load` command")
)

type ShellController struct {
	l      *readline.Instance
	out    io.Writer
	looped bool

	config     *config.Config
	gitVersion string

	analyzer     *analyzer.Analyzer
	curBoard     *board.Board
	curPlace     string
	lastAnalysis *analyzer.Analysis
	puzzles      []*board.Board
}

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func NewShellController(cfg *config.Config, gitVersion string) (*ShellController, error) {
	sc, err := NewCommandController(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}
	sc.gitVersion = gitVersion
	sc.l, err = readline.NewEx(&readline.Config{
		Prompt:          "\033[31mcheckers>\033[0m ",
		HistoryFile:     "/tmp/checkers_readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    NewShellCompleter(sc),

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return nil, err
	}
	sc.out = sc.l.Stderr()
	return sc, nil
}

// NewCommandController returns a controller without a terminal that writes
// command output to out.
func NewCommandController(cfg *config.Config, out io.Writer) (*ShellController, error) {
	an, err := analyzer.NewAnalyzer(cfg)
	if err != nil {
		return nil, err
	}
	return &ShellController{config: cfg, out: out, analyzer: an}, nil
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func (sc *ShellController) setBoard(b *board.Board, place string) {
	sc.curBoard = b
	sc.curPlace = place
	sc.lastAnalysis = nil
}

func (sc *ShellController) boardDisplay() string {
	var sb strings.Builder
	if sc.curPlace != "" {
		sb.WriteString("Position: " + sc.curPlace + "\n")
	}
	sb.WriteString(sc.curBoard.ToDisplayText())
	fmt.Fprintf(&sb, "\n%v to move, red %d / black %d pieces\n",
		sc.analyzer.SideToMove(), sc.curBoard.NumPieces(board.Red),
		sc.curBoard.NumPieces(board.Black))
	return sb.String()
}

func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := CmdOptions{}
	for i := 1; i < len(fields); i++ {
		if strings.HasPrefix(fields[i], "-") {
			if i == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			options[fields[i][1:]] = fields[i+1]
			i++
			continue
		}
		args = append(args, fields[i])
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

func (sc *ShellController) dispatch(cmd *shellcmd) (*Response, error) {
	switch cmd.cmd {
	case "help":
		return sc.help(cmd)
	case "load":
		return sc.load(cmd)
	case "board", "s":
		return sc.show(cmd)
	case "side":
		return sc.side(cmd)
	case "set":
		return sc.set(cmd)
	case "solve":
		return sc.solve(cmd)
	case "line":
		return sc.line(cmd)
	case "winlength":
		return sc.winLength(cmd)
	case "iswinning":
		return sc.isWinning(cmd)
	case "dot":
		return sc.dot(cmd)
	case "puzzle":
		return sc.puzzle(cmd)
	case "batch":
		return sc.batch(cmd)
	case "version":
		return msg(sc.gitVersion), nil
	}
	log.Debug().Msgf("you said: %v", strconv.Quote(cmd.cmd))
	return nil, fmt.Errorf("unknown command %q; try `help`", cmd.cmd)
}

// runLine executes one command and prints its response.
func (sc *ShellController) runLine(line string) error {
	cmd, err := extractFields(line)
	if err != nil {
		return err
	}
	resp, err := sc.dispatch(cmd)
	if err != nil {
		return err
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
	return nil
}

func (sc *ShellController) standardModeSwitch(line string, sig chan os.Signal) error {
	if line == "exit" || line == "bye" {
		sig <- syscall.SIGINT
		return errors.New("sending quit signal")
	}
	err := sc.runLine(line)
	if err != nil && err != errNoData {
		sc.showError(err)
	}
	return nil
}

// Execute runs a single command line, as given on the command line.
func (sc *ShellController) Execute(line string) error {
	return sc.runLine(line)
}

func (sc *ShellController) Loop(sig chan os.Signal) {

	sc.looped = true
	defer sc.l.Close()

	for {

		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)

		err = sc.standardModeSwitch(line, sig)
		if err != nil {
			log.Error().Err(err).Msg("")
			break
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

// Cleanup releases the terminal if Loop never ran.
func (sc *ShellController) Cleanup() {
	if sc.l != nil && !sc.looped {
		sc.l.Close()
	}
}

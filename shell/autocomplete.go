package shell

import (
	"slices"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/samber/lo"
)

// ShellCompleter provides context-aware autocomplete for shell commands
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string
	Args    []string
}

var commandMetadata = map[string]CommandMetadata{
	"side": {
		Args: []string{"red", "black"},
	},
	"puzzle": {
		Options: []string{"-n", "-small-first", "-force-take"},
	},
	"help": {
		Args: []string{"load", "solve", "puzzle", "batch", "set"},
	},
}

var commandNames = []string{
	"help", "load", "board", "side", "set", "solve", "line", "winlength",
	"iswinning", "dot", "puzzle", "batch", "version", "exit",
}

var boolValues = []string{"true", "false"}

// Do implements the readline.AutoComplete interface
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		// An unterminated quote; fall back to simple space splitting.
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}
		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}

		switch {
		case strings.HasPrefix(lastCompleteField, "-"):
			switch strings.TrimPrefix(lastCompleteField, "-") {
			case "small-first", "force-take":
				completions = boolValues
			}
		case cmdName == "set" && lastCompleteField == "set":
			completions = lo.Keys(c.sc.config.AllSettings())
			slices.Sort(completions)
		case cmdName == "set":
			completions = boolValues
		}

		if completions == nil {
			if metadata, exists := commandMetadata[cmdName]; exists {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}

package alphabeta

import (
	"cmp"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

// Visualize the strategy table with dot

type dotfile struct {
	declarations []string
	directives   []string
}

func genDotFile(o *Observer, d *dotfile) {
	keys := slices.SortedFunc(maps.Keys(o.strategy), func(a, b StrategyKey) int {
		if c := cmp.Compare(b.Depth, a.Depth); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Hash, b.Hash); c != 0 {
			return c
		}
		return cmp.Compare(a.Mover, b.Mover)
	})
	declared := map[uint64]bool{}
	declare := func(h uint64, label string) {
		if declared[h] {
			return
		}
		declared[h] = true
		d.declarations = append(d.declarations,
			fmt.Sprintf("n_%x [label=\"%s\"];", h, label))
	}
	for _, k := range keys {
		v := o.strategy[k]
		declare(k.Hash, fmt.Sprintf("%x", k.Hash))
		declare(v.Board.Hash(), strings.ReplaceAll(v.Board.String(), "\n", "\\n"))
		d.directives = append(d.directives, fmt.Sprintf(
			"n_%x -> n_%x [label=\"%v %v%v\\nd=%d v=%v\"];",
			k.Hash, v.Board.Hash(), k.Mover, v.Origin, v.Move, k.Depth, v.Value))
	}
}

// WriteDot writes the strategy table of the last search as a dot graph.
func (o *Observer) WriteDot(w io.Writer) error {
	d := &dotfile{}
	genDotFile(o, d)
	var sb strings.Builder
	sb.WriteString("digraph {\n")
	sb.WriteString(" node [shape=box fontname=monospace];\n")
	for _, decl := range d.declarations {
		fmt.Fprintf(&sb, " %v\n", decl)
	}
	sb.WriteString("\n")
	for _, dir := range d.directives {
		fmt.Fprintf(&sb, " %v\n", dir)
	}
	sb.WriteString("}\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

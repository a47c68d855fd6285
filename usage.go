package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
	"github.com/peterbourgon/ff/v3/ffcli"

	"waitexit/internal/display"
)

// helpWidth is the width of the terminal usage is printed on. It is looked
// up once.
var helpWidth = sync.OnceValue(func() int {
	return display.Width(os.Stderr, display.DefaultWidth)
})

func usage(c *ffcli.Command) string {
	return formatUsage(c, helpWidth())
}

// formatUsage renders the help text for c, wrapping prose and flag
// descriptions to width columns.
func formatUsage(c *ffcli.Command, width int) string {
	var b strings.Builder

	if c.ShortHelp != "" {
		fmt.Fprintf(&b, "%s\n\n", ansi.Wordwrap(c.ShortHelp, width, ""))
	}
	fmt.Fprintf(&b, "Usage: %s\n\n", c.ShortUsage)
	if c.LongHelp != "" {
		fmt.Fprintf(&b, "%s\n\n", ansi.Wordwrap(c.LongHelp, width, ""))
	}

	type row struct{ flag, text string }
	var rows []row
	c.FlagSet.VisitAll(func(f *flag.Flag) {
		arg, text := flag.UnquoteUsage(f)
		col := "-" + f.Name
		if arg != "" {
			col += " " + arg
		}
		rows = append(rows, row{col, text})
	})
	rows = append(rows, row{"-h", "show this help"})

	indent := 0
	for _, r := range rows {
		indent = max(indent, len(r.flag))
	}
	indent += 2

	b.WriteString("Options:\n")
	textWidth := max(width-indent, 20)
	for _, r := range rows {
		lines := strings.Split(ansi.Wordwrap(r.text, textWidth, ""), "\n")
		fmt.Fprintf(&b, "%-*s%s\n", indent, r.flag, lines[0])
		for _, l := range lines[1:] {
			fmt.Fprintf(&b, "%s%s\n", strings.Repeat(" ", indent), l)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

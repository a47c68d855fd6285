// Package display draws the countdown status line and the exit summary.
package display

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/x/ansi"
	"github.com/gdamore/tcell/v2/terminfo"
	_ "github.com/gdamore/tcell/v2/terminfo/base"
	"golang.org/x/term"

	"waitexit/internal/message"
)

// DefaultWidth is assumed when the output is not a terminal.
const DefaultWidth = 80

// clearLine returns the cursor to column zero and erases the line.
const clearLine = "\r" + ansi.EraseLineRight

// Display redraws a single status line in place. It never buffers: each
// call is written straight through to the underlying writer.
type Display struct {
	w        io.Writer
	template string

	// width is the terminal width in columns, or 0 when unknown. Status
	// lines are cut to fit so that a redraw never wraps.
	width int

	// ti is nil when the output is not a terminal or $TERM is unknown.
	ti           *terminfo.Terminfo
	cursorHidden bool
}

// New returns a Display writing to w. If w is a terminal its width and
// terminfo entry are looked up once here.
func New(w io.Writer, template string) *Display {
	d := &Display{w: w, template: template}

	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		d.width = Width(f, 0)
		if ti, err := terminfo.LookupTerminfo(os.Getenv("TERM")); err == nil {
			d.ti = ti
		}
	}
	return d
}

// Width returns the column count of f, or fallback if f is not a terminal.
func Width(f *os.File, fallback int) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}

// Status draws the status line for secondsLeft.
func (d *Display) Status(secondsLeft int) {
	if !d.cursorHidden && d.ti != nil && d.ti.HideCursor != "" {
		d.ti.TPuts(d.w, d.ti.HideCursor)
		d.cursorHidden = true
	}

	line := message.Render(d.template, secondsLeft)
	if d.width > 1 {
		// Leave the last column free; some terminals wrap on it.
		line = ansi.Truncate(line, d.width-1, "")
	}
	_, _ = io.WriteString(d.w, line)
}

// Clear erases the status line.
func (d *Display) Clear() {
	_, _ = io.WriteString(d.w, clearLine)
}

// Finish erases the status line and writes the run summary, or just a line
// break when summary is false. The cursor is made visible again.
func (d *Display) Finish(exitCode, elapsed int, summary bool) {
	d.Clear()
	if summary {
		_, _ = fmt.Fprintf(d.w, "Exited with status %d after %d seconds.\n", exitCode, elapsed)
	} else {
		_, _ = io.WriteString(d.w, "\n")
	}
	d.ShowCursor()
}

// ShowCursor undoes the cursor hiding done by Status. It is safe to call
// more than once.
func (d *Display) ShowCursor() {
	if !d.cursorHidden {
		return
	}
	d.ti.TPuts(d.w, d.ti.ShowCursor)
	d.cursorHidden = false
}

// Package output provides consistent CLI output formatting.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Writer provides formatted output for the CLI. Icons are only emitted
// when the destination is an interactive terminal; piped output stays
// plain so it composes with other tools.
type Writer struct {
	out      io.Writer
	decorate bool
}

// New creates a Writer, detecting whether out is a terminal.
func New(out io.Writer) *Writer {
	decorate := false
	if f, ok := out.(*os.File); ok {
		decorate = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Writer{out: out, decorate: decorate}
}

// Status prints a status message with an optional icon.
func (w *Writer) Status(icon, msg string) {
	if icon != "" && w.decorate {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "%s\n", msg)
	}
}

// Statusf prints a formatted status message.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message.
func (w *Writer) Success(msg string) { w.Status("✅", msg) }

// Warning prints a warning message.
func (w *Writer) Warning(msg string) { w.Status("⚠️ ", msg) }

// Error prints an error message.
func (w *Writer) Error(msg string) { w.Status("❌", msg) }

// Code prints an indented code block.
func (w *Writer) Code(content string) {
	_, _ = fmt.Fprintln(w.out)
	for _, line := range strings.Split(content, "\n") {
		_, _ = fmt.Fprintf(w.out, "  %s\n", line)
	}
	_, _ = fmt.Fprintln(w.out)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

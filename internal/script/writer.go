package script

import (
	"fmt"
	"strings"
)

const indentUnit = "    "

// Writer accumulates indented script lines.
type Writer struct {
	b     strings.Builder
	depth int
}

// Indent increases the indentation of subsequent lines by one level.
func (w *Writer) Indent() { w.depth++ }

// Dedent decreases the indentation of subsequent lines by one level.
func (w *Writer) Dedent() {
	if w.depth > 0 {
		w.depth--
	}
}

// Line writes one line at the current indentation. An empty line carries no
// trailing whitespace.
func (w *Writer) Line(s string) {
	if s != "" {
		w.b.WriteString(strings.Repeat(indentUnit, w.depth))
		w.b.WriteString(s)
	}
	w.b.WriteByte('\n')
}

// Linef formats and writes one line.
func (w *Writer) Linef(format string, args ...any) {
	w.Line(fmt.Sprintf(format, args...))
}

// Blank writes n empty lines.
func (w *Writer) Blank(n int) {
	for i := 0; i < n; i++ {
		w.b.WriteByte('\n')
	}
}

// Block writes a multi-line chunk, indenting every line.
func (w *Writer) Block(text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		w.Line(line)
	}
}

// Comment writes a "# " prefixed line. Line breaks and other control
// characters in s are escaped so the comment cannot end early.
func (w *Writer) Comment(s string) {
	w.Line("# " + escapeControls(s))
}

func (w *Writer) String() string {
	return w.b.String()
}

package emit

import "strings"

// unitWriter accumulates the text of one emitted unit. Lines passed to
// Line are terminated if the caller did not do so; Raw copies verbatim.
type unitWriter struct {
	sb strings.Builder
}

// Line writes s, appending a newline unless s already ends with one.
func (w *unitWriter) Line(s string) {
	w.sb.WriteString(s)
	if !strings.HasSuffix(s, "\n") {
		w.sb.WriteByte('\n')
	}
}

// Raw writes text directly to the buffer.
func (w *unitWriter) Raw(s string) {
	w.sb.WriteString(s)
}

// Lines writes each line verbatim.
func (w *unitWriter) Lines(lines []string) {
	for _, l := range lines {
		w.sb.WriteString(l)
	}
}

// String returns the accumulated output.
func (w *unitWriter) String() string { return w.sb.String() }

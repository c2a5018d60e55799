package partition

import (
	"strings"

	"modernc.org/token"
)

// Preamble is the ordered list of directive lines captured outside blocks.
// Values are never mutated; With returns an extended copy.
type Preamble []string

// With returns a new preamble with line appended.
func (p Preamble) With(line string) Preamble {
	out := make(Preamble, len(p), len(p)+1)
	copy(out, p)
	return append(out, line)
}

// String joins the captured lines, terminating each with a newline.
func (p Preamble) String() string {
	var sb strings.Builder
	for _, l := range p {
		sb.WriteString(l)
		if !strings.HasSuffix(l, "\n") {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Block is a function definition delimited by a start and an end marker.
// Lines holds the raw lines, markers included, with their terminators.
type Block struct {
	Name  string
	Lines []string
	Start token.Position
	End   token.Position
}

// Body returns the lines between the markers.
func (b *Block) Body() []string {
	if len(b.Lines) < 2 {
		return nil
	}
	return b.Lines[1 : len(b.Lines)-1]
}

// Handler receives extraction events in document order.
type Handler interface {
	// HandleDirective is called for each directive captured into the preamble.
	HandleDirective(line Line, pos token.Position)
	// HandleBlock is called for each validated block together with the
	// preamble captured before its end marker. A non-nil error stops the scan.
	HandleBlock(b *Block, pre Preamble) error
	// HandleMismatch is called for a block whose end marker names another
	// function. Returning nil skips the block and continues the scan.
	HandleMismatch(err *NameMismatchError) error
}

// Extractor performs the single forward pass over a document.
type Extractor struct {
	Classifier *Classifier
	// Filename is used in positions reported to the handler and in errors.
	Filename string
}

// NewExtractor returns an extractor using c.
func NewExtractor(c *Classifier, filename string) *Extractor {
	return &Extractor{Classifier: c, Filename: filename}
}

// SplitLines splits src into lines keeping their terminators.
func SplitLines(src string) []string {
	lines := strings.SplitAfter(src, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// Extract scans src once and reports directives and blocks to h. It returns
// the final preamble.
func (e *Extractor) Extract(src string, h Handler) (Preamble, error) {
	var pre Preamble
	var open *Block
	offset := 0
	for i, raw := range SplitLines(src) {
		pos := token.Position{Filename: e.Filename, Offset: offset, Line: i + 1, Column: 1}
		offset += len(raw)
		line := e.Classifier.Classify(raw)

		if open == nil {
			switch line.Kind {
			case Directive:
				pre = pre.With(raw)
				h.HandleDirective(line, pos)
			case BlockStart:
				open = &Block{Name: line.Name, Lines: []string{raw}, Start: pos}
			}
			continue
		}

		open.Lines = append(open.Lines, raw)
		if line.Kind != BlockEnd {
			continue
		}
		open.End = pos
		block := open
		open = nil

		if found, ok := e.Classifier.Names.Match(block.Name, line); !ok {
			mismatch := &NameMismatchError{Expected: block.Name, Found: found, Pos: pos}
			if err := h.HandleMismatch(mismatch); err != nil {
				return pre, err
			}
			continue
		}
		if err := h.HandleBlock(block, pre); err != nil {
			return pre, err
		}
	}
	if open != nil {
		return pre, &UnterminatedBlockError{Name: open.Name, Pos: open.Start}
	}
	return pre, nil
}

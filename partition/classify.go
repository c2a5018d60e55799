// Package partition splits a procedural C source document into function
// blocks delimited by comment markers such as
//
//	/*============================= c_disort() =============================*/
//	...
//	/*============================= end of c_disort() ======================*/
//
// It classifies every line, accumulates the blocks, validates that each end
// marker names the block it closes, and collects preprocessor directives
// found between blocks.
package partition

import (
	"regexp"
	"strings"
)

// Kind tags a line of the source document.
type Kind int

const (
	Content Kind = iota
	Directive
	BlockStart
	BlockEnd
)

func (k Kind) String() string {
	switch k {
	case Directive:
		return "directive"
	case BlockStart:
		return "block-start"
	case BlockEnd:
		return "block-end"
	default:
		return "content"
	}
}

// DirectiveMode selects which preprocessor lines count as directives.
type DirectiveMode string

const (
	// AllDirectives captures any line beginning with '#'.
	AllDirectives DirectiveMode = "all"
	// DefineDirectives captures only #define lines.
	DefineDirectives DirectiveMode = "define"
)

// EndPhrase is the wording that turns a marker into an end marker.
const EndPhrase = "end of"

var defineRe = regexp.MustCompile(`^#[ \t]*define\b`)

// Line is a classified line. Text is the raw line including its terminator.
// Name is the normalized marker identifier for BlockStart lines and the
// cleaned marker text for BlockEnd lines.
type Line struct {
	Kind Kind
	Text string
	Name string
}

// Classifier tags lines. It holds no state between calls.
type Classifier struct {
	Mode  DirectiveMode
	Names *NameMatcher
}

// NewClassifier returns a classifier for the given directive mode.
func NewClassifier(mode DirectiveMode, names *NameMatcher) *Classifier {
	if names == nil {
		names = NewNameMatcher(DefaultStrip)
	}
	return &Classifier{Mode: mode, Names: names}
}

// Classify returns the kind of raw. Directives and start markers are
// recognized after trimming surrounding blanks; end markers are not.
func (c *Classifier) Classify(raw string) Line {
	trimmed := strings.TrimSpace(raw)
	switch {
	case c.isDirective(trimmed):
		return Line{Kind: Directive, Text: raw}
	case isEndMarker(raw):
		return Line{Kind: BlockEnd, Text: raw, Name: c.Names.Clean(trimmed)}
	case isStartMarker(trimmed):
		return Line{Kind: BlockStart, Text: raw, Name: c.Names.Normalize(trimmed)}
	}
	return Line{Kind: Content, Text: raw}
}

func (c *Classifier) isDirective(trimmed string) bool {
	if c.Mode == DefineDirectives {
		return defineRe.MatchString(trimmed)
	}
	return strings.HasPrefix(trimmed, "#")
}

func isStartMarker(trimmed string) bool {
	return strings.HasPrefix(trimmed, "/") &&
		strings.Contains(trimmed, "()") &&
		!strings.Contains(trimmed, EndPhrase)
}

// isEndMarker tests the untrimmed line: an end marker starts in column 0,
// so indented comments inside a body that mention the end phrase stay content.
func isEndMarker(raw string) bool {
	if !strings.HasPrefix(raw, "/") {
		return false
	}
	i := strings.Index(raw, EndPhrase)
	return i >= 0 && strings.Contains(raw[i+len(EndPhrase):], "()")
}

// Package scanner provides literal-aware scanning of C source lines for the
// call rewriter. It tracks double-quoted strings, single-quoted character
// constants, escape sequences and comments, so a rule looking for a call
// head or an argument separator never matches text inside a literal.
package scanner

import "strings"

// closingKind tracks which kind of span was just closed.
type closingKind byte

const (
	noClosing      closingKind = iota
	closingString              // just closed a "..." string
	closingChar                // just closed a '...' constant
	closingComment             // just closed a /* ... */ comment
)

// CodeScanner iterates byte-by-byte over C source text, tracking string and
// character literal boundaries, escapes and comments. Callers check InCode()
// instead of maintaining their own inString/inChar/escaped flags.
//
// InLiteral() is true for the whole literal span including both quotes, and
// InComment() for the whole comment including its delimiters.
type CodeScanner struct {
	src       string
	pos       int
	inStr     bool
	inChr     bool
	inBlock   bool
	inLine    bool
	escaped   bool
	opening   bool // first byte of a comment opener
	closing   closingKind
	blockOpen int // position of the '/' that opened the block comment
}

// New creates a CodeScanner for the given source text.
// Call Next() to advance to the first byte.
func New(src string) *CodeScanner {
	return &CodeScanner{src: src, pos: -1, blockOpen: -1}
}

// Next advances to the next byte, updating literal, escape and comment state.
// Returns the byte and true, or (0, false) at end of input.
func (s *CodeScanner) Next() (byte, bool) {
	s.closing = noClosing
	s.opening = false
	s.pos++
	if s.pos >= len(s.src) {
		return 0, false
	}
	ch := s.src[s.pos]
	if ch == '\n' {
		s.inLine = false
		// Literals end at an unescaped newline.
		if !s.escaped {
			s.inStr, s.inChr = false, false
		}
		s.escaped = false
		return ch, true
	}

	if s.inLine {
		return ch, true
	}
	if s.inBlock {
		if ch == '/' && s.pos-1 > s.blockOpen+1 && s.src[s.pos-1] == '*' {
			s.inBlock = false
			s.closing = closingComment
		}
		return ch, true
	}

	if s.escaped {
		s.escaped = false
		return ch, true
	}
	if ch == '\\' && (s.inStr || s.inChr) {
		s.escaped = true
		return ch, true
	}
	switch {
	case ch == '"' && !s.inChr:
		if s.inStr {
			s.closing = closingString
		}
		s.inStr = !s.inStr
	case ch == '\'' && !s.inStr:
		if s.inChr {
			s.closing = closingChar
		}
		s.inChr = !s.inChr
	case ch == '/' && !s.inStr && !s.inChr:
		if next, ok := s.Peek(); ok {
			switch next {
			case '/':
				s.inLine = true
				s.opening = true
			case '*':
				s.inBlock = true
				s.opening = true
				s.blockOpen = s.pos
			}
		}
	}
	return ch, true
}

// InLiteral reports whether the current position is inside a string or
// character literal, including both quotes.
func (s *CodeScanner) InLiteral() bool {
	return s.inStr || s.inChr || s.closing == closingString || s.closing == closingChar
}

// InComment reports whether the current position is inside a line or block
// comment, including its delimiters.
func (s *CodeScanner) InComment() bool {
	return s.inLine || s.inBlock || s.opening || s.closing == closingComment
}

// InCode reports whether the current position is outside all literals and
// comments.
func (s *CodeScanner) InCode() bool { return !s.InLiteral() && !s.InComment() }

// Pos returns the current byte offset (the position of the last byte
// returned by Next). Returns -1 before the first call to Next.
func (s *CodeScanner) Pos() int { return s.pos }

// Peek returns the next byte without advancing, or (0, false) at end.
func (s *CodeScanner) Peek() (byte, bool) {
	if s.pos+1 >= len(s.src) {
		return 0, false
	}
	return s.src[s.pos+1], true
}

// LookingAt checks if src[pos:] starts with the given prefix.
func (s *CodeScanner) LookingAt(prefix string) bool {
	if s.pos < 0 {
		return false
	}
	return strings.HasPrefix(s.src[s.pos:], prefix)
}

// IsOpenBracket reports whether ch is an opening bracket/paren/brace.
func IsOpenBracket(ch byte) bool {
	return ch == '(' || ch == '[' || ch == '{'
}

// IsCloseBracket reports whether ch is a closing bracket/paren/brace.
func IsCloseBracket(ch byte) bool {
	return ch == ')' || ch == ']' || ch == '}'
}

// IsIdentByte reports whether ch can appear in a C identifier.
func IsIdentByte(ch byte) bool {
	return ch == '_' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9'
}

// FindMatchingClose returns the offset of the bracket closing the one at
// openPos, skipping literals and comments. Returns -1 when the bracket is
// not closed within s.
func FindMatchingClose(s string, openPos int) int {
	if openPos < 0 || openPos >= len(s) || !IsOpenBracket(s[openPos]) {
		return -1
	}
	depth := 0
	sc := New(s)
	for ch, ok := sc.Next(); ok; ch, ok = sc.Next() {
		if sc.Pos() < openPos || !sc.InCode() {
			continue
		}
		if IsOpenBracket(ch) {
			depth++
		} else if IsCloseBracket(ch) {
			depth--
			if depth == 0 {
				return sc.Pos()
			}
		}
	}
	return -1
}

// SplitTopLevel splits s at commas that sit at bracket depth 0 outside
// literals and comments. The parts are returned verbatim.
func SplitTopLevel(s string) []string {
	var parts []string
	last := 0
	depth := 0
	sc := New(s)
	for ch, ok := sc.Next(); ok; ch, ok = sc.Next() {
		if !sc.InCode() {
			continue
		}
		switch {
		case IsOpenBracket(ch):
			depth++
		case IsCloseBracket(ch):
			depth--
		case ch == ',' && depth == 0:
			parts = append(parts, s[last:sc.Pos()])
			last = sc.Pos() + 1
		}
	}
	return append(parts, s[last:])
}

// FindCall returns the offset of the first call to the identifier name in
// code (not in a literal or comment) and the offset of its opening paren.
// The identifier must not be part of a longer identifier; blanks between
// the name and the paren are allowed. Returns -1, -1 when there is none.
func FindCall(s, name string) (int, int) {
	sc := New(s)
	for _, ok := sc.Next(); ok; _, ok = sc.Next() {
		if !sc.InCode() || !sc.LookingAt(name) {
			continue
		}
		start := sc.Pos()
		if start > 0 && IsIdentByte(s[start-1]) {
			continue
		}
		i := start + len(name)
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i < len(s) && s[i] == '(' {
			return start, i
		}
	}
	return -1, -1
}

package partition

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultStrip is the punctuation removed from marker lines.
	DefaultStrip = "=/* ()"
	// Unnamed replaces a marker that normalizes to nothing.
	Unnamed = "unnamed"
	// MaxNameLen caps normalized identifiers, counted in characters.
	MaxNameLen = 100
	// endToken is EndPhrase after normalization.
	endToken = "endof"
)

// nonWordRe matches anything but Unicode letters, digits, underscore and dash.
var nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}_\-]`)

// NameMatcher turns marker lines into identifiers usable as file names.
type NameMatcher struct {
	strip string
}

// NewNameMatcher returns a matcher removing every byte of strip before
// filtering. An empty strip falls back to DefaultStrip.
func NewNameMatcher(strip string) *NameMatcher {
	if strip == "" {
		strip = DefaultStrip
	}
	return &NameMatcher{strip: strip}
}

// Clean removes the punctuation set and every remaining character that is
// not a word character or a dash. The result may be empty or long.
func (m *NameMatcher) Clean(line string) string {
	out := strings.Map(func(r rune) rune {
		if strings.ContainsRune(m.strip, r) {
			return -1
		}
		return r
	}, line)
	out = strings.TrimSpace(out)
	return nonWordRe.ReplaceAllString(out, "")
}

// Normalize returns the identifier for a marker line.
func (m *NameMatcher) Normalize(line string) string {
	return limit(m.Clean(line))
}

// EndName derives the block name from cleaned end-marker text by dropping
// everything up to and including the end phrase.
func (m *NameMatcher) EndName(cleaned string) string {
	if i := strings.Index(cleaned, endToken); i >= 0 {
		cleaned = cleaned[i+len(endToken):]
	}
	return limit(cleaned)
}

// Match checks an end marker against the start name.
func (m *NameMatcher) Match(start string, end Line) (string, bool) {
	found := m.EndName(end.Name)
	return found, found == start
}

func limit(name string) string {
	if name == "" {
		return Unnamed
	}
	if utf8.RuneCountInString(name) <= MaxNameLen {
		return name
	}
	return string([]rune(name)[:MaxNameLen])
}

// Package rewrite applies an ordered table of call rewrites to C source
// lines, turning host-only library calls into their dispatchable
// counterparts. At most one rule fires per line.
package rewrite

import (
	"fmt"
	"strings"
)

// Rule classifies a line and transforms it. Apply is only called when Match
// reported true for the same line.
type Rule struct {
	Name  string
	Match func(line string) bool
	Apply func(line string) string
}

// Table is an ordered rule list; the first matching rule wins.
type Table []Rule

// Rewrite returns the rewritten line and the name of the rule that fired,
// or the line unchanged and "" when no rule matched. A trailing line
// terminator is kept out of the rules' view and restored afterwards.
func (t Table) Rewrite(line string) (string, string) {
	body, eol := splitEOL(line)
	for _, r := range t {
		if r.Match(body) {
			return r.Apply(body) + eol, r.Name
		}
	}
	return line, ""
}

// Names lists the rule names in priority order.
func (t Table) Names() []string {
	names := make([]string, len(t))
	for i, r := range t {
		names[i] = r.Name
	}
	return names
}

// Lookup builds a table from rule names, keeping the given order.
func Lookup(names []string) (Table, error) {
	t := make(Table, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		r, ok := builtin[n]
		if !ok {
			return nil, fmt.Errorf("unknown rewrite rule %q (known: %s)", n, strings.Join(RuleNames, ", "))
		}
		if seen[n] {
			return nil, fmt.Errorf("rewrite rule %q listed twice", n)
		}
		seen[n] = true
		t = append(t, r)
	}
	return t, nil
}

func splitEOL(line string) (string, string) {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return line[:len(line)-2], "\r\n"
	case strings.HasSuffix(line, "\n"):
		return line[:len(line)-1], "\n"
	}
	return line, ""
}
